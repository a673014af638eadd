package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	pgErr := errors.New(`ERROR: duplicate key value violates unique constraint "idx_products_sku" (SQLSTATE 23505)`)
	sqliteErr := errors.New("UNIQUE constraint failed: stock_records.product_id, stock_records.warehouse_id")

	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil error", nil, "idx_products_sku", false},
		{"postgres with matching constraint", pgErr, "idx_products_sku", true},
		{"postgres without constraint name", pgErr, "", true},
		// sqlite never names the index, the generic marker must still match
		{"sqlite with constraint name", sqliteErr, "idx_stock_product_warehouse", true},
		{"sqlite without constraint name", sqliteErr, "", true},
		{"unrelated error", errors.New("connection reset"), "idx_products_sku", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
