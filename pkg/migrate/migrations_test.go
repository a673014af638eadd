package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stockroomhq/warehouse-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one migration matching %q, got %d", pattern, len(matches))
	}
	b, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read %s: %v", matches[0], err)
	}
	return string(b)
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestInitSchemaMigration(t *testing.T) {
	sql := readMigration(t, "*_init_schema.sql")

	for _, want := range []string{
		"CREATE TABLE categories",
		"CREATE TABLE products",
		"CREATE TABLE stock_records",
		"CREATE TABLE orders",
		"CREATE TABLE order_sequences",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("init schema missing %q", want)
		}
	}

	for _, want := range []string{
		"idx_products_sku",
		"idx_stock_product_warehouse",
		"idx_orders_order_no",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("init schema missing unique index %q", want)
		}
	}

	// the ledger never goes negative, even if a bug slips past the service layer
	if !strings.Contains(sql, "quantity >= 0") {
		t.Error("stock_records missing non-negative quantity check")
	}

	down := sql[strings.Index(sql, "-- +goose Down"):]
	for _, table := range []string{"categories", "products", "stock_records", "orders", "order_sequences"} {
		if !strings.Contains(down, "DROP TABLE") || !strings.Contains(down, table) {
			t.Errorf("down migration does not drop %q", table)
		}
	}
}
