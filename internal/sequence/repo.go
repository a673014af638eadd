package sequence

import (
	"context"

	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository hands out monotonically increasing per-day counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextValue(ctx context.Context, kind enums.OrderKind, seqDate string) (int, error)
	CurrentValue(ctx context.Context, kind enums.OrderKind, seqDate string) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sequence repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextValue atomically increments and returns the counter for the kind/day
// pair, inserting the row on first use. The single upsert statement keeps
// concurrent allocators from ever observing the same value.
func (r *repository) NextValue(ctx context.Context, kind enums.OrderKind, seqDate string) (int, error) {
	const upsert = `
INSERT INTO order_sequences (kind, seq_date, seq_value)
VALUES (?, ?, 1)
ON CONFLICT (kind, seq_date)
DO UPDATE SET seq_value = order_sequences.seq_value + 1
RETURNING seq_value`

	var value int
	if err := r.db.WithContext(ctx).Raw(upsert, kind, seqDate).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

func (r *repository) CurrentValue(ctx context.Context, kind enums.OrderKind, seqDate string) (int, error) {
	var value int
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(seq_value), 0) FROM order_sequences WHERE kind = ? AND seq_date = ?`, kind, seqDate).
		Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
