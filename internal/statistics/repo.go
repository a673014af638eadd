package statistics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"gorm.io/gorm"
)

// CategorySlice is one category's share of the catalog. A nil CategoryID
// collects the uncategorized products.
type CategorySlice struct {
	CategoryID   *uuid.UUID `json:"categoryId"`
	Name         string     `json:"name"`
	ProductCount int64      `json:"productCount"`
	StockUnits   int64      `json:"stockUnits"`
}

// Repository runs the aggregate queries behind the dashboard.
type Repository interface {
	CountProducts(ctx context.Context) (total int64, enabled int64, err error)
	TotalStockUnits(ctx context.Context) (int64, error)
	StockValue(ctx context.Context) (decimal.Decimal, error)
	LowStockCount(ctx context.Context) (int64, error)
	CountPendingByKind(ctx context.Context) (map[enums.OrderKind]int64, error)
	CategoryDistribution(ctx context.Context) ([]CategorySlice, error)
	ApprovedSince(ctx context.Context, since time.Time) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a statistics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountProducts(ctx context.Context) (int64, int64, error) {
	var total, enabled int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("enabled = ?", true).
		Count(&enabled).Error; err != nil {
		return 0, 0, err
	}
	return total, enabled, nil
}

func (r *repository) TotalStockUnits(ctx context.Context) (int64, error) {
	var units int64
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(quantity), 0) FROM stock_records`).
		Scan(&units).Error
	return units, err
}

// StockValue is the sum of quantity times catalog price across all records.
func (r *repository) StockValue(ctx context.Context) (decimal.Decimal, error) {
	var value decimal.Decimal
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(s.quantity * p.price), 0)
FROM stock_records s
JOIN products p ON p.id = s.product_id`).
		Scan(&value).Error
	return value, err
}

func (r *repository) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("quantity <= warning_threshold").
		Count(&count).Error
	return count, err
}

func (r *repository) CountPendingByKind(ctx context.Context) (map[enums.OrderKind]int64, error) {
	type row struct {
		Kind  enums.OrderKind
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("kind, COUNT(*) AS count").
		Where("status = ?", enums.OrderStatusPending).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[enums.OrderKind]int64{
		enums.OrderKindInbound:  0,
		enums.OrderKindOutbound: 0,
	}
	for _, r := range rows {
		counts[r.Kind] = r.Count
	}
	return counts, nil
}

// CategoryDistribution groups the catalog by category, counting products and
// on-hand units per slice.
func (r *repository) CategoryDistribution(ctx context.Context) ([]CategorySlice, error) {
	var slices []CategorySlice
	err := r.db.WithContext(ctx).
		Raw(`SELECT c.id AS category_id,
       COALESCE(c.name, '') AS name,
       COUNT(DISTINCT p.id) AS product_count,
       COALESCE(SUM(s.quantity), 0) AS stock_units
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN stock_records s ON s.product_id = p.id
GROUP BY c.id, c.name
ORDER BY product_count DESC, name ASC`).
		Scan(&slices).Error
	if err != nil {
		return nil, err
	}
	return slices, nil
}

func (r *repository) ApprovedSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND approved_at >= ?", enums.OrderStatusApproved, since).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
