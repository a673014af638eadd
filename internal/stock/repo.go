package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository manages persistence for stock records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.StockRecord) error
	GetByProduct(ctx context.Context, productID uuid.UUID, warehouseID int64) (*models.StockRecord, error)
	Increment(ctx context.Context, productID uuid.UUID, warehouseID int64, qty int) (int64, error)
	DecrementIfSufficient(ctx context.Context, productID uuid.UUID, warehouseID int64, qty int) (int64, error)
	SetQuantity(ctx context.Context, productID uuid.UUID, warehouseID int64, qty int) (int64, error)
	SetThreshold(ctx context.Context, productID uuid.UUID, warehouseID int64, threshold int) (int64, error)
	List(ctx context.Context, warehouseID int64, onlyLow bool, params pagination.Params) ([]models.StockRecord, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByProduct(ctx context.Context, productID uuid.UUID, warehouseID int64) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Increment adds qty unconditionally. Returns the number of rows touched so
// callers can detect a missing record.
func (r *repository) Increment(ctx context.Context, productID uuid.UUID, warehouseID int64, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// DecrementIfSufficient subtracts qty only when the row currently holds at
// least qty. The guard lives in the WHERE clause so concurrent decreases
// cannot drive the quantity negative.
func (r *repository) DecrementIfSufficient(ctx context.Context, productID uuid.UUID, warehouseID int64, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("product_id = ? AND warehouse_id = ? AND quantity >= ?", productID, warehouseID, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) SetQuantity(ctx context.Context, productID uuid.UUID, warehouseID int64, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Updates(map[string]any{
			"quantity":   qty,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) SetThreshold(ctx context.Context, productID uuid.UUID, warehouseID int64, threshold int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Updates(map[string]any{
			"warning_threshold": threshold,
			"updated_at":        time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, warehouseID int64, onlyLow bool, params pagination.Params) ([]models.StockRecord, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("warehouse_id = ?", warehouseID)
	if onlyLow {
		query = query.Where("quantity <= warning_threshold")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.StockRecord
	if err := query.
		Order("updated_at DESC").
		Limit(params.Size).
		Offset(params.Offset()).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
