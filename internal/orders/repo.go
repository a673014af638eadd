package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"github.com/stockroomhq/warehouse-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows order listings.
type ListFilter struct {
	Kind      enums.OrderKind
	ProductID uuid.UUID
	Status    enums.OrderStatus
	DateFrom  time.Time
	DateTo    time.Time
}

// Repository manages persistence for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdatePending(ctx context.Context, order *models.Order) (int64, error)
	MarkApproved(ctx context.Context, id uuid.UUID, approvedBy string, approvedAt time.Time) (int64, error)
	MarkVoid(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePending writes the editable fields under the same pending guard as
// MarkApproved. An edit that loses a race to an approval or void sees zero
// rows instead of resurrecting the terminal order wholesale.
func (r *repository) UpdatePending(ctx context.Context, order *models.Order) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, enums.OrderStatusPending).
		Updates(map[string]any{
			"product_id":           order.ProductID,
			"quantity":             order.Quantity,
			"counterparty_name":    order.CounterpartyName,
			"counterparty_contact": order.CounterpartyContact,
			"order_date":           order.OrderDate,
			"remark":               order.Remark,
			"updated_at":           time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// MarkApproved flips pending to approved. The status guard in the WHERE
// clause means exactly one of any number of concurrent approvals wins.
func (r *repository) MarkApproved(ctx context.Context, id uuid.UUID, approvedBy string, approvedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":      enums.OrderStatusApproved,
			"approved_by": approvedBy,
			"approved_at": approvedAt,
			"updated_at":  approvedAt,
		})
	return result.RowsAffected, result.Error
}

// MarkVoid flips pending to void under the same guard as MarkApproved.
func (r *repository) MarkVoid(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":     enums.OrderStatusVoid,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.DateFrom.IsZero() {
		query = query.Where("order_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		query = query.Where("order_date <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.Order
	if err := query.
		Order("created_at DESC").
		Limit(params.Size).
		Offset(params.Offset()).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
