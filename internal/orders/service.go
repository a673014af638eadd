package orders

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/internal/sequence"
	"github.com/stockroomhq/warehouse-backend/internal/stock"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/metrics"
	"github.com/stockroomhq/warehouse-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	maxCounterpartyLen = 100
	maxContactLen      = 100
	maxRemarkLen       = 500
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProductGateway is the slice of the product catalog the order workflow
// needs. Implemented by the products service.
type ProductGateway interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service runs the order workflow for both kinds. Orders are created
// pending, and stock moves exactly once, at approval time.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error)
	Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*models.Order, error)
	Void(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Order], error)
}

// CreateInput carries everything needed to register a pending order.
type CreateInput struct {
	Kind                enums.OrderKind
	ProductID           uuid.UUID
	Quantity            int
	CounterpartyName    string
	CounterpartyContact string
	OrderDate           time.Time
	Remark              string
	CreatedBy           string
}

// UpdateInput carries the editable fields of a pending order. The kind and
// order number are fixed at creation; the product may change and is
// re-validated like on create.
type UpdateInput struct {
	ProductID           uuid.UUID
	Quantity            int
	CounterpartyName    string
	CounterpartyContact string
	OrderDate           time.Time
	Remark              string
}

// Deps wires the order service collaborators.
type Deps struct {
	Repo      Repository
	Tx        TxRunner
	Sequences sequence.Allocator
	Ledger    stock.Service
	Products  ProductGateway
	Metrics   *metrics.Metrics
}

type service struct {
	repo      Repository
	tx        TxRunner
	sequences sequence.Allocator
	ledger    stock.Service
	products  ProductGateway
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService wires the order workflow service.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Sequences == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product gateway required")
	}
	return &service{
		repo:      deps.Repo,
		tx:        deps.Tx,
		sequences: deps.Sequences,
		ledger:    deps.Ledger,
		products:  deps.Products,
		metrics:   deps.Metrics,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order kind %q", input.Kind))
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validateEditableFields(input.Quantity, input.CounterpartyName, input.CounterpartyContact, input.Remark); err != nil {
		return nil, err
	}

	if err := s.checkProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	// order numbers always count under the creation day, a backdated
	// OrderDate does not reopen an old day's counter
	createdAt := s.now().UTC()
	if input.OrderDate.IsZero() {
		input.OrderDate = createdAt
	}
	createdBy := strings.TrimSpace(input.CreatedBy)
	if createdBy == "" {
		createdBy = "system"
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderNo, err := s.sequences.WithTx(tx).Next(ctx, input.Kind, createdAt)
		if err != nil {
			return err
		}
		order = &models.Order{
			OrderNo:             orderNo,
			Kind:                input.Kind,
			ProductID:           input.ProductID,
			Quantity:            input.Quantity,
			CounterpartyName:    strings.TrimSpace(input.CounterpartyName),
			CounterpartyContact: strings.TrimSpace(input.CounterpartyContact),
			OrderDate:           input.OrderDate,
			Status:              enums.OrderStatusPending,
			Remark:              input.Remark,
			CreatedBy:           createdBy,
		}
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues(order.Kind.String()).Inc()
	}
	return order, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validateEditableFields(input.Quantity, input.CounterpartyName, input.CounterpartyContact, input.Remark); err != nil {
		return nil, err
	}
	// the product may have changed on edit, re-check it like on create
	if err := s.checkProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, terminalStateError(order.Status, "edited")
	}

	order.ProductID = input.ProductID
	order.Quantity = input.Quantity
	order.CounterpartyName = strings.TrimSpace(input.CounterpartyName)
	order.CounterpartyContact = strings.TrimSpace(input.CounterpartyContact)
	order.Remark = input.Remark
	if !input.OrderDate.IsZero() {
		order.OrderDate = input.OrderDate
	}

	rows, err := s.repo.UpdatePending(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order")
	}
	if rows == 0 {
		// the order left pending between the read and the write
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, terminalStateError(current.Status, "edited")
	}
	return s.Get(ctx, id)
}

// checkProduct runs the create-time product checks: it must exist and be
// enabled.
func (s *service) checkProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Enabled {
		return pkgerrors.New(pkgerrors.CodeProductDisabled,
			fmt.Sprintf("product %s is disabled", product.SKU))
	}
	return nil
}

// Approve flips the order to approved and applies its stock movement, both
// inside one transaction. The conditional status update means a concurrent
// second approval sees zero rows and fails; the losing caller never touches
// stock. An outbound order short on stock rolls the whole transaction back,
// leaving the order pending.
func (s *service) Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		approvedBy = "system"
	}

	var approved *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.GetByID(ctx, id)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		if order.Status != enums.OrderStatusPending {
			return terminalStateError(order.Status, "approved")
		}

		now := time.Now().UTC()
		rows, err := repo.MarkApproved(ctx, id, approvedBy, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approving order")
		}
		if rows == 0 {
			// lost the race to a concurrent approval or void
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
		}

		ledger := s.ledger.WithTx(tx)
		switch order.Kind {
		case enums.OrderKindInbound:
			if err := ledger.Increase(ctx, order.ProductID, order.Quantity); err != nil {
				return err
			}
		case enums.OrderKindOutbound:
			if err := ledger.Decrease(ctx, order.ProductID, order.Quantity); err != nil {
				return err
			}
		default:
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("order %s has unknown kind %q", order.OrderNo, order.Kind))
		}

		order.Status = enums.OrderStatusApproved
		order.ApprovedBy = &approvedBy
		order.ApprovedAt = &now
		approved = order
		return nil
	})
	if err != nil {
		if s.metrics != nil && pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			s.metrics.InsufficientStock.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersApproved.WithLabelValues(approved.Kind.String()).Inc()
		direction := "in"
		if approved.Kind == enums.OrderKindOutbound {
			direction = "out"
		}
		s.metrics.StockMovements.WithLabelValues(direction).Add(float64(approved.Quantity))
	}
	return approved, nil
}

// Void cancels a pending order. No stock is touched; an approved order
// cannot be voided, it takes a compensating order in the opposite direction.
func (s *service) Void(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	rows, err := s.repo.MarkVoid(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "voiding order")
	}
	if rows == 0 {
		order, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, terminalStateError(order.Status, "voided")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.OrdersVoided.WithLabelValues(order.Kind.String()).Inc()
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Order], error) {
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid order kind %q", filter.Kind))
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid order status %q", filter.Status))
	}

	records, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return pagination.NewPage(records, total, params), nil
}

func validateEditableFields(quantity int, counterparty, contact, remark string) error {
	if quantity < 1 || quantity > stock.MaxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", stock.MaxQuantity))
	}
	name := strings.TrimSpace(counterparty)
	if name == "" || len(name) > maxCounterpartyLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("counterparty name must be between 1 and %d characters", maxCounterpartyLen))
	}
	if len(strings.TrimSpace(contact)) > maxContactLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("counterparty contact must be at most %d characters", maxContactLen))
	}
	if len(remark) > maxRemarkLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("remark must be at most %d characters", maxRemarkLen))
	}
	return nil
}

func terminalStateError(status enums.OrderStatus, action string) *pkgerrors.Error {
	switch status {
	case enums.OrderStatusApproved:
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is already approved and cannot be %s", action))
	case enums.OrderStatusVoid:
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order has been voided and cannot be %s", action))
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot be %s in status %q", action, status))
	}
}
