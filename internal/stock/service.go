package stock

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	// DefaultWarningThreshold is applied when a record is created without one.
	DefaultWarningThreshold = 10
	// MaxQuantity bounds any single quantity value the ledger accepts.
	MaxQuantity = 999999
)

// Service is the stock ledger. Quantities never go below zero; every
// decrease is guarded at the SQL level rather than by read-then-write.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Initialize(ctx context.Context, input InitializeInput) (*models.StockRecord, error)
	Increase(ctx context.Context, productID uuid.UUID, qty int) error
	Decrease(ctx context.Context, productID uuid.UUID, qty int) error
	Get(ctx context.Context, productID uuid.UUID) (*models.StockRecord, error)
	IsSufficient(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockRecord, error)
	SetThreshold(ctx context.Context, productID uuid.UUID, threshold int) (*models.StockRecord, error)
	List(ctx context.Context, onlyLow bool, params pagination.Params) (pagination.Page[models.StockRecord], error)
}

// InitializeInput seeds a stock record for a product.
type InitializeInput struct {
	ProductID        uuid.UUID
	Quantity         int
	WarningThreshold int
}

// AdjustInput is a manual correction outside the order workflow.
type AdjustInput struct {
	ProductID uuid.UUID
	Type      enums.AdjustmentType
	Quantity  int
}

type service struct {
	repo        Repository
	warehouseID int64
}

// NewService wires a stock service for the default warehouse.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &service{repo: repo, warehouseID: models.DefaultWarehouseID}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), warehouseID: s.warehouseID}
}

func (s *service) Initialize(ctx context.Context, input InitializeInput) (*models.StockRecord, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 0 || input.Quantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("initial quantity must be between 0 and %d", MaxQuantity))
	}
	if input.WarningThreshold <= 0 {
		input.WarningThreshold = DefaultWarningThreshold
	}

	record := &models.StockRecord{
		ProductID:        input.ProductID,
		WarehouseID:      s.warehouseID,
		Quantity:         input.Quantity,
		WarningThreshold: input.WarningThreshold,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "idx_stock_product_warehouse") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeAlreadyExists, err, "stock record already exists for product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock record")
	}
	return record, nil
}

// Increase adds qty to the product's stock, creating the record on first
// movement. A create that loses a race to a concurrent first movement falls
// back to a plain increment. The auto-create serves the inbound approve
// path; the manual add adjustment goes through Adjust, which requires an
// existing record.
func (s *service) Increase(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := validateMovement(productID, qty); err != nil {
		return err
	}

	rows, err := s.repo.Increment(ctx, productID, s.warehouseID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increasing stock")
	}
	if rows > 0 {
		return nil
	}

	record := &models.StockRecord{
		ProductID:        productID,
		WarehouseID:      s.warehouseID,
		Quantity:         qty,
		WarningThreshold: DefaultWarningThreshold,
	}
	if err := s.repo.Create(ctx, record); err == nil {
		return nil
	} else if !db.IsUniqueViolation(err, "idx_stock_product_warehouse") {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock record on first movement")
	}

	rows, err = s.repo.Increment(ctx, productID, s.warehouseID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increasing stock after create race")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeInternal, "stock record vanished during increase")
	}
	return nil
}

// Decrease subtracts qty, failing when the on-hand quantity is short. The
// returned error carries the observed and requested quantities.
func (s *service) Decrease(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := validateMovement(productID, qty); err != nil {
		return err
	}

	rows, err := s.repo.DecrementIfSufficient(ctx, productID, s.warehouseID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decreasing stock")
	}
	if rows > 0 {
		return nil
	}

	// Re-read only to produce a useful error. A missing record counts as zero.
	current := 0
	record, err := s.repo.GetByProduct(ctx, productID, s.warehouseID)
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stock after failed decrease")
	}
	if record != nil {
		current = record.Quantity
	}
	return pkgerrors.InsufficientStock(current, qty)
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.StockRecord, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	record, err := s.repo.GetByProduct(ctx, productID, s.warehouseID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock record")
	}
	return record, nil
}

// IsSufficient is advisory. The authoritative check happens inside Decrease.
func (s *service) IsSufficient(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if err := validateMovement(productID, qty); err != nil {
		return false, err
	}
	record, err := s.repo.GetByProduct(ctx, productID, s.warehouseID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock record")
	}
	return record.Quantity >= qty, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockRecord, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid adjustment type %q", input.Type))
	}

	switch input.Type {
	case enums.AdjustmentTypeAdd:
		if err := validateMovement(input.ProductID, input.Quantity); err != nil {
			return nil, err
		}
		rows, err := s.repo.Increment(ctx, input.ProductID, s.warehouseID, input.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increasing stock")
		}
		if rows == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
	case enums.AdjustmentTypeReduce:
		if err := s.Decrease(ctx, input.ProductID, input.Quantity); err != nil {
			return nil, err
		}
	case enums.AdjustmentTypeSet:
		if input.Quantity < 0 || input.Quantity > MaxQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity must be between 0 and %d", MaxQuantity))
		}
		rows, err := s.repo.SetQuantity(ctx, input.ProductID, s.warehouseID, input.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting stock quantity")
		}
		if rows == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
	}

	return s.Get(ctx, input.ProductID)
}

func (s *service) SetThreshold(ctx context.Context, productID uuid.UUID, threshold int) (*models.StockRecord, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if threshold < 0 || threshold > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("warning threshold must be between 0 and %d", MaxQuantity))
	}
	rows, err := s.repo.SetThreshold(ctx, productID, s.warehouseID, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting warning threshold")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
	}
	return s.Get(ctx, productID)
}

func (s *service) List(ctx context.Context, onlyLow bool, params pagination.Params) (pagination.Page[models.StockRecord], error) {
	records, total, err := s.repo.List(ctx, s.warehouseID, onlyLow, params)
	if err != nil {
		return pagination.Page[models.StockRecord]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock records")
	}
	return pagination.NewPage(records, total, params), nil
}

func validateMovement(productID uuid.UUID, qty int) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty < 1 || qty > MaxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity))
	}
	return nil
}
