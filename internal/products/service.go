package products

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/internal/stock"
	"github.com/stockroomhq/warehouse-backend/pkg/db"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	maxSKULen    = 64
	maxNameLen   = 200
	maxRemarkLen = 500
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CategoryGateway verifies category references. Implemented by the
// categories service.
type CategoryGateway interface {
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service is the product catalog. Products are never hard-deleted; they are
// disabled, which blocks new orders while preserving history.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Product], error)
	CountInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// CreateInput registers a new catalog product together with its opening
// stock level.
type CreateInput struct {
	SKU              string
	Name             string
	CategoryID       *uuid.UUID
	Price            decimal.Decimal
	Unit             string
	Remark           string
	InitialQuantity  int
	WarningThreshold int
}

// UpdateInput carries the editable catalog fields. The SKU is fixed at
// creation.
type UpdateInput struct {
	Name       string
	CategoryID *uuid.UUID
	Price      decimal.Decimal
	Unit       string
	Remark     string
}

// Deps wires the product service collaborators.
type Deps struct {
	Repo       Repository
	Tx         TxRunner
	Ledger     stock.Service
	Categories CategoryGateway
}

type service struct {
	repo       Repository
	tx         TxRunner
	ledger     stock.Service
	categories CategoryGateway
}

// NewService wires the product catalog service.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if deps.Categories == nil {
		return nil, fmt.Errorf("category gateway required")
	}
	return &service{
		repo:       deps.Repo,
		tx:         deps.Tx,
		ledger:     deps.Ledger,
		categories: deps.Categories,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" || len(sku) > maxSKULen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("sku must be between 1 and %d characters", maxSKULen))
	}
	if err := validateCatalogFields(input.Name, input.Price, input.Remark); err != nil {
		return nil, err
	}
	if input.InitialQuantity < 0 || input.InitialQuantity > stock.MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("initial quantity must be between 0 and %d", stock.MaxQuantity))
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:        sku,
		Name:       strings.TrimSpace(input.Name),
		CategoryID: input.CategoryID,
		Price:      input.Price,
		Unit:       strings.TrimSpace(input.Unit),
		Enabled:    true,
		Remark:     input.Remark,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "idx_products_sku") {
				return pkgerrors.Wrap(pkgerrors.CodeAlreadyExists, err,
					fmt.Sprintf("sku %q already exists", sku))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
		}
		_, err := s.ledger.WithTx(tx).Initialize(ctx, stock.InitializeInput{
			ProductID:        product.ID,
			Quantity:         input.InitialQuantity,
			WarningThreshold: input.WarningThreshold,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if err := validateCatalogFields(input.Name, input.Price, input.Remark); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.CategoryID = input.CategoryID
	product.Price = input.Price
	product.Unit = strings.TrimSpace(input.Unit)
	product.Remark = input.Remark

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return product, nil
}

func (s *service) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	rows, err := s.repo.SetEnabled(ctx, id, enabled)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggling product")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

// GetProduct satisfies the order workflow's gateway interface.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Product], error) {
	records, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return pagination.NewPage(records, total, params), nil
}

// CountInCategory satisfies the categories service's gateway interface.
func (s *service) CountInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	count, err := s.repo.CountByCategory(ctx, categoryID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products in category")
	}
	return count, nil
}

func (s *service) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	exists, err := s.categories.CategoryExists(ctx, *categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
	}
	return nil
}

func validateCatalogFields(name string, price decimal.Decimal, remark string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > maxNameLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("name must be between 1 and %d characters", maxNameLen))
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if len(remark) > maxRemarkLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("remark must be at most %d characters", maxRemarkLen))
	}
	return nil
}
