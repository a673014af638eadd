package categories

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"gorm.io/gorm"
)

const maxNameLen = 100

// ProductCounter reports how many products reference a category.
// Satisfied by the products repository.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// Node is a category with its resolved children, for tree responses.
type Node struct {
	models.Category
	Children []*Node `json:"children"`
}

// Service manages the category tree. A category cannot be deleted while it
// still has children or products.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Tree(ctx context.Context) ([]*Node, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateInput registers a category node.
type CreateInput struct {
	Name     string
	ParentID *uuid.UUID
	Sort     int
}

// UpdateInput carries the editable category fields.
type UpdateInput struct {
	Name     string
	ParentID *uuid.UUID
	Sort     int
}

type service struct {
	repo     Repository
	products ProductCounter
}

// NewService wires the category service.
func NewService(repo Repository, products ProductCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product counter required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("name must be between 1 and %d characters", maxNameLen))
	}
	if input.ParentID != nil {
		exists, err := s.CategoryExists(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category does not exist")
		}
	}

	category := &models.Category{
		Name:     name,
		ParentID: input.ParentID,
		Sort:     input.Sort,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return category, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("name must be between 1 and %d characters", maxNameLen))
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
		}
		exists, err := s.CategoryExists(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category does not exist")
		}
	}

	category.Name = name
	category.ParentID = input.ParentID
	category.Sort = input.Sort

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating category")
	}
	return category, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting child categories")
	}
	if children > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has child categories")
	}

	productCount, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products in category")
	}
	if productCount > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has products")
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}
	return category, nil
}

// Tree returns the whole category forest. Nodes whose parent is missing are
// treated as roots rather than dropped.
func (s *service) Tree(ctx context.Context) ([]*Node, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}

	nodes := make(map[uuid.UUID]*Node, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &Node{Category: categories[i], Children: []*Node{}}
	}

	roots := []*Node{}
	for _, category := range categories {
		node := nodes[category.ID]
		if category.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*category.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}

func (s *service) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking category")
	}
	return exists, nil
}
