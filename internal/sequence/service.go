package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	// MaxPerDay caps how many order numbers one kind can mint per day.
	MaxPerDay = 9999

	dateLayout = "20060102"
)

// Allocator mints order numbers of the form <PREFIX><YYYYMMDD><NNNN>,
// e.g. IN202601050001. Numbers are unique per kind per day and are never
// reused, even for orders that are later voided.
type Allocator interface {
	WithTx(tx *gorm.DB) Allocator
	Next(ctx context.Context, kind enums.OrderKind, day time.Time) (string, error)
}

type allocator struct {
	repo Repository
}

// NewAllocator wires an order number allocator.
func NewAllocator(repo Repository) (Allocator, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &allocator{repo: repo}, nil
}

func (a *allocator) WithTx(tx *gorm.DB) Allocator {
	if tx == nil {
		return a
	}
	return &allocator{repo: a.repo.WithTx(tx)}
}

func (a *allocator) Next(ctx context.Context, kind enums.OrderKind, day time.Time) (string, error) {
	if !kind.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order kind %q", kind))
	}
	if day.IsZero() {
		day = time.Now()
	}
	seqDate := day.UTC().Format(dateLayout)

	value, err := a.repo.NextValue(ctx, kind, seqDate)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocating order number")
	}
	if value > MaxPerDay {
		return "", pkgerrors.New(pkgerrors.CodeSequenceExhausted,
			fmt.Sprintf("order numbers for %s exhausted on %s", kind, seqDate))
	}

	return Format(kind, seqDate, value), nil
}

// Format renders the order number from its parts.
func Format(kind enums.OrderKind, seqDate string, value int) string {
	return fmt.Sprintf("%s%s%04d", kind.Prefix(), seqDate, value)
}
