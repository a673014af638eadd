package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultWarehouseID identifies the single physical warehouse. The column
// exists so a multi-warehouse rollout only needs new rows, not a migration.
const DefaultWarehouseID int64 = 1

// StockRecord is the on-hand quantity for one product in one warehouse.
// Quantity never goes below zero; decreases are guarded in SQL.
type StockRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_warehouse" json:"productId"`
	WarehouseID      int64     `gorm:"not null;default:1;uniqueIndex:idx_stock_product_warehouse" json:"warehouseId"`
	Quantity         int       `gorm:"not null;default:0" json:"quantity"`
	WarningThreshold int       `gorm:"not null;default:10" json:"warningThreshold"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (s *StockRecord) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsLow reports whether the quantity has dropped to the warning threshold.
func (s StockRecord) IsLow() bool {
	return s.Quantity <= s.WarningThreshold
}
