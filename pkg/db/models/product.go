package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. Disabled products are kept for history but
// cannot appear on new orders.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SKU        string          `gorm:"size:64;not null;uniqueIndex:idx_products_sku" json:"sku"`
	Name       string          `gorm:"size:200;not null" json:"name"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"categoryId"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Unit       string          `gorm:"size:20" json:"unit"`
	Enabled    bool            `gorm:"not null" json:"enabled"`
	Remark     string          `gorm:"size:500" json:"remark"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
