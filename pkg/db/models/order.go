package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"gorm.io/gorm"
)

// Order is one inbound or outbound movement request. Stock is only touched
// when the order is approved, and exactly once.
type Order struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNo             string            `gorm:"size:16;not null;uniqueIndex:idx_orders_order_no" json:"orderNo"`
	Kind                enums.OrderKind   `gorm:"size:16;not null;index" json:"kind"`
	ProductID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"productId"`
	Quantity            int               `gorm:"not null" json:"quantity"`
	CounterpartyName    string            `gorm:"size:100;not null" json:"counterpartyName"`
	CounterpartyContact string            `gorm:"size:100" json:"counterpartyContact"`
	OrderDate           time.Time         `gorm:"not null;index" json:"orderDate"`
	Status              enums.OrderStatus `gorm:"size:16;not null;index" json:"status"`
	Remark              string            `gorm:"size:500" json:"remark"`
	CreatedBy           string            `gorm:"size:64;not null" json:"createdBy"`
	ApprovedBy          *string           `gorm:"size:64" json:"approvedBy"`
	ApprovedAt          *time.Time        `json:"approvedAt"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
