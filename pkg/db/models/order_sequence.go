package models

import "github.com/stockroomhq/warehouse-backend/pkg/enums"

// OrderSequence tracks the last allocated order number per kind per day.
// SeqDate is the YYYYMMDD portion of the order number. SeqValue caps at 9999.
type OrderSequence struct {
	Kind     enums.OrderKind `gorm:"size:16;primaryKey" json:"kind"`
	SeqDate  string          `gorm:"size:8;primaryKey" json:"seqDate"`
	SeqValue int             `gorm:"not null;default:0" json:"seqValue"`
}

// TableName keeps the table name explicit for raw upsert statements.
func (OrderSequence) TableName() string {
	return "order_sequences"
}
