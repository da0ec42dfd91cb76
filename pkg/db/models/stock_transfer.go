package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/enums"
)

// StockTransfer is one product line of an inter-warehouse transfer. Lines of
// the same batch share a transfer number; the composite unique index keeps a
// number from being reused for the same product, and the processor rejects
// reuse of a number by a new batch.
type StockTransfer struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TransferNumber  string               `gorm:"column:transfer_number;not null;uniqueIndex:ux_stock_transfers_number_product"`
	TransferDate    time.Time            `gorm:"column:transfer_date;not null"`
	FromWarehouseID uuid.UUID            `gorm:"column:from_warehouse_id;type:uuid;not null"`
	ToWarehouseID   uuid.UUID            `gorm:"column:to_warehouse_id;type:uuid;not null"`
	ProductID       uuid.UUID            `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_stock_transfers_number_product"`
	Quantity        int                  `gorm:"column:quantity;not null"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	Status          enums.TransferStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	Notes           *string              `gorm:"column:notes"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (s *StockTransfer) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
