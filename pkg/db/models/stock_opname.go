package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockOpname is a physical-count reconciliation header.
type StockOpname struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OpnameNumber string              `gorm:"column:opname_number;not null;uniqueIndex:ux_stock_opnames_number"`
	OpnameDate   time.Time           `gorm:"column:opname_date;not null"`
	WarehouseID  uuid.UUID           `gorm:"column:warehouse_id;type:uuid;not null"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Notes        *string             `gorm:"column:notes"`
	Details      []StockOpnameDetail `gorm:"foreignKey:OpnameID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (o *StockOpname) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// StockOpnameDetail snapshots the system vs counted quantity for one product.
// SystemQty is re-read at posting time, not the draft value.
type StockOpnameDetail struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OpnameID   uuid.UUID `gorm:"column:opname_id;type:uuid;not null"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SystemQty  int       `gorm:"column:system_qty;not null"`
	ActualQty  int       `gorm:"column:actual_qty;not null"`
	Difference int       `gorm:"column:difference;not null"`
	Notes      *string   `gorm:"column:notes"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (d *StockOpnameDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
