package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockRecord holds quantity-on-hand for one (warehouse, product, location?)
// key. Rows are created lazily on first movement and retained at zero quantity;
// "row exists with quantity 0" and "no row" both read as 0.
type StockRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:ux_stock_records_key"`
	ProductID   uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_stock_records_key"`
	LocationID  *uuid.UUID `gorm:"column:location_id;type:uuid;uniqueIndex:ux_stock_records_key"`
	Quantity    int        `gorm:"column:quantity;not null;default:0"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *StockRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
