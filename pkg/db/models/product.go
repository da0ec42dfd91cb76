package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is master data referenced by movements; never mutated by them.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SKU           string          `gorm:"column:sku;not null;uniqueIndex:ux_products_sku"`
	Barcode       *string         `gorm:"column:barcode;uniqueIndex:ux_products_barcode"`
	Name          string          `gorm:"column:name;not null"`
	CategoryID    *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Unit          string          `gorm:"column:unit;not null;default:'pcs'"`
	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;type:numeric(14,2);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"column:selling_price;type:numeric(14,2);not null;default:0"`
	MinStockAlert int             `gorm:"column:min_stock_alert;not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
