package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailableRow is one pickable product in a warehouse, summed across bins.
type AvailableRow struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Quantity  int       `json:"quantity"`
}

// BreakdownRow is one warehouse/location holding of a product.
type BreakdownRow struct {
	WarehouseID   uuid.UUID  `json:"warehouse_id"`
	WarehouseCode string     `json:"warehouse_code"`
	WarehouseName string     `json:"warehouse_name"`
	LocationID    *uuid.UUID `json:"location_id,omitempty"`
	LocationCode  *string    `json:"location_code,omitempty"`
	Quantity      int        `json:"quantity"`
}

// LowStockRow is a product at or below its minimum stock alert level.
type LowStockRow struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	MinStockAlert int       `json:"min_stock_alert"`
}

// QueryRepository serves the read-only snapshot views.
type QueryRepository interface {
	AvailableRows(ctx context.Context, warehouseID uuid.UUID) ([]AvailableRow, error)
	BreakdownRows(ctx context.Context, productID uuid.UUID) ([]BreakdownRow, error)
	LowStockRows(ctx context.Context, warehouseID uuid.UUID) ([]LowStockRow, error)
}

type queryRepository struct {
	db *gorm.DB
}

// NewQueryRepository returns read-only stock views bound to the database.
func NewQueryRepository(conn *gorm.DB) QueryRepository {
	return &queryRepository{db: conn}
}

func (r *queryRepository) AvailableRows(ctx context.Context, warehouseID uuid.UUID) ([]AvailableRow, error) {
	var rows []AvailableRow
	err := r.db.WithContext(ctx).
		Table("stock_records").
		Select("stock_records.product_id, products.sku, products.name, products.unit, SUM(stock_records.quantity) AS quantity").
		Joins("JOIN products ON products.id = stock_records.product_id").
		Where("stock_records.warehouse_id = ?", warehouseID).
		Group("stock_records.product_id, products.sku, products.name, products.unit").
		Having("SUM(stock_records.quantity) > 0").
		Order("products.sku ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *queryRepository) BreakdownRows(ctx context.Context, productID uuid.UUID) ([]BreakdownRow, error) {
	var rows []BreakdownRow
	err := r.db.WithContext(ctx).
		Table("stock_records").
		Select("stock_records.warehouse_id, warehouses.code AS warehouse_code, warehouses.name AS warehouse_name, stock_records.location_id, locations.code AS location_code, stock_records.quantity").
		Joins("JOIN warehouses ON warehouses.id = stock_records.warehouse_id").
		Joins("LEFT JOIN locations ON locations.id = stock_records.location_id").
		Where("stock_records.product_id = ?", productID).
		Where("stock_records.quantity > 0").
		Order("warehouses.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *queryRepository) LowStockRows(ctx context.Context, warehouseID uuid.UUID) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select("products.id AS product_id, products.sku, products.name, COALESCE(SUM(stock_records.quantity), 0) AS quantity, products.min_stock_alert").
		Joins("LEFT JOIN stock_records ON stock_records.product_id = products.id AND stock_records.warehouse_id = ?", warehouseID).
		Where("products.is_active = ?", true).
		Where("products.min_stock_alert > 0").
		Group("products.id, products.sku, products.name, products.min_stock_alert").
		Having("COALESCE(SUM(stock_records.quantity), 0) <= products.min_stock_alert").
		Order("products.sku ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
