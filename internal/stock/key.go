package stock

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Key identifies one stock record: a product held in a warehouse, optionally
// narrowed to a bin location. A missing row and a row holding zero both read
// as quantity 0.
type Key struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	LocationID  *uuid.UUID
}

// NewKey builds a warehouse-level key with no location.
func NewKey(warehouseID, productID uuid.UUID) Key {
	return Key{WarehouseID: warehouseID, ProductID: productID}
}

// At narrows the key to a bin location.
func (k Key) At(locationID uuid.UUID) Key {
	k.LocationID = &locationID
	return k
}

// scope appends the key's where clause. Null locations need an explicit
// IS NULL predicate; "location_id = NULL" matches nothing.
func (k Key) scope(q *gorm.DB) *gorm.DB {
	q = q.Where("warehouse_id = ? AND product_id = ?", k.WarehouseID, k.ProductID)
	if k.LocationID == nil {
		return q.Where("location_id IS NULL")
	}
	return q.Where("location_id = ?", *k.LocationID)
}
