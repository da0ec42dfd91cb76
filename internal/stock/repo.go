package stock

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db"
	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
)

// Ledger is the authoritative quantity-on-hand store. All three mutation paths
// run inside the caller's transaction; the guarded UPDATE in ApplyDelta takes
// the row lock that closes the check-then-decrement race.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	GetQuantity(ctx context.Context, key Key) (int, error)
	ApplyDelta(ctx context.Context, key Key, delta int) error
	SetQuantity(ctx context.Context, key Key, qty int) error
	RecordsByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.StockRecord, error)
	RecordsByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockRecord, error)
}

type ledger struct {
	db *gorm.DB
}

// NewLedger returns a stock ledger bound to the provided database.
func NewLedger(conn *gorm.DB) Ledger {
	return &ledger{db: conn}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

func (l *ledger) GetQuantity(ctx context.Context, key Key) (int, error) {
	var record models.StockRecord
	err := key.scope(l.db.WithContext(ctx)).First(&record).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Quantity, nil
}

// ApplyDelta adds delta to the keyed record, creating it lazily. A negative
// result is rejected with InsufficientStock and no write occurs: the guard and
// the decrement are one conditional UPDATE, so two concurrent decrements can
// never both pass the sufficiency check.
func (l *ledger) ApplyDelta(ctx context.Context, key Key, delta int) error {
	if delta < 0 {
		return l.decrement(ctx, key, -delta)
	}
	return l.increment(ctx, key, delta)
}

func (l *ledger) decrement(ctx context.Context, key Key, qty int) error {
	res := key.scope(l.db.WithContext(ctx).Model(&models.StockRecord{})).
		Where("quantity >= ?", qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		available, err := l.GetQuantity(ctx, key)
		if err != nil {
			return err
		}
		return NewInsufficientStock(InsufficientStockDetails{
			ProductID: key.ProductID,
			Requested: qty,
			Available: available,
		})
	}
	return nil
}

func (l *ledger) increment(ctx context.Context, key Key, qty int) error {
	res := key.scope(l.db.WithContext(ctx).Model(&models.StockRecord{})).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	record := models.StockRecord{
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		Quantity:    qty,
	}
	err := l.db.WithContext(ctx).Create(&record).Error
	if err == nil {
		return nil
	}
	if !db.IsUniqueViolation(err, "") {
		return err
	}
	// Lost the insert race; the row exists now, so the increment must land.
	res = key.scope(l.db.WithContext(ctx).Model(&models.StockRecord{})).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	return res.Error
}

// SetQuantity overwrites the keyed record absolutely. Reconciliation only;
// the caller validates qty >= 0 before invocation.
func (l *ledger) SetQuantity(ctx context.Context, key Key, qty int) error {
	res := key.scope(l.db.WithContext(ctx).Model(&models.StockRecord{})).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	record := models.StockRecord{
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		Quantity:    qty,
	}
	err := l.db.WithContext(ctx).Create(&record).Error
	if err == nil {
		return nil
	}
	if !db.IsUniqueViolation(err, "") {
		return err
	}
	res = key.scope(l.db.WithContext(ctx).Model(&models.StockRecord{})).
		Update("quantity", qty)
	return res.Error
}

func (l *ledger) RecordsByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := l.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("product_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (l *ledger) RecordsByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockRecord, error) {
	var records []models.StockRecord
	if err := l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("warehouse_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
