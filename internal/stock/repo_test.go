package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Product{},
		&models.Warehouse{},
		&models.Location{},
		&models.StockRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestGetQuantityMissingRowReadsZero(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)

	qty, err := ledger.GetQuantity(context.Background(), NewKey(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	if qty != 0 {
		t.Fatalf("expected 0 for missing row, got %d", qty)
	}
}

func TestApplyDeltaCreatesRowLazily(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()
	key := NewKey(uuid.New(), uuid.New())

	if err := ledger.ApplyDelta(ctx, key, 10); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	qty, err := ledger.GetQuantity(ctx, key)
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	if qty != 10 {
		t.Fatalf("expected 10, got %d", qty)
	}

	if err := ledger.ApplyDelta(ctx, key, -4); err != nil {
		t.Fatalf("ApplyDelta decrement: %v", err)
	}
	qty, _ = ledger.GetQuantity(ctx, key)
	if qty != 6 {
		t.Fatalf("expected 6 after decrement, got %d", qty)
	}
}

func TestApplyDeltaRejectsNegativeResult(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()
	key := NewKey(uuid.New(), uuid.New())

	if err := ledger.ApplyDelta(ctx, key, 10); err != nil {
		t.Fatalf("seed quantity: %v", err)
	}

	err := ledger.ApplyDelta(ctx, key, -15)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(InsufficientStockDetails)
	if !ok {
		t.Fatalf("unexpected details type: %T", pkgerrors.As(err).Details())
	}
	if details.Requested != 15 || details.Available != 10 || details.ProductID != key.ProductID {
		t.Fatalf("unexpected details: %+v", details)
	}

	// The rejected write must not have touched the row.
	qty, err := ledger.GetQuantity(ctx, key)
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	if qty != 10 {
		t.Fatalf("quantity changed after rejected decrement: %d", qty)
	}
}

func TestApplyDeltaDecrementOnMissingRow(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)

	err := ledger.ApplyDelta(context.Background(), NewKey(uuid.New(), uuid.New()), -1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	details := pkgerrors.As(err).Details().(InsufficientStockDetails)
	if details.Available != 0 || details.Requested != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestApplyDeltaToZeroRetainsRow(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()
	key := NewKey(uuid.New(), uuid.New())

	if err := ledger.ApplyDelta(ctx, key, 5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ledger.ApplyDelta(ctx, key, -5); err != nil {
		t.Fatalf("drain: %v", err)
	}

	var count int64
	if err := conn.Model(&models.StockRecord{}).
		Where("warehouse_id = ? AND product_id = ?", key.WarehouseID, key.ProductID).
		Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("zero-quantity row should be retained, got %d rows", count)
	}
}

func TestApplyDeltaSeparateLocationRows(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()

	warehouseID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	base := NewKey(warehouseID, productID)
	binned := base.At(locationID)

	if err := ledger.ApplyDelta(ctx, base, 3); err != nil {
		t.Fatalf("base delta: %v", err)
	}
	if err := ledger.ApplyDelta(ctx, binned, 7); err != nil {
		t.Fatalf("binned delta: %v", err)
	}

	baseQty, _ := ledger.GetQuantity(ctx, base)
	binnedQty, _ := ledger.GetQuantity(ctx, binned)
	if baseQty != 3 || binnedQty != 7 {
		t.Fatalf("location keys should not alias: base=%d binned=%d", baseQty, binnedQty)
	}
}

func TestSetQuantityOverwrites(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()
	key := NewKey(uuid.New(), uuid.New())

	if err := ledger.ApplyDelta(ctx, key, 10); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ledger.SetQuantity(ctx, key, 7); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	qty, _ := ledger.GetQuantity(ctx, key)
	if qty != 7 {
		t.Fatalf("expected absolute overwrite to 7, got %d", qty)
	}

	// Absolute, not a delta: setting the same value again is a no-op result-wise.
	if err := ledger.SetQuantity(ctx, key, 7); err != nil {
		t.Fatalf("SetQuantity repeat: %v", err)
	}
	qty, _ = ledger.GetQuantity(ctx, key)
	if qty != 7 {
		t.Fatalf("expected 7 after resubmission, got %d", qty)
	}
}

func TestSetQuantityCreatesMissingRow(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()
	key := NewKey(uuid.New(), uuid.New())

	if err := ledger.SetQuantity(ctx, key, 12); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	qty, _ := ledger.GetQuantity(ctx, key)
	if qty != 12 {
		t.Fatalf("expected 12, got %d", qty)
	}
}

func TestScopeNullLocationDoesNotMatchBinnedRows(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ledger := NewLedger(conn)
	ctx := context.Background()

	warehouseID := uuid.New()
	productID := uuid.New()
	binned := NewKey(warehouseID, productID).At(uuid.New())

	if err := ledger.ApplyDelta(ctx, binned, 9); err != nil {
		t.Fatalf("binned delta: %v", err)
	}

	qty, err := ledger.GetQuantity(ctx, NewKey(warehouseID, productID))
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	if qty != 0 {
		t.Fatalf("null-location key must not read binned rows, got %d", qty)
	}
}
