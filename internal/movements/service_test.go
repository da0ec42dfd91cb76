package movements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/internal/audit"
	"github.com/rahadianwp/gudangku-backend/internal/catalog"
	"github.com/rahadianwp/gudangku-backend/internal/sequence"
	"github.com/rahadianwp/gudangku-backend/internal/stock"
	"github.com/rahadianwp/gudangku-backend/pkg/config"
	pkgdb "github.com/rahadianwp/gudangku-backend/pkg/db"
	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
	"github.com/rahadianwp/gudangku-backend/pkg/enums"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

type testEnv struct {
	conn   *gorm.DB
	svc    Service
	ledger stock.Ledger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:movements_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Product{},
		&models.Warehouse{},
		&models.Location{},
		&models.StockRecord{},
		&models.Transaction{},
		&models.TransactionDetail{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client := pkgdb.NewFromConn(conn)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	ledger := stock.NewLedger(conn)
	sequencer, err := sequence.NewService(sequence.NewRepository(conn), config.DocumentConfig{
		TransactionPrefix: "TRX",
		TransferPrefix:    "TRF",
		OpnamePrefix:      "OPN",
		NumberRetries:     3,
	})
	if err != nil {
		t.Fatalf("sequencer: %v", err)
	}
	svc, err := NewService(client, NewRepository(conn), catalogSvc, ledger, sequencer, audit.NewRecorder(conn), nil, nil, 3)
	if err != nil {
		t.Fatalf("movement service: %v", err)
	}
	return &testEnv{conn: conn, svc: svc, ledger: ledger}
}

func (e *testEnv) mustCreateWarehouse(t *testing.T, code string) *models.Warehouse {
	t.Helper()
	warehouse := &models.Warehouse{Code: code, Name: code, IsActive: true}
	if err := e.conn.Create(warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return warehouse
}

func (e *testEnv) mustCreateProduct(t *testing.T, sku, name string) *models.Product {
	t.Helper()
	product := &models.Product{SKU: sku, Name: name, Unit: "pcs"}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (e *testEnv) quantity(t *testing.T, warehouseID, productID uuid.UUID) int {
	t.Helper()
	qty, err := e.ledger.GetQuantity(context.Background(), stock.NewKey(warehouseID, productID))
	if err != nil {
		t.Fatalf("get quantity: %v", err)
	}
	return qty
}

func TestPostInbound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-IN")
	product := env.mustCreateProduct(t, "SKU-IN", "Inbound Widget")
	userID := uuid.New()

	trx, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Date:        time.Date(2025, time.August, 12, 10, 0, 0, 0, time.UTC),
		Items:       []ItemInput{{ProductID: product.ID, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if trx.TrxNumber != "TRX-20250812-001" {
		t.Fatalf("unexpected generated number: %s", trx.TrxNumber)
	}
	if trx.Status != models.TransactionStatusCompleted {
		t.Fatalf("direct movements are completed immediately, got %s", trx.Status)
	}
	if len(trx.Details) != 1 || trx.Details[0].Quantity != 10 {
		t.Fatalf("unexpected details: %+v", trx.Details)
	}
	if got := env.quantity(t, warehouse.ID, product.ID); got != 10 {
		t.Fatalf("expected ledger quantity 10, got %d", got)
	}

	var auditCount int64
	if err := env.conn.Model(&models.AuditLog{}).
		Where("entity_kind = ? AND entity_id = ?", "transaction", trx.ID.String()).
		Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected one audit row, got %d", auditCount)
	}
}

func TestPostConservation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-CSV")
	first := env.mustCreateProduct(t, "SKU-C1", "First")
	second := env.mustCreateProduct(t, "SKU-C2", "Second")
	userID := uuid.New()

	if _, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Items: []ItemInput{
			{ProductID: first.ID, Quantity: 8},
			{ProductID: second.ID, Quantity: 5},
		},
	}); err != nil {
		t.Fatalf("inbound: %v", err)
	}

	trx, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeOutbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Items: []ItemInput{
			{ProductID: first.ID, Quantity: 3},
			{ProductID: second.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("outbound: %v", err)
	}

	// Sum of signed detail quantities equals the applied ledger deltas.
	sum := 0
	for _, detail := range trx.Details {
		sum += trx.Type.Sign() * detail.Quantity
	}
	if sum != -5 {
		t.Fatalf("unexpected signed detail sum: %d", sum)
	}
	if got := env.quantity(t, warehouse.ID, first.ID); got != 5 {
		t.Fatalf("expected 5 of first, got %d", got)
	}
	if got := env.quantity(t, warehouse.ID, second.ID); got != 3 {
		t.Fatalf("expected 3 of second, got %d", got)
	}
}

func TestPostOutboundInsufficientAbortsAll(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-OUT")
	product := env.mustCreateProduct(t, "SKU-OUT", "Scarce Widget")
	userID := uuid.New()

	if _, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Items:       []ItemInput{{ProductID: product.ID, Quantity: 10}},
	}); err != nil {
		t.Fatalf("seed inbound: %v", err)
	}

	_, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeOutbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Items:       []ItemInput{{ProductID: product.ID, Quantity: 15}},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	details := pkgerrors.As(err).Details().(stock.InsufficientStockDetails)
	if details.Requested != 15 || details.Available != 10 || details.ProductName != "Scarce Widget" {
		t.Fatalf("unexpected details: %+v", details)
	}

	// Nothing from the rejected posting survives.
	if got := env.quantity(t, warehouse.ID, product.ID); got != 10 {
		t.Fatalf("quantity changed after rejected posting: %d", got)
	}
	var count int64
	if err := env.conn.Model(&models.Transaction{}).
		Where("type = ?", enums.TransactionTypeOutbound).
		Count(&count).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected posting left %d header rows", count)
	}
}

func TestPostPartialBatchLeavesNoTrace(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-MIX")
	plenty := env.mustCreateProduct(t, "SKU-P", "Plenty")
	scarce := env.mustCreateProduct(t, "SKU-S", "Scarce")
	userID := uuid.New()

	if _, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Items: []ItemInput{
			{ProductID: plenty.ID, Quantity: 50},
			{ProductID: scarce.ID, Quantity: 2},
		},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeOutbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Items: []ItemInput{
			{ProductID: plenty.ID, Quantity: 10},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	// The first line's successful delta must be rolled back with the batch.
	if got := env.quantity(t, warehouse.ID, plenty.ID); got != 50 {
		t.Fatalf("first line leaked: %d", got)
	}
	if got := env.quantity(t, warehouse.ID, scarce.ID); got != 2 {
		t.Fatalf("second line leaked: %d", got)
	}
}

func TestPostDuplicateSuppliedNumber(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-DUP")
	product := env.mustCreateProduct(t, "SKU-DUP", "Duplicated")
	userID := uuid.New()

	input := PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		TrxNumber:   "TRX-CUSTOM-001",
		Items:       []ItemInput{{ProductID: product.ID, Quantity: 1}},
	}
	if _, err := env.svc.Post(ctx, input); err != nil {
		t.Fatalf("first post: %v", err)
	}

	_, err := env.svc.Post(ctx, input)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDuplicateDocument) {
		t.Fatalf("expected DUPLICATE_DOCUMENT, got %v", err)
	}
	details := pkgerrors.As(err).Details().(sequence.DuplicateNumberDetails)
	if details.Number != "TRX-CUSTOM-001" {
		t.Fatalf("unexpected details: %+v", details)
	}

	// Caller-supplied numbers are not retried; only the first posting landed.
	if got := env.quantity(t, warehouse.ID, product.ID); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
}

func TestPostGeneratedNumbersIncrement(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-SEQ")
	product := env.mustCreateProduct(t, "SKU-SEQ", "Sequenced")
	userID := uuid.New()
	day := time.Date(2025, time.August, 12, 8, 0, 0, 0, time.UTC)

	input := PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      userID,
		Date:        day,
		Items:       []ItemInput{{ProductID: product.ID, Quantity: 1}},
	}
	first, err := env.svc.Post(ctx, input)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := env.svc.Post(ctx, input)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.TrxNumber != "TRX-20250812-001" || second.TrxNumber != "TRX-20250812-002" {
		t.Fatalf("expected increasing suffixes, got %s then %s", first.TrxNumber, second.TrxNumber)
	}
}

func TestPostValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Post(ctx, PostInput{
		Type:  enums.TransactionType("sideways"),
		Items: []ItemInput{{ProductID: uuid.Nil, Quantity: 0}},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestPostUnknownProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	warehouse := env.mustCreateWarehouse(t, "WH-NF")

	_, err := env.svc.Post(ctx, PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: warehouse.ID,
		UserID:      uuid.New(),
		Items:       []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestPostUnknownWarehouse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.svc.Post(context.Background(), PostInput{
		Type:        enums.TransactionTypeInbound,
		WarehouseID: uuid.New(),
		UserID:      uuid.New(),
		Items:       []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
