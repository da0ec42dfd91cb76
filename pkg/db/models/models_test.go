package models_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
)

func allModels() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Warehouse{},
		&models.Location{},
		&models.StockRecord{},
		&models.Transaction{},
		&models.TransactionDetail{},
		&models.StockTransfer{},
		&models.StockOpname{},
		&models.StockOpnameDetail{},
		&models.AuditLog{},
	}
}

// The full model set must AutoMigrate under the sqlite test driver; Postgres
// column defaults stay in the goose migrations, not in gorm tags.
func TestModelsAutoMigrateOnSQLite(t *testing.T) {
	t.Parallel()

	dsn := "file:models_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	t.Parallel()

	dsn := "file:models_ids_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	warehouse := models.Warehouse{Name: "Main", Code: "WH-01"}
	if err := conn.Create(&warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	if warehouse.ID == uuid.Nil {
		t.Fatalf("expected warehouse id to be assigned on create")
	}

	record := models.StockRecord{
		WarehouseID: warehouse.ID,
		ProductID:   uuid.New(),
		Quantity:    4,
	}
	if err := conn.Create(&record).Error; err != nil {
		t.Fatalf("create stock record: %v", err)
	}
	if record.ID == uuid.Nil {
		t.Fatalf("expected stock record id to be assigned on create")
	}
}
