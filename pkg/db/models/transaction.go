package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/enums"
)

// TransactionStatusCompleted is the only status a direct movement ever holds;
// direct movements apply synchronously with no approval gate.
const TransactionStatusCompleted = "completed"

// Transaction is a direct inbound/outbound movement header.
type Transaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	TrxNumber   string                `gorm:"column:trx_number;not null;uniqueIndex:ux_transactions_trx_number"`
	Type        enums.TransactionType `gorm:"column:type;type:text;not null"`
	WarehouseID uuid.UUID             `gorm:"column:warehouse_id;type:uuid;not null"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	Date        time.Time             `gorm:"column:date;not null"`
	Status      string                `gorm:"column:status;not null;default:'completed'"`
	Details     []TransactionDetail   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TransactionDetail is one product line of a direct movement.
type TransactionDetail struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (d *TransactionDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
