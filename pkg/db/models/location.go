package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/enums"
)

// Location is an optional bin inside a warehouse.
type Location struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID uuid.UUID          `gorm:"column:warehouse_id;type:uuid;not null"`
	Code        string             `gorm:"column:code;not null;uniqueIndex:ux_locations_code"`
	Name        string             `gorm:"column:name;not null"`
	Type        enums.LocationType `gorm:"column:type;type:text;not null;default:'storage'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
