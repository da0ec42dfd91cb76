package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/enums"
)

// AuditLog records a mutation with full before/after attribute snapshots.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID     *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	Action     enums.AuditAction `gorm:"column:action;type:text;not null"`
	EntityKind string            `gorm:"column:entity_kind;not null"`
	EntityID   string            `gorm:"column:entity_id;not null"`
	Before     json.RawMessage   `gorm:"column:before;type:jsonb;serializer:json"`
	After      json.RawMessage   `gorm:"column:after;type:jsonb;serializer:json"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
