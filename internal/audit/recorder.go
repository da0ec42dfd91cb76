package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
	"github.com/rahadianwp/gudangku-backend/pkg/enums"
)

// Entry is one recorded mutation with full before/after snapshots. The
// processors supply complete field values; storage and formatting live here.
type Entry struct {
	UserID     *uuid.UUID
	Action     enums.AuditAction
	EntityKind string
	EntityID   string
	Before     any
	After      any
}

// Recorder persists audit entries. Record runs inside the caller's
// transaction so the audit row shares the posting's fate.
type Recorder interface {
	WithTx(tx *gorm.DB) Recorder
	Record(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, entityKind, entityID string) ([]models.AuditLog, error)
}

type recorder struct {
	db *gorm.DB
}

// NewRecorder returns an audit recorder bound to the provided database.
func NewRecorder(db *gorm.DB) Recorder {
	return &recorder{db: db}
}

func (r *recorder) WithTx(tx *gorm.DB) Recorder {
	if tx == nil {
		return r
	}
	return &recorder{db: tx}
}

func (r *recorder) Record(ctx context.Context, entry Entry) error {
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid audit action %q", entry.Action)
	}
	if entry.EntityKind == "" || entry.EntityID == "" {
		return fmt.Errorf("audit entry requires entity kind and id")
	}

	before, err := snapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("marshal before snapshot: %w", err)
	}
	after, err := snapshot(entry.After)
	if err != nil {
		return fmt.Errorf("marshal after snapshot: %w", err)
	}

	row := &models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityKind: entry.EntityKind,
		EntityID:   entry.EntityID,
		Before:     before,
		After:      after,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *recorder) ListByEntity(ctx context.Context, entityKind, entityID string) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	if err := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
