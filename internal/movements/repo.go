package movements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
)

// Repository manages persistence for direct-movement documents. Headers and
// details are append-only; nothing here updates committed rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, trx *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByNumber(ctx context.Context, number string) (*models.Transaction, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, trx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(trx).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var trx models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&trx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.Transaction, error) {
	var trx models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&trx, "trx_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *repository) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Preload("Details").Order("created_at DESC")
	if warehouseID != uuid.Nil {
		q = q.Where("warehouse_id = ?", warehouseID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
