package transfers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
)

// Repository manages persistence for transfer documents. Rows are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, rows []models.StockTransfer) error
	NumberExists(ctx context.Context, number string) (bool, error)
	FindByNumber(ctx context.Context, number string) ([]models.StockTransfer, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockTransfer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transfer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, rows []models.StockTransfer) error {
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockTransfer{}).
		Where("transfer_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) ([]models.StockTransfer, error) {
	var rows []models.StockTransfer
	if err := r.db.WithContext(ctx).
		Where("transfer_number = ?", number).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns transfer lines touching the warehouse on either leg.
func (r *repository) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockTransfer, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if warehouseID != uuid.Nil {
		q = q.Where("from_warehouse_id = ? OR to_warehouse_id = ?", warehouseID, warehouseID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.StockTransfer
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
