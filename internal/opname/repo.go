package opname

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
)

// DraftItem is one line of a correction sheet: every product with its current
// system quantity, missing stock rows defaulting to 0.
type DraftItem struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	SystemQty int       `json:"system_qty"`
}

// Repository manages persistence for opname documents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateHeader(ctx context.Context, header *models.StockOpname) error
	CreateDetail(ctx context.Context, detail *models.StockOpnameDetail) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockOpname, error)
	FindByNumber(ctx context.Context, number string) (*models.StockOpname, error)
	DraftItems(ctx context.Context, warehouseID uuid.UUID) ([]DraftItem, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockOpname, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an opname repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateHeader(ctx context.Context, header *models.StockOpname) error {
	return r.db.WithContext(ctx).Create(header).Error
}

func (r *repository) CreateDetail(ctx context.Context, detail *models.StockOpnameDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockOpname, error) {
	var header models.StockOpname
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&header, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.StockOpname, error) {
	var header models.StockOpname
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&header, "opname_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &header, nil
}

// DraftItems joins all active products against the warehouse's un-binned
// stock rows. Opname reconciles warehouse-level stock; binned rows are
// untouched by it.
func (r *repository) DraftItems(ctx context.Context, warehouseID uuid.UUID) ([]DraftItem, error) {
	var items []DraftItem
	err := r.db.WithContext(ctx).
		Table("products").
		Select("products.id AS product_id, products.sku, products.name, COALESCE(stock_records.quantity, 0) AS system_qty").
		Joins("LEFT JOIN stock_records ON stock_records.product_id = products.id AND stock_records.warehouse_id = ? AND stock_records.location_id IS NULL", warehouseID).
		Where("products.is_active = ?", true).
		Order("products.sku ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.StockOpname, error) {
	q := r.db.WithContext(ctx).Preload("Details").Order("created_at DESC")
	if warehouseID != uuid.Nil {
		q = q.Where("warehouse_id = ?", warehouseID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.StockOpname
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
