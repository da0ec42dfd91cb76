package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

// NotFoundDetails identifies the missing reference on a NOT_FOUND error.
type NotFoundDetails struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// Service exposes the master-data lookups movements depend on. Products,
// warehouses and locations are referenced by the processors, never mutated.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	RequireActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	RegisterProduct(ctx context.Context, product *models.Product) error
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func notFound(entity string, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found").
		WithDetails(NotFoundDetails{Entity: entity, ID: id.String()})
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *service) GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	warehouse, err := s.repo.FindWarehouse(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("warehouse", id)
		}
		return nil, err
	}
	return warehouse, nil
}

func (s *service) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}
	location, err := s.repo.FindLocation(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("location", id)
		}
		return nil, err
	}
	return location, nil
}

func (s *service) RequireActiveWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !warehouse.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse is inactive").
			WithDetails(NotFoundDetails{Entity: "warehouse", ID: id.String()})
	}
	return warehouse, nil
}

func (s *service) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListActiveProducts(ctx)
}

// RegisterProduct persists a new product, generating a barcode when none was
// supplied. Used by seeding, not exposed over HTTP.
func (s *service) RegisterProduct(ctx context.Context, product *models.Product) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if strings.TrimSpace(product.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product sku is required")
	}
	if strings.TrimSpace(product.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if product.Barcode == nil || strings.TrimSpace(*product.Barcode) == "" {
		barcode := generateBarcode()
		product.Barcode = &barcode
	}
	return s.repo.CreateProduct(ctx, product)
}

// generateBarcode derives a 13-digit numeric code from a fresh UUID.
func generateBarcode() string {
	id := uuid.New()
	var digits [13]byte
	for i := 0; i < 13; i++ {
		digits[i] = '0' + id[i]%10
	}
	return string(digits[:])
}
