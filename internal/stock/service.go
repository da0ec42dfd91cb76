package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

// Service is the read-only stock query surface consumed by the UI and by the
// processors when building correction sheets.
type Service interface {
	GetQuantity(ctx context.Context, key Key) (int, error)
	AvailableStock(ctx context.Context, warehouseID uuid.UUID) ([]AvailableRow, error)
	StockBreakdown(ctx context.Context, productID uuid.UUID) ([]BreakdownRow, error)
	LowStock(ctx context.Context, warehouseID uuid.UUID) ([]LowStockRow, error)
}

type service struct {
	ledger Ledger
	query  QueryRepository
}

// NewService wires the stock query service.
func NewService(ledger Ledger, query QueryRepository) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if query == nil {
		return nil, fmt.Errorf("stock query repository required")
	}
	return &service{ledger: ledger, query: query}, nil
}

func (s *service) GetQuantity(ctx context.Context, key Key) (int, error) {
	if key.WarehouseID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	if key.ProductID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.ledger.GetQuantity(ctx, key)
}

func (s *service) AvailableStock(ctx context.Context, warehouseID uuid.UUID) ([]AvailableRow, error) {
	if warehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	return s.query.AvailableRows(ctx, warehouseID)
}

func (s *service) StockBreakdown(ctx context.Context, productID uuid.UUID) ([]BreakdownRow, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.query.BreakdownRows(ctx, productID)
}

func (s *service) LowStock(ctx context.Context, warehouseID uuid.UUID) ([]LowStockRow, error) {
	if warehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	return s.query.LowStockRows(ctx, warehouseID)
}
