package stock

import (
	"github.com/google/uuid"

	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
)

// InsufficientStockDetails names the failing product and the quantities
// involved so the caller can render a precise message.
type InsufficientStockDetails struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// NewInsufficientStock builds the typed error raised when a decrement would
// drive a stock record negative.
func NewInsufficientStock(details InsufficientStockDetails) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(details)
}
