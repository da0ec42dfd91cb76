package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rahadianwp/gudangku-backend/api/middleware"
	"github.com/rahadianwp/gudangku-backend/api/responses"
	"github.com/rahadianwp/gudangku-backend/api/validators"
	"github.com/rahadianwp/gudangku-backend/internal/transfers"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
)

type transferItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type postTransferRequest struct {
	TransferNumber  string                `json:"transfer_number"`
	FromWarehouseID uuid.UUID             `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   uuid.UUID             `json:"to_warehouse_id" validate:"required"`
	Date            *time.Time            `json:"date"`
	Notes           *string               `json:"notes"`
	Items           []transferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PostTransfer moves stock between two warehouses as one batch.
func PostTransfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		var req postTransferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := transfers.PostInput{
			TransferNumber:  req.TransferNumber,
			FromWarehouseID: req.FromWarehouseID,
			ToWarehouseID:   req.ToWarehouseID,
			UserID:          middleware.UserUUIDFromContext(r.Context()),
			Notes:           req.Notes,
			Items:           make([]transfers.ItemInput, 0, len(req.Items)),
		}
		if req.Date != nil {
			input.Date = *req.Date
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, transfers.ItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		rows, err := svc.Post(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rows)
	}
}

// GetTransfer returns every line of one transfer batch by its number.
func GetTransfer(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		number := strings.TrimSpace(chi.URLParam(r, "transferNumber"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transfer number is required"))
			return
		}

		rows, err := svc.GetByNumber(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListTransfers returns recent transfers touching a warehouse on either leg.
func ListTransfers(svc transfers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		warehouseID, err := validators.OptionalUUIDQuery(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.LimitQuery(r, 50, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), warehouseID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
