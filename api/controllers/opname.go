package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rahadianwp/gudangku-backend/api/middleware"
	"github.com/rahadianwp/gudangku-backend/api/responses"
	"github.com/rahadianwp/gudangku-backend/api/validators"
	"github.com/rahadianwp/gudangku-backend/internal/opname"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
)

type opnameItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	ActualQty int       `json:"actual_qty" validate:"gte=0"`
	Notes     *string   `json:"notes"`
}

type postOpnameRequest struct {
	OpnameNumber string              `json:"opname_number"`
	WarehouseID  uuid.UUID           `json:"warehouse_id" validate:"required"`
	Date         *time.Time          `json:"date"`
	Notes        *string             `json:"notes"`
	Items        []opnameItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOpnameDraft returns a counting sheet for a warehouse: every active
// product with its current system quantity. Nothing is persisted.
func CreateOpnameDraft(svc opname.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "opname service unavailable"))
			return
		}

		warehouseID, err := validators.UUIDParam(chi.URLParam(r, "warehouseId"), "warehouse id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.CreateDraft(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// PostOpname commits counted quantities, overwriting the ledger.
func PostOpname(svc opname.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "opname service unavailable"))
			return
		}

		var req postOpnameRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := opname.PostInput{
			OpnameNumber: req.OpnameNumber,
			WarehouseID:  req.WarehouseID,
			UserID:       middleware.UserUUIDFromContext(r.Context()),
			Notes:        req.Notes,
			Items:        make([]opname.ItemInput, 0, len(req.Items)),
		}
		if req.Date != nil {
			input.Date = *req.Date
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, opname.ItemInput{
				ProductID: item.ProductID,
				ActualQty: item.ActualQty,
				Notes:     item.Notes,
			})
		}

		result, err := svc.Post(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// GetOpname returns one posted opname with its detail lines.
func GetOpname(svc opname.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "opname service unavailable"))
			return
		}

		id, err := validators.UUIDParam(chi.URLParam(r, "opnameId"), "opname id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListOpnames returns recent opnames, optionally scoped to a warehouse.
func ListOpnames(svc opname.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "opname service unavailable"))
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

		items, err := svc.List(r.Context(), warehouseID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
