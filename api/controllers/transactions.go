package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rahadianwp/gudangku-backend/api/middleware"
	"github.com/rahadianwp/gudangku-backend/api/responses"
	"github.com/rahadianwp/gudangku-backend/api/validators"
	"github.com/rahadianwp/gudangku-backend/internal/movements"
	"github.com/rahadianwp/gudangku-backend/pkg/enums"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
)

type transactionItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type postTransactionRequest struct {
	Type        string                   `json:"type" validate:"required,oneof=inbound outbound"`
	WarehouseID uuid.UUID                `json:"warehouse_id" validate:"required"`
	TrxNumber   string                   `json:"trx_number"`
	Date        *time.Time               `json:"date"`
	Items       []transactionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PostTransaction records a direct inbound or outbound movement.
func PostTransaction(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movement service unavailable"))
			return
		}

		var req postTransactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trxType, err := enums.ParseTransactionType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		input := movements.PostInput{
			Type:        trxType,
			WarehouseID: req.WarehouseID,
			UserID:      middleware.UserUUIDFromContext(r.Context()),
			TrxNumber:   req.TrxNumber,
			Items:       make([]movements.ItemInput, 0, len(req.Items)),
		}
		if req.Date != nil {
			input.Date = *req.Date
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, movements.ItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		trx, err := svc.Post(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, trx)
	}
}

// GetTransaction returns one movement document with its detail lines.
func GetTransaction(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movement service unavailable"))
			return
		}

		id, err := validators.UUIDParam(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trx, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trx)
	}
}

// ListTransactions returns recent movements, optionally scoped to a warehouse.
func ListTransactions(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movement service unavailable"))
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
