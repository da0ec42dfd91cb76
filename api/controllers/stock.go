package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rahadianwp/gudangku-backend/api/responses"
	"github.com/rahadianwp/gudangku-backend/api/validators"
	"github.com/rahadianwp/gudangku-backend/internal/stock"
	pkgerrors "github.com/rahadianwp/gudangku-backend/pkg/errors"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
)

// AvailableStock returns on-hand quantities per product for one warehouse.
func AvailableStock(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		warehouseID, err := validators.UUIDParam(chi.URLParam(r, "warehouseId"), "warehouse id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.AvailableStock(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// StockBreakdown returns per-warehouse and per-location quantities for one product.
func StockBreakdown(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		productID, err := validators.UUIDParam(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.StockBreakdown(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// LowStock returns products at or below their alert threshold in a warehouse.
func LowStock(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		warehouseID, err := validators.UUIDParam(chi.URLParam(r, "warehouseId"), "warehouse id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.LowStock(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
