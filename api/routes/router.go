package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rahadianwp/gudangku-backend/api/controllers"
	"github.com/rahadianwp/gudangku-backend/api/middleware"
	"github.com/rahadianwp/gudangku-backend/internal/movements"
	"github.com/rahadianwp/gudangku-backend/internal/opname"
	"github.com/rahadianwp/gudangku-backend/internal/stock"
	"github.com/rahadianwp/gudangku-backend/internal/transfers"
	"github.com/rahadianwp/gudangku-backend/pkg/config"
	"github.com/rahadianwp/gudangku-backend/pkg/db"
	"github.com/rahadianwp/gudangku-backend/pkg/logger"
	pkgredis "github.com/rahadianwp/gudangku-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	stockService stock.Service,
	movementService movements.Service,
	transferService transfers.Service,
	opnameService opname.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		// Replay protection wraps the posting routes individually: the route
		// pattern is only fully resolved once the terminal route matched.
		idem := middleware.Idempotency(idempotencyStore, logg)

		r.With(idem).Post("/transactions", controllers.PostTransaction(movementService, logg))
		r.Get("/transactions", controllers.ListTransactions(movementService, logg))
		r.Get("/transactions/{transactionId}", controllers.GetTransaction(movementService, logg))

		r.With(idem).Post("/transfers", controllers.PostTransfer(transferService, logg))
		r.Get("/transfers", controllers.ListTransfers(transferService, logg))
		r.Get("/transfers/{transferNumber}", controllers.GetTransfer(transferService, logg))

		r.With(idem).Post("/opnames", controllers.PostOpname(opnameService, logg))
		r.Get("/opnames", controllers.ListOpnames(opnameService, logg))
		r.Get("/opnames/draft/{warehouseId}", controllers.CreateOpnameDraft(opnameService, logg))
		r.Get("/opnames/{opnameId}", controllers.GetOpname(opnameService, logg))

		r.Get("/stock/available/{warehouseId}", controllers.AvailableStock(stockService, logg))
		r.Get("/stock/breakdown/{productId}", controllers.StockBreakdown(stockService, logg))
		r.Get("/stock/low/{warehouseId}", controllers.LowStock(stockService, logg))
	})

	return r
}
