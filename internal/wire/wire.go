package wire

import (
	"net/http"
	"time"

	"rental-booking/internal/adaptor"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/cache"
	"rental-booking/pkg/middleware"
	"rental-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	infra usecase.Infra,
	idempotency cache.IdempotencyStore,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, infra, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, repo, config, idempotency, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	idempotency cache.IdempotencyStore,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.AllowedOrigins))
	if config.App.RateLimit > 0 {
		r.Use(httprate.Limit(config.App.RateLimit, time.Second,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				utils.ResponseTooManyRequests(w, "Too many requests")
			}),
		))
	}

	idem := middleware.Idempotency(idempotency, config.App.IdempotencyTTL, logger)

	// Apply routes
	wireAuth(r, handler.Auth, repo, config, logger)
	wireProperty(r, handler.Property, repo, config, logger)
	wireBooking(r, handler.Booking, repo, idem, logger)
	wireRefund(r, handler.Refund, handler.RefundDocument, handler.CreditMemo, repo, idem, logger)
	wireNotification(r, handler.Notification, repo, logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil, nil)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
