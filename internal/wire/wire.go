package wire

import (
	"net/http"

	"condotel-booking/internal/adaptor"
	"condotel-booking/internal/data/repository"
	"condotel-booking/internal/usecase"
	"condotel-booking/pkg/database"
	"condotel-booking/pkg/middleware"
	"condotel-booking/pkg/payos"
	"condotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring assembles repositories, services, handlers and routes.
func Wiring(db database.PgxIface, config *utils.Config, logger *zap.Logger) *App {
	repo := repository.NewRepository(db, logger)
	gateway := payos.NewClient(config.PayOS, logger)
	service := usecase.NewService(db, repo, gateway, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireBooking(r, handler.Booking, repo, logger)
	wirePayment(r, handler.Payment, repo, logger)
	wireRefund(r, handler.Refund, repo, logger)
	wireAdmin(r, handler.Refund, handler.Payout, repo, logger)
	wireHost(r, handler.Package, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
