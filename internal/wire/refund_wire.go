package wire

import (
	"condotel-booking/internal/adaptor"
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRefund(
	r chi.Router,
	refundHandler *adaptor.RefundHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/v1/refunds", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/", refundHandler.RequestRefund)
	})
}
