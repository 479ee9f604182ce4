package wire

import (
	"condotel-booking/internal/adaptor"
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	refundHandler *adaptor.RefundHandler,
	payoutHandler *adaptor.PayoutHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		r.Get("/refunds", refundHandler.ListRefunds)
		r.Get("/refunds/{id}", refundHandler.GetRefundByID)
		r.Post("/refunds/{id}/confirm", refundHandler.ConfirmRefund)
		r.Post("/refunds/{id}/reject", refundHandler.RejectRefund)

		r.Get("/payouts", payoutHandler.GetPendingPayouts)
		r.Post("/payouts/process", payoutHandler.ProcessPayouts)
		r.Post("/payouts/{bookingId}", payoutHandler.ConfirmPayout)
	})
}
