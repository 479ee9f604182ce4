package wire

import (
	"condotel-booking/internal/adaptor"
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Gateway-facing endpoints. The webhook authenticates by signature, the
	// return URL by querying the gateway; neither carries a session.
	r.Post("/api/v1/payments/webhook", paymentHandler.Webhook)
	r.Get("/api/v1/payments/return", paymentHandler.Return)

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/link", paymentHandler.CreatePaymentLink)
		r.Get("/{orderCode}", paymentHandler.GetPaymentStatus)
		r.Put("/{orderCode}/cancel", paymentHandler.CancelPaymentLink)
	})
}
