package adaptor

import (
	"condotel-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Payment *PaymentHandler
	Refund  *RefundHandler
	Payout  *PayoutHandler
	Package *PackageHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Payment, log),
		Refund:  NewRefundHandler(service.Refund, log),
		Payout:  NewPayoutHandler(service.Payout, log),
		Package: NewPackageHandler(service.Package, log),
	}
}
