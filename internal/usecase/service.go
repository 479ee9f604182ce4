package usecase

import (
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/database"
	"condotel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking BookingService
	Payment PaymentService
	Refund  RefundService
	Payout  PayoutService
	Package PackageService
}

func NewService(db database.PgxIface, repo *repository.Repository, gateway PaymentGateway, config *utils.Config, log *zap.Logger) *Service {
	payment := NewPaymentService(db, repo, gateway, config, log)
	refund := NewRefundService(repo, payment, config, log)

	return &Service{
		Booking: NewBookingService(repo, refund, log),
		Payment: payment,
		Refund:  refund,
		Payout:  NewPayoutService(repo, config, log),
		Package: NewPackageService(repo, payment, log),
	}
}
