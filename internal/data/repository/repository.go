package repository

import (
	"condotel-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Condotel     CondotelRepository
	Booking      BookingRepository
	Voucher      VoucherRepository
	Refund       RefundRepository
	PaymentOrder PaymentOrderRepository
	HostPackage  HostPackageRepository
	BankAccount  BankAccountRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Condotel:     NewCondotelRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Voucher:      NewVoucherRepository(db, log),
		Refund:       NewRefundRepository(db, log),
		PaymentOrder: NewPaymentOrderRepository(db, log),
		HostPackage:  NewHostPackageRepository(db, log),
		BankAccount:  NewBankAccountRepository(db, log),
	}
}
