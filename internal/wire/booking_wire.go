package wire

import (
	"condotel-booking/internal/adaptor"
	"condotel-booking/internal/data/repository"
	"condotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Public availability check.
	r.Get("/api/v1/condotels/{id}/availability", bookingHandler.CheckAvailability)

	r.Route("/api/v1/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/", bookingHandler.GetMyBookings)
		r.Get("/{id}", bookingHandler.GetBookingByID)
		r.Put("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
