package response

import (
	"time"

	"condotel-booking/internal/data/entity"
)

type BookingResponse struct {
	ID           string               `json:"id"`
	CondotelID   string               `json:"condotel_id"`
	CondotelName string               `json:"condotel_name,omitempty"`
	CustomerID   string               `json:"customer_id"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Nights       int                  `json:"nights"`
	TotalPrice   float64              `json:"total_price"`
	Status       entity.BookingStatus `json:"status"`
	VoucherID    *string              `json:"voucher_id,omitempty"`
	PromotionID  *string              `json:"promotion_id,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

type AvailabilityResponse struct {
	CondotelID string `json:"condotel_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Available  bool   `json:"available"`
}

func BookingToResponse(booking *entity.Booking, condotelName string) BookingResponse {
	resp := BookingResponse{
		ID:           booking.ID.String(),
		CondotelID:   booking.CondotelID.String(),
		CondotelName: condotelName,
		CustomerID:   booking.CustomerID.String(),
		StartDate:    booking.StartDate.Format("2006-01-02"),
		EndDate:      booking.EndDate.Format("2006-01-02"),
		Nights:       booking.Nights(),
		TotalPrice:   booking.TotalPrice,
		Status:       booking.Status,
		CreatedAt:    booking.CreatedAt,
	}
	if booking.VoucherID != nil {
		id := booking.VoucherID.String()
		resp.VoucherID = &id
	}
	if booking.PromotionID != nil {
		id := booking.PromotionID.String()
		resp.PromotionID = &id
	}
	return resp
}
