package request

type CreateBookingRequest struct {
	CondotelID  string  `json:"condotel_id" validate:"required,uuid4"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	VoucherID   *string `json:"voucher_id,omitempty" validate:"omitempty,uuid4"`
	PromotionID *string `json:"promotion_id,omitempty" validate:"omitempty,uuid4"`
}

type CheckAvailabilityRequest struct {
	CondotelID string `json:"condotel_id" validate:"required,uuid4"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}
