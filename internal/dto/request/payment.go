package request

type CreatePaymentLinkRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
}

type PurchasePackageRequest struct {
	PackageID string `json:"package_id" validate:"required,uuid4"`
}
