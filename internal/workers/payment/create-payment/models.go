// internal/workers/payment/create-payment/models.go
package createpayment

type Input struct {
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	ListingID  string  `json:"listingId,omitempty"`
	Amount     float64 `json:"amount"`
}

type Output struct {
	PaymentID     string  `json:"paymentId"`
	Amount        float64 `json:"amount"`
	PlatformFee   float64 `json:"platformFee"`
	ProcessingFee float64 `json:"processingFee"`
	Total         float64 `json:"total"`
	PaymentStatus string  `json:"paymentStatus"`
	CreatedAt     string  `json:"createdAt"` // ISO 8601
}
