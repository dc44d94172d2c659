// internal/models/payment.go
package models

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment stores the fee breakdown exactly as computed at creation time.
// Total == Amount + PlatformFee + ProcessingFee; fees are never recomputed.
type Payment struct {
	ID            string        `json:"id"`
	SenderID      string        `json:"senderId"`
	ReceiverID    string        `json:"receiverId"`
	ListingID     string        `json:"listingId,omitempty"`
	Amount        float64       `json:"amount"`
	PlatformFee   float64       `json:"platformFee"`
	ProcessingFee float64       `json:"processingFee"`
	Total         float64       `json:"total"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     string        `json:"createdAt"`
}
