// internal/workers/payment/create-payment/fees.go
package createpayment

import "errors"

var (
	ErrInvalidAmount = errors.New("INVALID_AMOUNT")
)

// FeeRates holds the marketplace surcharge rates as fractions of the base
// amount. Rates are fixed per configuration, never per call.
type FeeRates struct {
	Platform   float64
	Processing float64
}

// DefaultFeeRates returns the standard marketplace rates: 2% platform,
// 3% processing.
func DefaultFeeRates() FeeRates {
	return FeeRates{Platform: 0.02, Processing: 0.03}
}

// FeeBreakdown is computed once at payment creation and stored verbatim.
type FeeBreakdown struct {
	PlatformFee   float64 `json:"platformFee"`
	ProcessingFee float64 `json:"processingFee"`
	Total         float64 `json:"total"`
}

// ComputeFees derives the surcharges and total for a payment amount.
// Total == amount + platformFee + processingFee exactly.
func ComputeFees(amount float64, rates FeeRates) (FeeBreakdown, error) {
	if amount <= 0 {
		return FeeBreakdown{}, ErrInvalidAmount
	}

	platformFee := amount * rates.Platform
	processingFee := amount * rates.Processing

	return FeeBreakdown{
		PlatformFee:   platformFee,
		ProcessingFee: processingFee,
		Total:         amount + platformFee + processingFee,
	}, nil
}
