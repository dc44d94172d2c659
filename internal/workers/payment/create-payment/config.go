// internal/workers/payment/create-payment/config.go
package createpayment

import "time"

type Config struct {
	Rates   FeeRates
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Rates:   DefaultFeeRates(),
		Timeout: 10 * time.Second,
	}
}
