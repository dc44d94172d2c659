// internal/workers/feed/aggregate-activity/config.go
package aggregateactivity

import "time"

type Config struct {
	MaxPerSource int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxPerSource: 5,
		Timeout:      10 * time.Second,
	}
}
