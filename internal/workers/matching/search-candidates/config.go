// internal/workers/matching/search-candidates/config.go
package searchcandidates

import "time"

type Config struct {
	Index        string
	DefaultLimit int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:        "creators",
		DefaultLimit: 10,
		Timeout:      5 * time.Second,
	}
}
