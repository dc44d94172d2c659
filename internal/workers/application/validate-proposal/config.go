// internal/workers/application/validate-proposal/config.go
package validateproposal

type Config struct {
	MaxProposalLength int
}

func LoadConfig() *Config {
	return &Config{
		MaxProposalLength: 5000,
	}
}
