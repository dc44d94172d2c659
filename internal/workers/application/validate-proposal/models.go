// internal/workers/application/validate-proposal/models.go
package validateproposal

type Input struct {
	Proposal map[string]interface{} `json:"proposal"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Output struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}
