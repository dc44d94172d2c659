// internal/workers/application/create-application/models.go
package createapplication

type Input struct {
	UserID    string `json:"userId"`
	ListingID string `json:"listingId"`
	Proposal  string `json:"proposal,omitempty"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
