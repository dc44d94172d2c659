// internal/workers/application/decide-application/models.go
package decideapplication

type Input struct {
	ApplicationID string `json:"applicationId"`
	SponsorID     string `json:"sponsorId"`
	Decision      string `json:"decision"` // accepted | rejected
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	UpdatedAt         string `json:"updatedAt"` // ISO 8601
}
