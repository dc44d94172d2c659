// internal/models/listing.go
package models

type ListingStatus string

const (
	ListingStatusOpen   ListingStatus = "open"
	ListingStatusClosed ListingStatus = "closed"
	ListingStatusDraft  ListingStatus = "draft"
)

type Listing struct {
	ID              string        `json:"id"`
	SponsorID       string        `json:"sponsorId"`
	Title           string        `json:"title"`
	AudienceProfile string        `json:"audienceProfile,omitempty"`
	Category        string        `json:"category,omitempty"`
	Requirements    []string      `json:"requirements"`
	Budget          float64       `json:"budget"`
	Status          ListingStatus `json:"status"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}
