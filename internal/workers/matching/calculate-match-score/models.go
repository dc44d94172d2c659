// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "sponsorhub-workers/internal/models"

// Input carries either inline snapshots or IDs to hydrate from storage.
type Input struct {
	SponsorID string           `json:"sponsorId,omitempty"`
	Listings  []models.Listing `json:"listings,omitempty"`
	CreatorID string           `json:"creatorId,omitempty"`
	Creator   *models.Creator  `json:"creator,omitempty"`
}

type Output struct {
	CreatorID  string                `json:"creatorId"`
	MatchScore int                   `json:"matchScore"`
	Breakdown  models.MatchBreakdown `json:"breakdown"`
}
