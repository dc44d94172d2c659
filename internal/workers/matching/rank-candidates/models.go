// internal/workers/matching/rank-candidates/models.go
package rankcandidates

import "sponsorhub-workers/internal/models"

// Input is the candidate pool (already retrieved by search-candidates or an
// equivalent query) plus the sponsor's listing set to score against.
type Input struct {
	Listings   []models.Listing `json:"listings"`
	Candidates []models.Creator `json:"candidates"`
}

type Output struct {
	Matches []models.MatchResult `json:"matches"`
}
