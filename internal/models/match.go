// internal/models/match.go
package models

// MatchBreakdown exposes the three weighted sub-scores behind a match.
type MatchBreakdown struct {
	Audience     int `json:"audience"`
	Value        int `json:"value"`
	Requirements int `json:"requirements"`
}

type MatchResult struct {
	CreatorID string         `json:"creatorId"`
	Score     int            `json:"score"`
	Breakdown MatchBreakdown `json:"breakdown"`
}
