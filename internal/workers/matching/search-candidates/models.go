// internal/workers/matching/search-candidates/models.go
package searchcandidates

import "sponsorhub-workers/internal/models"

type Input struct {
	Term  string `json:"term"`
	Role  string `json:"role,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type Output struct {
	Candidates []models.Creator `json:"candidates"`
	TotalHits  int              `json:"totalHits"`
	Took       int              `json:"took"` // milliseconds reported by Elasticsearch
}
