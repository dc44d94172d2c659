// internal/workers/matching/calculate-match-score/scorer.go
package calculatematchscore

import (
	"math"
	"strconv"
	"strings"

	"sponsorhub-workers/internal/models"
)

// Sub-scores are binary: a dimension either matches (100) or it does not (60).
// The floor of 60 keeps every creator visible in ranked results.
const (
	subScoreMiss = 60
	subScoreHit  = 100
)

// Weights for audience overlap, category alignment and requirement satisfaction.
const (
	weightAudience     = 0.4
	weightValue        = 0.3
	weightRequirements = 0.3
)

// Score computes the relevance of one creator against a sponsor's listing set.
// The result is an integer in [60,100]; with binary sub-scores the attainable
// values form a small finite set (60, 72, 76, 88, 100 and the mixed sums).
func Score(listings []models.Listing, creator *models.Creator) (int, models.MatchBreakdown) {
	breakdown := models.MatchBreakdown{
		Audience:     subScoreMiss,
		Value:        subScoreMiss,
		Requirements: subScoreMiss,
	}
	if creator != nil {
		breakdown.Audience = audienceScore(listings, creator)
		breakdown.Value = valueScore(listings, creator)
		breakdown.Requirements = requirementScore(listings, creator)
	}

	final := int(math.Round(
		weightAudience*float64(breakdown.Audience) +
			weightValue*float64(breakdown.Value) +
			weightRequirements*float64(breakdown.Requirements)))

	return final, breakdown
}

// audienceScore hits when any listing's audience description contains the
// creator's audience string. Containment is case-sensitive and asymmetric:
// the listing text must contain the creator text, not the other way around.
func audienceScore(listings []models.Listing, creator *models.Creator) int {
	if creator.AudienceProfile == "" {
		return subScoreMiss
	}
	for _, l := range listings {
		if l.AudienceProfile != "" && strings.Contains(l.AudienceProfile, creator.AudienceProfile) {
			return subScoreHit
		}
	}
	return subScoreMiss
}

// valueScore hits when the creator's category set contains any listing's category.
func valueScore(listings []models.Listing, creator *models.Creator) int {
	for _, l := range listings {
		if l.Category == "" {
			continue
		}
		for _, c := range creator.Categories {
			if c == l.Category {
				return subScoreHit
			}
		}
	}
	return subScoreMiss
}

// requirementScore hits when the creator reports a follower count and any
// listing requirement that mentions "min" parses to a threshold the creator
// meets. The threshold is whatever digits remain after stripping non-digit
// characters from the requirement text.
func requirementScore(listings []models.Listing, creator *models.Creator) int {
	if creator.FollowerCount == nil {
		return subScoreMiss
	}
	for _, l := range listings {
		for _, req := range l.Requirements {
			if !strings.Contains(strings.ToLower(req), "min") {
				continue
			}
			threshold, ok := parseDigits(req)
			if ok && *creator.FollowerCount >= threshold {
				return subScoreHit
			}
		}
	}
	return subScoreMiss
}

func parseDigits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
