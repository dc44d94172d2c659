// internal/workers/matching/rank-candidates/handler_test.go
package rankcandidates

import (
	"context"
	"testing"
	"time"

	"sponsorhub-workers/internal/common/logger"
	"sponsorhub-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		MaxItems: 100,
		Timeout:  5 * time.Second,
	}
}

func intPtr(n int) *int {
	return &n
}

func createTestListings() []models.Listing {
	return []models.Listing{
		{
			ID:              "listing-001",
			SponsorID:       "sponsor-001",
			Title:           "Fitness Campaign",
			AudienceProfile: "young adults 18-24 interested in fitness",
			Category:        "fitness",
			Requirements:    []string{"min 5000 followers"},
			Status:          models.ListingStatusOpen,
		},
	}
}

// Create a test logger that implements your logger.Logger interface
type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl // Simple implementation for testing
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SortsByScoreDescending(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	input := &Input{
		Listings: createTestListings(),
		Candidates: []models.Creator{
			{ID: "weak", AudienceProfile: "retirees", Categories: []string{"finance"}},
			{ID: "strong", AudienceProfile: "18-24", Categories: []string{"fitness"}, FollowerCount: intPtr(6000)},
			{ID: "medium", AudienceProfile: "18-24", Categories: []string{"gaming"}},
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.Matches, 3)
	assert.Equal(t, "strong", output.Matches[0].CreatorID)
	assert.Equal(t, 100, output.Matches[0].Score)
	assert.Equal(t, "medium", output.Matches[1].CreatorID)
	assert.Equal(t, "weak", output.Matches[2].CreatorID)
	assert.Equal(t, 60, output.Matches[2].Score)
}

func TestHandler_Execute_StableOrderForEqualScores(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	input := &Input{
		Listings: createTestListings(),
		Candidates: []models.Creator{
			{ID: "first", AudienceProfile: "retirees"},
			{ID: "second", AudienceProfile: "retirees"},
			{ID: "third", AudienceProfile: "retirees"},
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, "first", output.Matches[0].CreatorID)
	assert.Equal(t, "second", output.Matches[1].CreatorID)
	assert.Equal(t, "third", output.Matches[2].CreatorID)
}

func TestHandler_Execute_DeduplicatesByID(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	input := &Input{
		Listings: createTestListings(),
		Candidates: []models.Creator{
			{ID: "dup", AudienceProfile: "18-24", Categories: []string{"fitness"}, FollowerCount: intPtr(6000)},
			{ID: "dup", AudienceProfile: "retirees"},
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.Matches, 1)
	// First occurrence wins.
	assert.Equal(t, 100, output.Matches[0].Score)
}

func TestHandler_Execute_SkipsCandidatesWithoutID(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	input := &Input{
		Listings: createTestListings(),
		Candidates: []models.Creator{
			{ID: "", AudienceProfile: "18-24"},
			{ID: "real", AudienceProfile: "18-24"},
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.Matches, 1)
	assert.Equal(t, "real", output.Matches[0].CreatorID)
}

func TestHandler_Execute_CapsAtMaxItems(t *testing.T) {
	cfg := createTestConfig()
	cfg.MaxItems = 2
	handler := NewHandler(cfg, newTestLogger(t))

	input := &Input{
		Listings: createTestListings(),
		Candidates: []models.Creator{
			{ID: "a", AudienceProfile: "retirees"},
			{ID: "b", AudienceProfile: "18-24", Categories: []string{"fitness"}},
			{ID: "c", AudienceProfile: "retirees"},
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, output.Matches, 2)
	assert.Equal(t, "b", output.Matches[0].CreatorID)
}

func TestHandler_Execute_EmptyCandidates(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Listings: createTestListings()})

	assert.NoError(t, err)
	assert.Empty(t, output.Matches)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	_, err := handler.Execute(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNilInput)
}
