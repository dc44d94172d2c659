// internal/workers/matching/calculate-match-score/handler_test.go
package calculatematchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"sponsorhub-workers/internal/common/logger"
	"sponsorhub-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  5 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func intPtr(n int) *int {
	return &n
}

func createTestListing() models.Listing {
	return models.Listing{
		ID:              "listing-001",
		SponsorID:       "sponsor-001",
		Title:           "Fitness Campaign",
		AudienceProfile: "young adults 18-24 interested in fitness",
		Category:        "fitness",
		Requirements:    []string{"min 5000 followers"},
		Budget:          2500,
		Status:          models.ListingStatusOpen,
	}
}

func createTestCreator() *models.Creator {
	return &models.Creator{
		ID:              "creator-001",
		Name:            "Jamie",
		Email:           "jamie@example.com",
		AudienceProfile: "18-24",
		Categories:      []string{"fitness", "lifestyle"},
		FollowerCount:   intPtr(6000),
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
// Scorer Tests
// ==========================

func TestScore_AllDimensionsMatch(t *testing.T) {
	score, breakdown := Score([]models.Listing{createTestListing()}, createTestCreator())

	assert.Equal(t, 100, score)
	assert.Equal(t, 100, breakdown.Audience)
	assert.Equal(t, 100, breakdown.Value)
	assert.Equal(t, 100, breakdown.Requirements)
}

func TestScore_NoDimensionsMatch(t *testing.T) {
	creator := &models.Creator{
		ID:              "creator-002",
		AudienceProfile: "retirees",
		Categories:      []string{"finance"},
	}

	score, breakdown := Score([]models.Listing{createTestListing()}, creator)

	assert.Equal(t, 60, score)
	assert.Equal(t, 60, breakdown.Audience)
	assert.Equal(t, 60, breakdown.Value)
	assert.Equal(t, 60, breakdown.Requirements)
}

func TestScore_NilCreatorScoresFloor(t *testing.T) {
	score, breakdown := Score([]models.Listing{createTestListing()}, nil)

	assert.Equal(t, 60, score)
	assert.Equal(t, models.MatchBreakdown{Audience: 60, Value: 60, Requirements: 60}, breakdown)
}

func TestScore_EmptyListingsScoresFloor(t *testing.T) {
	score, _ := Score(nil, createTestCreator())

	assert.Equal(t, 60, score)
}

func TestScore_WeightedMixes(t *testing.T) {
	listing := createTestListing()

	tests := []struct {
		name     string
		creator  *models.Creator
		expected int
	}{
		{
			name: "audience only",
			creator: &models.Creator{
				AudienceProfile: "18-24",
				Categories:      []string{"gaming"},
			},
			expected: 76, // 0.4*100 + 0.3*60 + 0.3*60
		},
		{
			name: "value only",
			creator: &models.Creator{
				AudienceProfile: "seniors",
				Categories:      []string{"fitness"},
			},
			expected: 72, // 0.4*60 + 0.3*100 + 0.3*60
		},
		{
			name: "requirements only",
			creator: &models.Creator{
				AudienceProfile: "seniors",
				Categories:      []string{"gaming"},
				FollowerCount:   intPtr(10000),
			},
			expected: 72,
		},
		{
			name: "audience and value",
			creator: &models.Creator{
				AudienceProfile: "18-24",
				Categories:      []string{"fitness"},
			},
			expected: 88, // 0.4*100 + 0.3*100 + 0.3*60
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := Score([]models.Listing{listing}, tt.creator)
			assert.Equal(t, tt.expected, score)
			assert.GreaterOrEqual(t, score, 60)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func TestAudienceScore_ContainmentIsAsymmetric(t *testing.T) {
	// Creator text longer than the listing text never matches.
	listing := models.Listing{AudienceProfile: "18-24"}
	creator := &models.Creator{AudienceProfile: "young adults 18-24 interested in fitness"}

	assert.Equal(t, 60, audienceScore([]models.Listing{listing}, creator))
}

func TestAudienceScore_CaseSensitive(t *testing.T) {
	listing := models.Listing{AudienceProfile: "Young Adults"}
	creator := &models.Creator{AudienceProfile: "young adults"}

	assert.Equal(t, 60, audienceScore([]models.Listing{listing}, creator))
}

func TestAudienceScore_EmptyProfilesNeverMatch(t *testing.T) {
	assert.Equal(t, 60, audienceScore(
		[]models.Listing{{AudienceProfile: ""}},
		&models.Creator{AudienceProfile: ""},
	))
	assert.Equal(t, 60, audienceScore(
		[]models.Listing{{AudienceProfile: "anything"}},
		&models.Creator{AudienceProfile: ""},
	))
}

func TestRequirementScore_ParsesDigitsFromText(t *testing.T) {
	tests := []struct {
		name         string
		requirements []string
		followers    *int
		expected     int
	}{
		{"meets threshold", []string{"min 5000 followers"}, intPtr(6000), 100},
		{"exactly at threshold", []string{"min 5000 followers"}, intPtr(5000), 100},
		{"below threshold", []string{"min 5000 followers"}, intPtr(4999), 60},
		{"no follower count reported", []string{"min 5000 followers"}, nil, 60},
		{"requirement without min keyword", []string{"5000 followers"}, intPtr(6000), 60},
		{"min keyword without digits", []string{"minimum reach"}, intPtr(6000), 60},
		{"case insensitive min", []string{"Minimum 1,000 followers"}, intPtr(2000), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := models.Listing{Requirements: tt.requirements}
			creator := &models.Creator{FollowerCount: tt.followers}
			assert.Equal(t, tt.expected, requirementScore([]models.Listing{listing}, creator))
		})
	}
}

func TestParseDigits(t *testing.T) {
	n, ok := parseDigits("min 5,000 followers")
	assert.True(t, ok)
	assert.Equal(t, 5000, n)

	_, ok = parseDigits("no numbers here")
	assert.False(t, ok)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute_WithInlineData(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Listings: []models.Listing{createTestListing()},
		Creator:  createTestCreator(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "creator-001", output.CreatorID)
	assert.Equal(t, 100, output.MatchScore)
}

func TestHandler_Execute_HydratesCreatorFromDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	rows := sqlmock.NewRows([]string{"name", "email", "audience_profile", "categories", "follower_count"}).
		AddRow("Jamie", "jamie@example.com", "18-24", []byte(`["fitness"]`), 6000)
	mock.ExpectQuery("SELECT name, email, audience_profile, categories, follower_count").
		WithArgs("creator-001").
		WillReturnRows(rows)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		CreatorID: "creator-001",
		Listings:  []models.Listing{createTestListing()},
	})

	assert.NoError(t, err)
	assert.Equal(t, 100, output.MatchScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CreatorCacheHitSkipsDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniRedis(t)

	cached, _ := json.Marshal(createTestCreator())
	mr.Set("creator:profile:creator-001", string(cached))

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		CreatorID: "creator-001",
		Listings:  []models.Listing{createTestListing()},
	})

	assert.NoError(t, err)
	assert.Equal(t, 100, output.MatchScore)
	// No DB expectations were set: a query would have failed the mock.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheMissPopulatesCache(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupMiniRedis(t)

	rows := sqlmock.NewRows([]string{"name", "email", "audience_profile", "categories", "follower_count"}).
		AddRow("Jamie", "jamie@example.com", "18-24", []byte(`["fitness"]`), 6000)
	mock.ExpectQuery("SELECT name, email, audience_profile, categories, follower_count").
		WithArgs("creator-001").
		WillReturnRows(rows)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		CreatorID: "creator-001",
		Listings:  []models.Listing{createTestListing()},
	})

	assert.NoError(t, err)
	assert.True(t, mr.Exists("creator:profile:creator-001"))
}

func TestHandler_Execute_HydratesListingsFromDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	rows := sqlmock.NewRows([]string{"id", "title", "audience_profile", "category", "requirements", "budget"}).
		AddRow("listing-001", "Fitness Campaign", "young adults 18-24", "fitness", []byte(`["min 5000 followers"]`), 2500.0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE sponsor_id = $1 AND status = 'open'")).
		WithArgs("sponsor-001").
		WillReturnRows(rows)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SponsorID: "sponsor-001",
		Creator:   createTestCreator(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 100, output.MatchScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ListingFetchErrorFailsJob(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	mock.ExpectQuery("FROM listings").
		WithArgs("sponsor-001").
		WillReturnError(sql.ErrConnDone)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		SponsorID: "sponsor-001",
		Creator:   createTestCreator(),
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchScoreFailed)
}

func TestHandler_Execute_MissingCreatorStillScores(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupMiniRedis(t)

	mock.ExpectQuery("SELECT name, email, audience_profile, categories, follower_count").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		CreatorID: "ghost",
		Listings:  []models.Listing{createTestListing()},
	})

	assert.NoError(t, err)
	assert.Equal(t, 60, output.MatchScore)
}
