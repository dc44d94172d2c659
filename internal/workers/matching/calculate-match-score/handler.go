// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sponsorhub-workers/internal/common/logger"
	"sponsorhub-workers/internal/common/metrics"
	"sponsorhub-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-match-score"
)

var (
	ErrMatchScoreFailed = errors.New("MATCH_SCORE_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "MATCH_SCORE_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	creator := input.Creator
	if creator == nil && input.CreatorID != "" {
		var err error
		creator, err = h.getCreator(ctx, input.CreatorID)
		if err != nil {
			h.logger.Warn("failed to fetch creator profile", map[string]interface{}{
				"creatorId": input.CreatorID,
				"error":     err,
			})
		}
	}

	listings := input.Listings
	if len(listings) == 0 && input.SponsorID != "" {
		var err error
		listings, err = h.getOpenListings(ctx, input.SponsorID)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch listings: %v", ErrMatchScoreFailed, err)
		}
	}

	score, breakdown := Score(listings, creator)
	metrics.MatchScores.Observe(float64(score))

	creatorID := input.CreatorID
	if creator != nil {
		creatorID = creator.ID
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"creatorId": creatorID,
		"sponsorId": input.SponsorID,
		"score":     score,
		"breakdown": breakdown,
	})

	return &Output{
		CreatorID:  creatorID,
		MatchScore: score,
		Breakdown:  breakdown,
	}, nil
}

func (h *Handler) getCreator(ctx context.Context, creatorID string) (*models.Creator, error) {
	cacheKey := "creator:profile:" + creatorID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var creator models.Creator
		if err := json.Unmarshal([]byte(val), &creator); err == nil {
			return &creator, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT name, email, audience_profile, categories, follower_count
		FROM creators WHERE id = $1`, creatorID)

	creator := models.Creator{ID: creatorID}
	var audience sql.NullString
	var categories []byte
	var followers sql.NullInt64
	err := row.Scan(&creator.Name, &creator.Email, &audience, &categories, &followers)
	if err != nil {
		return nil, err
	}

	if audience.Valid {
		creator.AudienceProfile = audience.String
	}
	if err := json.Unmarshal(categories, &creator.Categories); err != nil {
		creator.Categories = []string{}
	}
	if followers.Valid {
		count := int(followers.Int64)
		creator.FollowerCount = &count
	}

	data, _ := json.Marshal(creator)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &creator, nil
}

func (h *Handler) getOpenListings(ctx context.Context, sponsorID string) ([]models.Listing, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, title, audience_profile, category, requirements, budget
		FROM listings WHERE sponsor_id = $1 AND status = 'open'`, sponsorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l := models.Listing{SponsorID: sponsorID, Status: models.ListingStatusOpen}
		var audience, category sql.NullString
		var requirements []byte
		if err := rows.Scan(&l.ID, &l.Title, &audience, &category, &requirements, &l.Budget); err != nil {
			return nil, err
		}
		if audience.Valid {
			l.AudienceProfile = audience.String
		}
		if category.Valid {
			l.Category = category.String
		}
		if err := json.Unmarshal(requirements, &l.Requirements); err != nil {
			l.Requirements = []string{}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
