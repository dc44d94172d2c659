// internal/workers/feed/aggregate-activity/handler.go
package aggregateactivity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stderrors "sponsorhub-workers/internal/common/errors"
	"sponsorhub-workers/internal/common/logger"
	"sponsorhub-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "aggregate-activity"
)

var (
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
)

type Handler struct {
	config   *Config
	db       *sql.DB
	logger   logger.Logger
	errorsvc *stderrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		db:       db,
		logger:   l,
		errorsvc: stderrors.NewErrorHandler(l),
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
		h.errorsvc.HandleJobError(ctx, client, job, stderrors.NewQueryExecutionFailedError("activity feed", err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	limit := input.Limit
	if limit <= 0 || limit > h.config.MaxPerSource {
		limit = h.config.MaxPerSource
	}

	applications, err := h.recentApplications(ctx, input.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: applications: %v", ErrQueryExecutionFailed, err)
	}

	messages, err := h.recentMessages(ctx, input.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: messages: %v", ErrQueryExecutionFailed, err)
	}

	merged := mergeByRecency(applications, messages)

	h.logger.Info("activity aggregated", map[string]interface{}{
		"userId":       input.UserID,
		"applications": len(applications),
		"messages":     len(messages),
		"total":        len(merged),
	})

	return &Output{Activity: merged}, nil
}

// recentApplications returns the user's latest application events ordered by
// descending update time, capped at limit.
func (h *Handler) recentApplications(ctx context.Context, userID string, limit int) ([]timestamped, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT a.status, l.title, a.updated_at
		FROM applications a
		JOIN listings l ON l.id = a.listing_id
		WHERE a.user_id = $1
		ORDER BY a.updated_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []timestamped
	for rows.Next() {
		var status, title string
		var updatedAt time.Time
		if err := rows.Scan(&status, &title, &updatedAt); err != nil {
			return nil, err
		}
		events = append(events, timestamped{
			event: models.ActivityEvent{
				Type:      models.ActivityTypeApplication,
				Status:    status,
				Title:     title,
				Timestamp: updatedAt.UTC().Format(time.RFC3339),
			},
			at: updatedAt,
		})
	}
	return events, rows.Err()
}

// recentMessages returns the user's latest received messages ordered by
// descending creation time, capped at limit.
func (h *Handler) recentMessages(ctx context.Context, userID string, limit int) ([]timestamped, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT u.name, m.content, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.receiver_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []timestamped
	for rows.Next() {
		var sender, content string
		var createdAt time.Time
		if err := rows.Scan(&sender, &content, &createdAt); err != nil {
			return nil, err
		}
		events = append(events, timestamped{
			event: models.ActivityEvent{
				Type:      models.ActivityTypeMessage,
				Sender:    sender,
				Content:   content,
				Timestamp: createdAt.UTC().Format(time.RFC3339),
			},
			at: createdAt,
		})
	}
	return events, rows.Err()
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
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
