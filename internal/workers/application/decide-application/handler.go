// internal/workers/application/decide-application/handler.go
package decideapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stderrors "sponsorhub-workers/internal/common/errors"
	"sponsorhub-workers/internal/common/logger"
	"sponsorhub-workers/internal/common/metrics"
	"sponsorhub-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "decide-application"
)

var (
	ErrApplicationNotFound  = errors.New("APPLICATION_NOT_FOUND")
	ErrUnauthorized         = errors.New("UNAUTHORIZED")
	ErrInvalidTransition    = errors.New("INVALID_TRANSITION")
	ErrDatabaseUpdateFailed = errors.New("DATABASE_UPDATE_FAILED")
)

type Handler struct {
	db       *sql.DB
	logger   logger.Logger
	errorsvc *stderrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorsvc.HandleJobError(ctx, client, job, h.asStandardError(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

// asStandardError maps sentinel errors to their workflow-facing form.
func (h *Handler) asStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		return stderrors.NewApplicationNotFoundError(input.ApplicationID)
	case errors.Is(err, ErrUnauthorized):
		return stderrors.NewUnauthorizedError(
			fmt.Sprintf("sponsorId: %s, applicationId: %s", input.SponsorID, input.ApplicationID))
	case errors.Is(err, ErrInvalidTransition):
		return stderrors.NewInvalidTransitionError(err.Error())
	case errors.Is(err, ErrDatabaseUpdateFailed):
		return stderrors.NewDatabaseUpdateFailedError(err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	decision := models.ApplicationStatus(input.Decision)
	if decision != models.ApplicationStatusAccepted && decision != models.ApplicationStatusRejected {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidTransition, input.Decision)
	}

	var ownerID string
	var status string
	err := h.db.QueryRowContext(ctx, `
		SELECT l.sponsor_id, a.status
		FROM applications a
		JOIN listings l ON l.id = a.listing_id
		WHERE a.id = $1`, input.ApplicationID).Scan(&ownerID, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrApplicationNotFound, input.ApplicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup failed: %v", ErrDatabaseUpdateFailed, err)
	}

	if ownerID != input.SponsorID {
		return nil, fmt.Errorf("%w: sponsor %s does not own the listing for application %s",
			ErrUnauthorized, input.SponsorID, input.ApplicationID)
	}

	// Authorization is checked before state so an unauthorized caller learns
	// nothing about the application's progress.
	if models.ApplicationStatus(status) != models.ApplicationStatusPending {
		return nil, fmt.Errorf("%w: application %s is already %s",
			ErrInvalidTransition, input.ApplicationID, status)
	}

	updatedAt := time.Now().UTC().Format(time.RFC3339)

	// The status guard in the WHERE clause makes the transition atomic: a
	// concurrent decision that won already left the pending state, and this
	// update then touches zero rows.
	res, err := h.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		string(decision),
		updatedAt,
		input.ApplicationID,
		string(models.ApplicationStatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: update failed: %v", ErrDatabaseUpdateFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: rows affected: %v", ErrDatabaseUpdateFailed, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: application %s left pending state concurrently",
			ErrInvalidTransition, input.ApplicationID)
	}

	metrics.ApplicationsDecided.WithLabelValues(string(decision)).Inc()
	h.logger.Info("application decided", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"sponsorId":     input.SponsorID,
		"decision":      string(decision),
	})

	return &Output{
		ApplicationID:     input.ApplicationID,
		ApplicationStatus: string(decision),
		UpdatedAt:         updatedAt,
	}, nil
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
