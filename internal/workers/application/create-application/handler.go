// internal/workers/application/create-application/handler.go
package createapplication

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
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "create-application"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
)

// pqUniqueViolation is the Postgres error class for unique index violations.
// The applications table carries UNIQUE (user_id, listing_id), so concurrent
// applies for the same pair are serialized by the index rather than by this
// worker.
const pqUniqueViolation = "23505"

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
	case errors.Is(err, ErrDuplicateApplication):
		return stderrors.NewDuplicateApplicationError(input.UserID, input.ListingID)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return stderrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// Fast-path duplicate check. The unique index remains the authority;
	// this only avoids burning an ID and an insert round trip.
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE user_id = $1 AND listing_id = $2
		)`, input.UserID, input.ListingID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: application already exists for user %s and listing %s",
			ErrDuplicateApplication, input.UserID, input.ListingID)
	}

	appID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, user_id, listing_id, proposal, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		appID,
		input.UserID,
		input.ListingID,
		input.Proposal,
		string(models.ApplicationStatusPending),
		createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			// Lost the race against a concurrent apply for the same pair.
			return nil, fmt.Errorf("%w: application already exists for user %s and listing %s",
				ErrDuplicateApplication, input.UserID, input.ListingID)
		}
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit log entry is non-critical, log error but don't fail.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"userId":    input.UserID,
		"listingId": input.ListingID,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application_created",
		"application",
		appID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": appID,
		})
	}

	metrics.ApplicationsCreated.Inc()
	h.logger.Info("application created", map[string]interface{}{
		"applicationId": appID,
		"userId":        input.UserID,
		"listingId":     input.ListingID,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: string(models.ApplicationStatusPending),
		CreatedAt:         createdAt,
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
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
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
