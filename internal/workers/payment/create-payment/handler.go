// internal/workers/payment/create-payment/handler.go
package createpayment

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
)

const (
	TaskType = "create-payment"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
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
		h.errorsvc.HandleJobError(ctx, client, job, h.asStandardError(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

// asStandardError maps sentinel errors to their workflow-facing form.
func (h *Handler) asStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return stderrors.NewInvalidAmountError(input.Amount)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return stderrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	breakdown, err := ComputeFees(input.Amount, h.config.Rates)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %v", err, input.Amount)
	}

	paymentID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	// The breakdown is stored exactly as computed; later rate changes never
	// rewrite existing payments.
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, sender_id, receiver_id, listing_id,
			amount, platform_fee, processing_fee, total, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		paymentID,
		input.SenderID,
		input.ReceiverID,
		nullableString(input.ListingID),
		input.Amount,
		breakdown.PlatformFee,
		breakdown.ProcessingFee,
		breakdown.Total,
		string(models.PaymentStatusPending),
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	metrics.PaymentsCreated.Inc()
	h.logger.Info("payment created", map[string]interface{}{
		"paymentId":  paymentID,
		"senderId":   input.SenderID,
		"receiverId": input.ReceiverID,
		"amount":     input.Amount,
		"total":      breakdown.Total,
	})

	return &Output{
		PaymentID:     paymentID,
		Amount:        input.Amount,
		PlatformFee:   breakdown.PlatformFee,
		ProcessingFee: breakdown.ProcessingFee,
		Total:         breakdown.Total,
		PaymentStatus: string(models.PaymentStatusPending),
		CreatedAt:     createdAt,
	}, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
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
