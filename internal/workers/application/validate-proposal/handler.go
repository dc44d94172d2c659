// internal/workers/application/validate-proposal/handler.go
package validateproposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stderrors "sponsorhub-workers/internal/common/errors"
	"sponsorhub-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-proposal"
)

var (
	ErrValidationFailed = errors.New("PROPOSAL_VALIDATION_FAILED")
)

// proposalSchema is the contract for an application proposal payload as
// submitted by a creator. The proposal text itself may be empty; the
// identifying fields may not.
const proposalSchema = `{
	"type": "object",
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"listingId": {"type": "string", "minLength": 1},
		"proposal": {"type": "string", "maxLength": 5000}
	},
	"required": ["userId", "listingId"],
	"additionalProperties": false
}`

type Handler struct {
	config   *Config
	schema   *gojsonschema.Schema
	logger   logger.Logger
	errorsvc *stderrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(proposalSchema))
	if err != nil {
		return nil, fmt.Errorf("compile proposal schema: %w", err)
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		schema:   schema,
		logger:   l,
		errorsvc: stderrors.NewErrorHandler(l),
	}, nil
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

	output, err := h.execute(context.Background(), &input)
	if err != nil {
		h.errorsvc.HandleJobError(context.Background(), client, job,
			stderrors.NewProposalValidationFailedError(err.Error()))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Proposal == nil {
		return nil, fmt.Errorf("%w: proposal payload missing", ErrValidationFailed)
	}

	result, err := h.schema.Validate(gojsonschema.NewGoLoader(input.Proposal))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	output := &Output{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		output.Errors = append(output.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}

	if !output.Valid {
		h.logger.Warn("proposal validation failed", map[string]interface{}{
			"errorCount": len(output.Errors),
		})
	}

	return output, nil
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
