// internal/workers/application/validate-proposal/handler_test.go
package validateproposal

import (
	"context"
	"strings"
	"testing"

	"sponsorhub-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig()
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

func newTestHandler(t *testing.T) *Handler {
	handler, err := NewHandler(createTestConfig(), newTestLogger(t))
	require.NoError(t, err)
	return handler
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidProposal(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Proposal: map[string]interface{}{
			"userId":    "creator-001",
			"listingId": "listing-001",
			"proposal":  "Weekly product placement in my channel.",
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Valid)
	assert.Empty(t, output.Errors)
}

func TestHandler_Execute_ProposalTextOptional(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Proposal: map[string]interface{}{
			"userId":    "creator-001",
			"listingId": "listing-001",
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Valid)
}

func TestHandler_Execute_MissingRequiredFields(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Proposal: map[string]interface{}{
			"proposal": "No identifiers here.",
		},
	})

	require.NoError(t, err)
	assert.False(t, output.Valid)
	assert.Len(t, output.Errors, 2)
}

func TestHandler_Execute_EmptyIdentifiersRejected(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Proposal: map[string]interface{}{
			"userId":    "",
			"listingId": "listing-001",
		},
	})

	require.NoError(t, err)
	assert.False(t, output.Valid)
	require.NotEmpty(t, output.Errors)
	assert.Equal(t, "userId", output.Errors[0].Field)
}

func TestHandler_Execute_ProposalTooLong(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Proposal: map[string]interface{}{
			"userId":    "creator-001",
			"listingId": "listing-001",
			"proposal":  strings.Repeat("x", 5001),
		},
	})

	require.NoError(t, err)
	assert.False(t, output.Valid)
}

func TestHandler_Execute_UnknownFieldsRejected(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Proposal: map[string]interface{}{
			"userId":    "creator-001",
			"listingId": "listing-001",
			"budget":    1000,
		},
	})

	require.NoError(t, err)
	assert.False(t, output.Valid)
}

func TestHandler_Execute_NilPayload(t *testing.T) {
	handler := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrValidationFailed)
}
