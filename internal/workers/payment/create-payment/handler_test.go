// internal/workers/payment/create-payment/handler_test.go
package createpayment

import (
	"context"
	"database/sql"
	"testing"

	"sponsorhub-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestInput() *Input {
	return &Input{
		SenderID:   "sponsor-001",
		ReceiverID: "creator-001",
		ListingID:  "listing-001",
		Amount:     1000,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
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
// Fee Calculation Tests
// ==========================

func TestComputeFees_StandardRates(t *testing.T) {
	breakdown, err := ComputeFees(1000, DefaultFeeRates())

	require.NoError(t, err)
	assert.InDelta(t, 20, breakdown.PlatformFee, 1e-9)
	assert.InDelta(t, 30, breakdown.ProcessingFee, 1e-9)
	assert.InDelta(t, 1050, breakdown.Total, 1e-9)
}

func TestComputeFees_TotalIsAmountPlusFees(t *testing.T) {
	amounts := []float64{0.01, 1, 99.99, 1234.56, 1000000}

	for _, amount := range amounts {
		breakdown, err := ComputeFees(amount, DefaultFeeRates())
		require.NoError(t, err)
		assert.InDelta(t, amount+breakdown.PlatformFee+breakdown.ProcessingFee, breakdown.Total, 1e-9)
		assert.InDelta(t, amount*1.05, breakdown.Total, 1e-6)
	}
}

func TestComputeFees_InvalidAmount(t *testing.T) {
	for _, amount := range []float64{0, -1, -1000} {
		_, err := ComputeFees(amount, DefaultFeeRates())
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestComputeFees_CustomRates(t *testing.T) {
	breakdown, err := ComputeFees(200, FeeRates{Platform: 0.05, Processing: 0.01})

	require.NoError(t, err)
	assert.InDelta(t, 10, breakdown.PlatformFee, 1e-9)
	assert.InDelta(t, 2, breakdown.ProcessingFee, 1e-9)
	assert.InDelta(t, 212, breakdown.Total, 1e-9)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	input := createTestInput()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), input.SenderID, input.ReceiverID, input.ListingID,
			input.Amount, 20.0, 30.0, 1050.0, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.NotEmpty(t, output.PaymentID)
	assert.Equal(t, "pending", output.PaymentStatus)
	assert.InDelta(t, 1050, output.Total, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_OmittedListingStoredAsNull(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	input := createTestInput()
	input.ListingID = ""
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), input.SenderID, input.ReceiverID, nil,
			input.Amount, 20.0, 30.0, 1050.0, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))

	_, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidAmountSkipsInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	input := createTestInput()
	input.Amount = 0

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))

	_, err := handler.Execute(context.Background(), input)

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(sql.ErrConnDone)

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))

	_, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
}
