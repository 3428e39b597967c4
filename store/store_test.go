package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/executor"
	"github.com/outreachhq/sequencer/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return New(gdb), mock
}

func TestClaimDue_SkipsRowsWhoseVersionMovedBeforeUpdate(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "version", "status", "due_at"}).
		AddRow(1, 0, "pending", now).
		AddRow(2, 0, "pending", now)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	mock.ExpectExec("UPDATE .*enrollments.*").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 1, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE .*enrollments.*").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 2, 0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := s.ClaimDue(now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.EqualValues(t, 1, claimed[0].ID)
	assert.Equal(t, models.EnrollmentInFlight, claimed[0].Status)
	assert.Equal(t, 1, claimed[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_ReturnsConcurrencyConflictWhenVersionMoved(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*enrollments.*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Commit(5, 2, executor.Outcome{Status: models.EnrollmentCompleted, StepIndex: 3})
	require.Error(t, err)
	var conflict *executor.ConcurrencyConflict
	assert.ErrorAs(t, err, &conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit_WritesLogEntryInSameTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*enrollments.*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO .*log_entries.*").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := s.Commit(5, 2, executor.Outcome{
		Status:    models.EnrollmentCompleted,
		StepIndex: 3,
		LogEntry:  &models.LogEntry{Kind: "send_attempt", Outcome: "sent"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecoverStale_IncrementsAttemptsAndRevertsStatus(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("UPDATE .*enrollments.*").WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.RecoverStale(time.Now(), 10*time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasInFlight_TrueWhenCountPositive(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	inFlight, err := s.HasInFlight(7)
	require.NoError(t, err)
	assert.True(t, inFlight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSenderHold_ReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("UPDATE .*senders.*").WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetSenderHold("missing@example.com", true, "bounce storm")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
