package eventlog

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/models"
)

func newMockLog(t *testing.T) (*Log, sqlmock.Sqlmock) {
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

func TestAppendWebhookEvent_RejectsMissingDedupKey(t *testing.T) {
	l, _ := newMockLog(t)
	err := l.AppendWebhookEvent(&models.LogEntry{Kind: "webhook_event"})
	require.Error(t, err)
}

func TestAppendWebhookEvent_DiscardsDuplicateSilently(t *testing.T) {
	l, mock := newMockLog(t)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider", "provider_event_id"}).
			AddRow(1, "sendgrid", "evt-1"))

	err := l.AppendWebhookEvent(&models.LogEntry{
		Kind:            "webhook_event",
		Provider:        "sendgrid",
		ProviderEventID: "evt-1",
	})
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendWebhookEvent_InsertsWhenNotADuplicate(t *testing.T) {
	l, mock := newMockLog(t)
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery("INSERT INTO .*log_entries.*").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := l.AppendWebhookEvent(&models.LogEntry{
		Kind:            "webhook_event",
		Provider:        "sendgrid",
		ProviderEventID: "evt-2",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByExternalRef_ReturnsNilWithoutErrorWhenNotFound(t *testing.T) {
	l, mock := newMockLog(t)
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound)

	entry, err := l.ByExternalRef("call-123")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
