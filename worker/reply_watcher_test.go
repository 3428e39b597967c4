package worker

import (
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/models"
)

func newMockReplyWatcher(t *testing.T) (*ReplyWatcher, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewReplyWatcher(gdb, log.New(log.Writer(), "", 0)), mock
}

func envelopeFrom(mailbox, host string) *imap.Message {
	return &imap.Message{
		Envelope: &imap.Envelope{
			From: []*imap.Address{{MailboxName: mailbox, HostName: host}},
		},
	}
}

func TestHandleMessage_IgnoresMessageWithoutEnvelope(t *testing.T) {
	w, mock := newMockReplyWatcher(t)
	w.handleMessage(models.Sender{FromEmail: "rep@outreach.test"}, &imap.Message{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessage_IgnoresMessageFromUnknownRecipient(t *testing.T) {
	w, mock := newMockReplyWatcher(t)
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound)

	w.handleMessage(models.Sender{FromEmail: "rep@outreach.test"}, envelopeFrom("dana", "example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessage_CompletesMatchingEnrollmentAndLogsReply(t *testing.T) {
	w, mock := newMockReplyWatcher(t)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(42, "dana@example.com"))

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "status", "version", "step_index"}).
			AddRow(9, 42, "waiting", 3, 1))

	mock.ExpectExec("UPDATE .*enrollments.*").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("INSERT INTO .*log_entries.*").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	w.handleMessage(models.Sender{FromEmail: "rep@outreach.test"}, envelopeFrom("dana", "example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessage_SkipsLogWhenUpdateAffectsNoRows(t *testing.T) {
	w, mock := newMockReplyWatcher(t)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(42, "dana@example.com"))

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "status", "version", "step_index"}).
			AddRow(9, 42, "waiting", 3, 1))

	mock.ExpectExec("UPDATE .*enrollments.*").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w.handleMessage(models.Sender{FromEmail: "rep@outreach.test"}, envelopeFrom("dana", "example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
