package webhook

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/eventlog"
)

func newMockHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return New(eventlog.New(gdb), gdb), mock
}

func TestHandleEmail_RejectsMissingDedupFields(t *testing.T) {
	h, _ := newMockHandler(t)
	app := fiber.New()
	app.Post("/webhooks/email", h.HandleEmail)

	req := httptest.NewRequest("POST", "/webhooks/email", bytes.NewReader([]byte(`{"event_type":"delivered"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleEmail_AppendsNewEventAndReturnsOK(t *testing.T) {
	h, mock := newMockHandler(t)
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound) // ByExternalRef lookup
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound) // dedup check
	mock.ExpectQuery("INSERT INTO .*log_entries.*").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	app := fiber.New()
	app.Post("/webhooks/email", h.HandleEmail)

	body := []byte(`{"provider":"sendgrid","event_id":"evt-1","event_type":"delivered","external_ref":"msg-1"}`)
	req := httptest.NewRequest("POST", "/webhooks/email", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleEmail_DuplicateEventStillReturnsOK(t *testing.T) {
	h, mock := newMockHandler(t)
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound) // ByExternalRef lookup
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider", "provider_event_id"}).
			AddRow(1, "sendgrid", "evt-1"))

	app := fiber.New()
	app.Post("/webhooks/email", h.HandleEmail)

	body := []byte(`{"provider":"sendgrid","event_id":"evt-1","event_type":"delivered"}`)
	req := httptest.NewRequest("POST", "/webhooks/email", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleVoice_RejectsMissingDedupFields(t *testing.T) {
	h, _ := newMockHandler(t)
	app := fiber.New()
	app.Post("/webhooks/voice", h.HandleVoice)

	req := httptest.NewRequest("POST", "/webhooks/voice", bytes.NewReader([]byte(`{"call_status":"completed"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
