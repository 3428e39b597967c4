package controller

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/config"
)

func TestCreateSender_RejectsInvalidProviderType(t *testing.T) {
	withMockDB(t)
	app := fiber.New()
	app.Post("/senders", CreateSender)

	body := []byte(`{"from_email":"rep@outreach.test","from_name":"Rep","provider_type":"carrier_pigeon"}`)
	req := httptest.NewRequest("POST", "/senders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSender_InsertsSenderWithEncryptedCredentials(t *testing.T) {
	mock := withMockDB(t)
	prevConfig := config.AppConfig
	config.AppConfig = &config.Config{EncryptionKey: strings.Repeat("k", 32)}
	t.Cleanup(func() { config.AppConfig = prevConfig })
	app := fiber.New()
	app.Post("/senders", CreateSender)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO .*senders.*").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	body := []byte(`{
		"from_email":"rep@outreach.test",
		"from_name":"Rep",
		"provider_type":"smtp",
		"smtp_host":"smtp.outreach.test",
		"smtp_port":587,
		"smtp_username":"rep",
		"smtp_password":"hunter2",
		"encryption":"STARTTLS"
	}`)
	req := httptest.NewRequest("POST", "/senders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSender_RejectsNonNumericID(t *testing.T) {
	withMockDB(t)
	app := fiber.New()
	app.Get("/senders/:id", GetSender)

	req := httptest.NewRequest("GET", "/senders/not-a-number", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetSender_ReturnsNotFoundWhenMissing(t *testing.T) {
	mock := withMockDB(t)
	app := fiber.New()
	app.Get("/senders/:id", GetSender)

	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound)

	req := httptest.NewRequest("GET", "/senders/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSender_SetsOnHoldAndReason(t *testing.T) {
	mock := withMockDB(t)
	app := fiber.New()
	app.Post("/senders/:id/hold", HoldSender)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_email"}).AddRow(3, "rep@outreach.test"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*senders.*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := []byte(`{"reason":"bounce storm"}`)
	req := httptest.NewRequest("POST", "/senders/3/hold", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSender_RemovesExistingSender(t *testing.T) {
	mock := withMockDB(t)
	app := fiber.New()
	app.Delete("/senders/:id", DeleteSender)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_email"}).AddRow(5, "rep@outreach.test"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*senders.*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest("DELETE", "/senders/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
