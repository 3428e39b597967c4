package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRenderPreview_RendersKnownFieldsAndFlagsMissingOnes(t *testing.T) {
	mock := withMockDB(t)
	app := fiber.New()
	app.Post("/render/preview", RenderPreview)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email"}).AddRow(1, "Dana", "dana@example.com"))
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_email", "from_name"}).AddRow(7, "rep@outreach.test", "Rep"))
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound) // ForSender lookup

	body := []byte(`{"recipient_id":1,"sender_email":"rep@outreach.test","subject":"Hi {{first_name}}","body":"Regarding {{deal_size}}"}`)
	req := httptest.NewRequest("POST", "/render/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out RenderPreviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Hi Dana", out.Subject)
	assert.Equal(t, []string{"deal_size"}, out.MissingFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderPreview_MalformedTemplateReturnsSyntaxError(t *testing.T) {
	mock := withMockDB(t)
	app := fiber.New()
	app.Post("/render/preview", RenderPreview)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email"}).AddRow(1, "Dana", "dana@example.com"))
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_email", "from_name"}).AddRow(7, "rep@outreach.test", "Rep"))
	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound)

	body := []byte(`{"recipient_id":1,"sender_email":"rep@outreach.test","subject":"Hi {{first_name","body":"unbalanced"}`)
	req := httptest.NewRequest("POST", "/render/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSenderWarmupStatus_ReturnsNotFoundWhenSenderMissing(t *testing.T) {
	mock := withMockDB(t)
	app := fiber.New()
	app.Get("/senders/:email/warmup", GetSenderWarmupStatus)

	mock.ExpectQuery("SELECT").WillReturnError(gorm.ErrRecordNotFound)

	req := httptest.NewRequest("GET", "/senders/missing@outreach.test/warmup", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
