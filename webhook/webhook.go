// Package webhook implements the Webhook Ingress: the two provider
// callback endpoints that turn delivery/open/bounce and call events
// into Event Log entries, deduped per (provider, event_id) and
// occasionally advancing an enrollment's due-at. The Fiber handler
// shape and its event-type switch follow HandleCampaignWebhook's
// pattern for turning a provider payload into a log row.
package webhook

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/eventlog"
	"github.com/outreachhq/sequencer/models"
)

// Handler wires the Event Log and the Enrollment store access the
// call-outcome advance rule needs, kept deliberately small: webhook
// ingress only ever appends log rows and, for voice, nudges one
// enrollment's due_at forward.
type Handler struct {
	Log *eventlog.Log
	DB  *gorm.DB
}

func New(log *eventlog.Log, db *gorm.DB) *Handler {
	return &Handler{Log: log, DB: db}
}

type emailWebhookPayload struct {
	Provider    string            `json:"provider"`
	EventID     string            `json:"event_id"`
	EventType   string            `json:"event_type"` // delivered, opened, bounced, ...
	ExternalRef string            `json:"external_ref"`
	Detail      map[string]string `json:"detail,omitempty"`
}

// HandleEmail processes POST /webhooks/email.
func (h *Handler) HandleEmail(c *fiber.Ctx) error {
	var payload emailWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "ValidationError", "message": "invalid request body"})
	}
	if payload.Provider == "" || payload.EventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "ValidationError", "message": "provider and event_id are required"})
	}

	entry := &models.LogEntry{
		Kind:            "webhook_event",
		Outcome:         payload.EventType,
		Provider:        payload.Provider,
		ProviderEventID: payload.EventID,
		ExternalRef:     payload.ExternalRef,
		Detail:          payload.Detail,
	}
	if original, err := h.Log.ByExternalRef(payload.ExternalRef); err == nil && original != nil {
		entry.EnrollmentID = original.EnrollmentID
		entry.StepIndex = original.StepIndex
	}

	if err := h.Log.AppendWebhookEvent(entry); err != nil {
		if errors.Is(err, eventlog.ErrDuplicateEvent) {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"kind": "ValidationError", "message": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}

type voiceWebhookPayload struct {
	Provider    string            `json:"provider"`
	EventID     string            `json:"event_id"`
	CallStatus  string            `json:"call_status"` // started, completed, failed
	ExternalRef string            `json:"external_ref"`
	Detail      map[string]string `json:"detail,omitempty"`
}

// HandleVoice processes POST /webhooks/voice. A completed call
// advances the originating enrollment's due_at to now instead of
// waiting out its remaining delay.
func (h *Handler) HandleVoice(c *fiber.Ctx) error {
	var payload voiceWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "ValidationError", "message": "invalid request body"})
	}
	if payload.Provider == "" || payload.EventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": "ValidationError", "message": "provider and event_id are required"})
	}

	entry := &models.LogEntry{
		Kind:            "webhook_event",
		Outcome:         payload.CallStatus,
		Provider:        payload.Provider,
		ProviderEventID: payload.EventID,
		ExternalRef:     payload.ExternalRef,
		Detail:          payload.Detail,
	}

	original, lookupErr := h.Log.ByExternalRef(payload.ExternalRef)
	if lookupErr == nil && original != nil {
		entry.EnrollmentID = original.EnrollmentID
		entry.StepIndex = original.StepIndex
	}

	if err := h.Log.AppendWebhookEvent(entry); err != nil {
		if errors.Is(err, eventlog.ErrDuplicateEvent) {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"kind": "ValidationError", "message": err.Error()})
	}

	if payload.CallStatus == "completed" && original != nil {
		if err := h.DB.Model(&models.Enrollment{}).
			Where("id = ? AND status IN ?", original.EnrollmentID, []models.EnrollmentStatus{models.EnrollmentWaiting, models.EnrollmentPending}).
			Update("due_at", time.Now()).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"kind": "ValidationError", "message": err.Error()})
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
