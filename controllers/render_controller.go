package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/outreachhq/sequencer/channel"
	"github.com/outreachhq/sequencer/config"
	"github.com/outreachhq/sequencer/executor"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/ratelimit"
	"github.com/outreachhq/sequencer/signature"
	"github.com/outreachhq/sequencer/store"
	"github.com/outreachhq/sequencer/template"
	"github.com/outreachhq/sequencer/utils"
)

type RenderPreviewRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	SenderEmail string `json:"sender_email" validate:"required,email"`
	Subject     string `json:"subject"`
	Body        string `json:"body" validate:"required"`
}

type RenderPreviewResponse struct {
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// RenderPreview implements POST /render/preview: runs the Template
// Renderer and Signature Composer against a real recipient/sender pair
// without touching the Rate Governor or any Channel Adapter, so an
// operator can see exactly what a step would send before enrolling
// anyone.
func RenderPreview(c *fiber.Ctx) error {
	var req RenderPreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var recipient models.Recipient
	if err := config.DB.First(&recipient, req.RecipientID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient not found"})
	}

	var sender models.Sender
	if err := config.DB.Where("from_email = ?", req.SenderEmail).First(&sender).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sender not found"})
	}

	signaturePlain := ""
	if sig, err := signature.NewStore(config.DB).ForSender(&sender); err == nil {
		signaturePlain = sig.PlainBody
	}

	bag := executor.BuildVariableBag(&recipient, &sender, "", signaturePlain)

	rendered, err := template.Render(req.Subject, req.Body, bag)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"kind": "TemplateSyntaxError", "message": err.Error()})
	}

	missing := template.RequiredFields(req.Subject + "\n" + req.Body)
	var unresolved []string
	for _, field := range missing {
		if _, ok := bag[field]; !ok {
			unresolved = append(unresolved, field)
		}
	}

	return c.JSON(RenderPreviewResponse{
		Subject:       rendered.Subject,
		Body:          rendered.Body,
		MissingFields: unresolved,
	})
}

type SendTestRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	SenderEmail string `json:"sender_email" validate:"required,email"`
	Subject     string `json:"subject"`
	Body        string `json:"body" validate:"required"`
}

// SendTest implements POST /send/test: dispatches one rendered email
// through the real Email Channel Adapter but bypasses the Rate
// Governor entirely, since a one-off operator test should never be
// denied by a sender's warmup cap or blocked by its send window. The
// attempt is logged with kind "test_send" so it never confuses the
// Event Log's delivery accounting for a real campaign send.
func SendTest(c *fiber.Ctx) error {
	var req SendTestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var recipient models.Recipient
	if err := config.DB.First(&recipient, req.RecipientID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient not found"})
	}

	var sender models.Sender
	if err := config.DB.Where("from_email = ?", req.SenderEmail).First(&sender).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sender not found"})
	}

	smtpPassword, err := utils.Decrypt(sender.SMTPPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to decrypt sender credentials"})
	}

	signaturePlain := ""
	if sig, err := signature.NewStore(config.DB).ForSender(&sender); err == nil {
		signaturePlain = sig.PlainBody
	}
	bag := executor.BuildVariableBag(&recipient, &sender, "", signaturePlain)

	rendered, err := template.Render(req.Subject, req.Body, bag)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"kind": "TemplateSyntaxError", "message": err.Error()})
	}

	adapter := &channel.EmailAdapter{}

	msg := channel.Message{
		FromEmail: sender.FromEmail,
		ToEmail:   recipient.Email,
		Subject:   rendered.Subject,
		RichBody:  rendered.Body,
		PlainBody: rendered.Body,
		SenderCtx: channel.SenderContext{
			SenderID:     sender.ID,
			SMTPHost:     sender.SMTPHost,
			SMTPPort:     sender.SMTPPort,
			SMTPUsername: sender.SMTPUsername,
			SMTPPassword: smtpPassword,
			Encryption:   sender.Encryption,
		},
	}

	dispatchCtx, dispatchCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dispatchCancel()
	result := adapter.Dispatch(dispatchCtx, msg)

	entry := models.LogEntry{
		StepIndex: -1,
		Kind:      "test_send",
		Outcome:   string(result.Status),
		Detail:    result.Detail,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		utils.LogError("log_test_send", err, map[string]interface{}{"sender_id": sender.ID})
	}

	if result.Status != channel.StatusSent {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"kind": "ChannelFailure", "status": result.Status, "detail": result.Detail})
	}
	return c.JSON(fiber.Map{"status": result.Status, "external_ref": result.ExternalRef})
}

// GetSenderWarmupStatus implements GET /senders/by-email/{email}/warmup, computed
// live from the Rate Governor's ramp-curve evaluation rather than a
// separately maintained projection.
func GetSenderWarmupStatus(c *fiber.Ctx) error {
	email := c.Params("email")

	sender, err := store.New(config.DB).SenderByEmail(email)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	governor := ratelimit.NewGovernor(config.DB)
	return c.JSON(governor.Status(sender))
}

type SenderHoldRequest struct {
	Reason string `json:"reason"`
}

// HoldSenderByEmail and UnholdSenderByEmail implement POST/DELETE
// /senders/by-email/{email}/hold: the email-keyed counterpart to
// HoldSender/UnholdSender, which are keyed by numeric id for the CRUD
// surface. Both funnel through store.SetSenderHold so the Scheduler and
// the Control API never disagree about what "on hold" means.
func HoldSenderByEmail(c *fiber.Ctx) error {
	var req SenderHoldRequest
	_ = c.BodyParser(&req)

	if err := store.New(config.DB).SetSenderHold(c.Params("email"), true, req.Reason); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}
	utils.LogEvent("sender_held", map[string]interface{}{"sender_email": c.Params("email"), "reason": req.Reason})
	return c.SendStatus(fiber.StatusNoContent)
}

func UnholdSenderByEmail(c *fiber.Ctx) error {
	if err := store.New(config.DB).SetSenderHold(c.Params("email"), false, ""); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}
	utils.LogEvent("sender_unheld", map[string]interface{}{"sender_email": c.Params("email")})
	return c.SendStatus(fiber.StatusNoContent)
}
