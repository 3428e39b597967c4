package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/config"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/store"
	"github.com/outreachhq/sequencer/utils"
)

type CreateSequenceStepRequest struct {
	Kind                models.StepKind            `json:"kind" validate:"required,oneof=email wait call network_connect network_message"`
	DelayDays           int                        `json:"delay_days"`
	TemplateKey         string                     `json:"template_key,omitempty"`
	InlineSubject       string                     `json:"inline_subject,omitempty"`
	InlineBody          string                     `json:"inline_body,omitempty"`
	PersonalizationMode models.PersonalizationMode `json:"personalization_mode,omitempty"`
	Script              string                     `json:"script,omitempty"`
	Message             string                     `json:"message,omitempty"`
}

type CreateSequenceRequest struct {
	CampaignID  string                      `json:"campaign_id" validate:"required"`
	Name        string                      `json:"name" validate:"required"`
	SenderEmail string                      `json:"sender_email" validate:"required,email"`
	Steps       []CreateSequenceStepRequest `json:"steps" validate:"required,min=1,dive"`
}

// CreateSequence implements POST /sequences.
func CreateSequence(c *fiber.Ctx) error {
	var req CreateSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sequence := models.Sequence{
		CampaignID:  req.CampaignID,
		Name:        req.Name,
		SenderEmail: req.SenderEmail,
		Steps:       stepsFromRequest(req.Steps),
	}

	if err := config.DB.Create(&sequence).Error; err != nil {
		utils.LogError("create_sequence", err, map[string]interface{}{"campaign_id": req.CampaignID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create sequence"})
	}

	return c.Status(fiber.StatusCreated).JSON(sequence)
}

func stepsFromRequest(reqs []CreateSequenceStepRequest) []models.SequenceStep {
	steps := make([]models.SequenceStep, len(reqs))
	for i, r := range reqs {
		steps[i] = models.SequenceStep{
			StepIndex:           i,
			Kind:                r.Kind,
			DelayDays:           r.DelayDays,
			TemplateKey:         r.TemplateKey,
			InlineSubject:       r.InlineSubject,
			InlineBody:          r.InlineBody,
			PersonalizationMode: r.PersonalizationMode,
			Script:              r.Script,
			Message:             r.Message,
		}
	}
	return steps
}

func GetSequence(c *fiber.Ctx) error {
	var sequence models.Sequence
	if err := config.DB.Preload("Steps").First(&sequence, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sequence not found"})
	}
	return c.JSON(sequence)
}

// UpdateSequence implements PUT /sequences/{id}: replacing a sequence's
// step list is forbidden while any enrollment on it is in_flight — a
// worker could be mid-dispatch against a step index this request is
// about to delete out from under it.
func UpdateSequence(c *fiber.Ctx) error {
	sequenceID := utils.ParseUint(c.Params("id"))

	inFlight, err := store.New(config.DB).HasInFlight(sequenceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check in-flight enrollments"})
	}
	if inFlight {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "sequence has in_flight enrollments; cannot replace steps"})
	}

	var req CreateSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var sequence models.Sequence
	if err := config.DB.First(&sequence, sequenceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sequence not found"})
	}

	sequence.Name = req.Name
	sequence.SenderEmail = req.SenderEmail
	newSteps := stepsFromRequest(req.Steps)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sequence_id = ?", sequence.ID).Delete(&models.SequenceStep{}).Error; err != nil {
			return err
		}
		sequence.Steps = newSteps
		return tx.Save(&sequence).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update sequence"})
	}

	return c.JSON(sequence)
}

type CreateEnrollmentRequest struct {
	RecipientID uint `json:"recipient_id" validate:"required"`
}

// CreateEnrollmentForSequence implements POST /sequences/{id}/enrollments.
func CreateEnrollmentForSequence(c *fiber.Ctx) error {
	sequenceID := utils.ParseUint(c.Params("id"))

	var sequence models.Sequence
	if err := config.DB.First(&sequence, sequenceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sequence not found"})
	}

	var req CreateEnrollmentRequest
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

	enrollment, err := store.New(config.DB).CreateEnrollment(sequenceID, req.RecipientID)
	if err != nil {
		utils.LogError("create_enrollment", err, map[string]interface{}{"sequence_id": sequenceID, "recipient_id": req.RecipientID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create enrollment"})
	}

	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

// GetSequenceStatus implements GET /sequences/{id}/status.
func GetSequenceStatus(c *fiber.Ctx) error {
	sequenceID := utils.ParseUint(c.Params("id"))

	status, err := store.New(config.DB).SequenceStatus(sequenceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute sequence status"})
	}
	return c.JSON(status)
}

// RetryEnrollment implements POST /enrollments/{id}/retry: an operator
// can clear a failed enrollment's attempt count and make it
// immediately due again.
func RetryEnrollment(c *fiber.Ctx) error {
	enrollmentID := utils.ParseUint(c.Params("id"))

	var enrollment models.Enrollment
	if err := config.DB.First(&enrollment, enrollmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "enrollment not found"})
	}
	if enrollment.Status != models.EnrollmentFailed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only failed enrollments can be retried"})
	}

	result := config.DB.Model(&enrollment).Where("version = ?", enrollment.Version).Updates(map[string]interface{}{
		"status":     models.EnrollmentPending,
		"attempts":   0,
		"last_error": "",
		"due_at":     time.Now(),
		"version":    enrollment.Version + 1,
	})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to retry enrollment"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "enrollment changed concurrently, retry again"})
	}

	utils.LogEvent("enrollment_retried", map[string]interface{}{"enrollment_id": enrollmentID})
	return c.SendStatus(fiber.StatusNoContent)
}
