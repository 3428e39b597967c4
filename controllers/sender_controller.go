package controller

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/client"
	"gopkg.in/gomail.v2"

	"github.com/gofiber/fiber/v2"
	"github.com/outreachhq/sequencer/config"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/utils"
)

type CreateSenderRequest struct {
	FromEmail    string `json:"from_email" validate:"required,email"`
	FromName     string `json:"from_name" validate:"required"`
	ProviderType string `json:"provider_type" validate:"required,oneof=smtp gmail outlook yahoo custom"`
	SMTPHost     string `json:"smtp_host" validate:"required_if=ProviderType smtp"`
	SMTPPort     int    `json:"smtp_port" validate:"required_if=ProviderType smtp"`
	SMTPUsername string `json:"smtp_username" validate:"required_if=ProviderType smtp"`
	SMTPPassword string `json:"smtp_password" validate:"required_if=ProviderType smtp"`
	Encryption   string `json:"encryption" validate:"required_if=ProviderType smtp,oneof=SSL TLS STARTTLS"`

	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"imap_password"`
	IMAPMailbox  string `json:"imap_mailbox"`

	OAuthProvider     string `json:"oauth_provider"`
	OAuthToken        string `json:"oauth_token"`
	OAuthRefreshToken string `json:"oauth_refresh_token"`

	RampProfile         models.RampProfile `json:"ramp_profile" validate:"omitempty,oneof=conservative moderate aggressive"`
	DailyCap            int                `json:"daily_cap"`
	SendWindowStartHour int                `json:"send_window_start_hour"`
	SendWindowEndHour   int                `json:"send_window_end_hour"`
	// SendWindowDays is a bitmask of time.Weekday values (bit 0 =
	// Sunday ... bit 6 = Saturday); omit for every day. See
	// models.Weekdays for building one from named weekdays.
	SendWindowDays int    `json:"send_window_days"`
	SendWindowTZ   string `json:"send_window_tz"`
}

type UpdateSenderRequest struct {
	FromName          *string `json:"from_name"`
	SMTPPassword      *string `json:"smtp_password"`
	IMAPPassword      *string `json:"imap_password"`
	OAuthToken        *string `json:"oauth_token"`
	OAuthRefreshToken *string `json:"oauth_refresh_token"`
	DailyCap          *int    `json:"daily_cap"`
}

type HoldRequest struct {
	Reason string `json:"reason"`
}

type TestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func CreateSender(c *fiber.Ctx) error {
	var req CreateSenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	encryptedSMTPPassword, err := utils.Encrypt(req.SMTPPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt SMTP password"})
	}
	encryptedIMAPPassword, err := utils.Encrypt(req.IMAPPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt IMAP password"})
	}
	encryptedOAuthToken, err := utils.Encrypt(req.OAuthToken)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt OAuth token"})
	}
	encryptedRefreshToken, err := utils.Encrypt(req.OAuthRefreshToken)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt OAuth refresh token"})
	}

	rampProfile := req.RampProfile
	if rampProfile == "" {
		rampProfile = models.RampModerate
	}
	dailyCap := req.DailyCap
	if dailyCap == 0 {
		dailyCap = 100
	}

	sender := models.Sender{
		FromEmail:           req.FromEmail,
		FromName:            req.FromName,
		ProviderType:        req.ProviderType,
		SMTPHost:            req.SMTPHost,
		SMTPPort:            req.SMTPPort,
		SMTPUsername:        req.SMTPUsername,
		SMTPPassword:        encryptedSMTPPassword,
		Encryption:          req.Encryption,
		IMAPHost:            req.IMAPHost,
		IMAPPort:            req.IMAPPort,
		IMAPUsername:        req.IMAPUsername,
		IMAPPassword:        encryptedIMAPPassword,
		IMAPMailbox:         req.IMAPMailbox,
		OAuthProvider:       req.OAuthProvider,
		OAuthToken:          encryptedOAuthToken,
		OAuthRefreshToken:   encryptedRefreshToken,
		IsWarmingUp:         true,
		RampProfile:         rampProfile,
		WarmupDay:           1,
		DailyCap:            dailyCap,
		SendWindowStartHour: req.SendWindowStartHour,
		SendWindowEndHour:   req.SendWindowEndHour,
		SendWindowDays:      req.SendWindowDays,
		SendWindowTZ:        req.SendWindowTZ,
	}
	if sender.SendWindowEndHour == 0 {
		sender.SendWindowEndHour = 18
	}
	if sender.SendWindowTZ == "" {
		sender.SendWindowTZ = "UTC"
	}

	if err := config.DB.Create(&sender).Error; err != nil {
		utils.LogError("create_sender", err, map[string]interface{}{"from_email": req.FromEmail})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create sender"})
	}

	sender.Sanitize()
	return c.Status(fiber.StatusCreated).JSON(sender)
}

func GetSenders(c *fiber.Ctx) error {
	var senders []models.Sender
	if err := config.DB.Find(&senders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch senders"})
	}
	for i := range senders {
		senders[i].Sanitize()
	}
	return c.JSON(senders)
}

func validateSenderID(id string) error {
	if id == "" || id == "undefined" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid sender id")
	}
	if _, err := strconv.Atoi(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "sender id must be numeric")
	}
	return nil
}

func GetSender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	sender.Sanitize()
	return c.JSON(sender)
}

func UpdateSender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateSenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	if req.FromName != nil {
		sender.FromName = *req.FromName
	}
	if req.DailyCap != nil {
		sender.DailyCap = *req.DailyCap
	}
	if req.SMTPPassword != nil {
		encrypted, err := utils.Encrypt(*req.SMTPPassword)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt SMTP password"})
		}
		sender.SMTPPassword = encrypted
	}
	if req.IMAPPassword != nil {
		encrypted, err := utils.Encrypt(*req.IMAPPassword)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt IMAP password"})
		}
		sender.IMAPPassword = encrypted
	}
	if req.OAuthToken != nil {
		encrypted, err := utils.Encrypt(*req.OAuthToken)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt OAuth token"})
		}
		sender.OAuthToken = encrypted
	}
	if req.OAuthRefreshToken != nil {
		encrypted, err := utils.Encrypt(*req.OAuthRefreshToken)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encrypt OAuth refresh token"})
		}
		sender.OAuthRefreshToken = encrypted
	}

	if err := config.DB.Save(&sender).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update sender"})
	}

	sender.Sanitize()
	return c.JSON(sender)
}

func DeleteSender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}
	if err := config.DB.Delete(&sender).Error; err != nil {
		utils.LogError("delete_sender", err, map[string]interface{}{"sender_id": senderID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete sender"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HoldSender and UnholdSender implement the POST/DELETE
// /senders/{id}/hold pair from the Control API: an operator can take
// a sender out of rotation immediately, independent of its ramp state.
func HoldSender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req HoldRequest
	_ = c.BodyParser(&req)

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	if err := config.DB.Model(&sender).Updates(map[string]interface{}{
		"on_hold":        true,
		"on_hold_reason": req.Reason,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to hold sender"})
	}

	utils.LogEvent("sender_held", map[string]interface{}{"sender_id": senderID, "reason": req.Reason})
	return c.SendStatus(fiber.StatusNoContent)
}

func UnholdSender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	if err := config.DB.Model(&sender).Updates(map[string]interface{}{
		"on_hold":        false,
		"on_hold_reason": "",
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unhold sender"})
	}

	utils.LogEvent("sender_unheld", map[string]interface{}{"sender_id": senderID})
	return c.SendStatus(fiber.StatusNoContent)
}

func TestSender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var sender models.Sender
	if err := tx.First(&sender, senderID).Error; err != nil {
		tx.Rollback()
		utils.LogError("sender_not_found", err, map[string]interface{}{"sender_id": senderID})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	smtpPassword, err := utils.Decrypt(sender.SMTPPassword)
	if err != nil {
		tx.Rollback()
		utils.LogError("decrypt_failed", err, map[string]interface{}{"operation": "smtp_password", "sender_id": sender.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to decrypt SMTP password"})
	}

	if _, err := mail.ParseAddress(sender.FromEmail); err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from email format"})
	}
	if hasMX, err := utils.ValidateMXRecords(sender.FromEmail); err != nil || !hasMX {
		tx.Rollback()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "domain MX records not found or invalid"})
	}

	var testResults struct {
		SMTP         TestResult `json:"smtp"`
		IMAP         TestResult `json:"imap"`
		SMTPVerified bool       `json:"smtp_verified"`
		EmailSent    bool       `json:"email_sent"`
	}

	if sender.SMTPHost != "" {
		testResults.SMTP = testSMTPConnection(sender, smtpPassword)
		if testResults.SMTP.Success {
			testResults.EmailSent = sendTestEmail(sender, smtpPassword, sender.FromEmail)
		}
	}
	if sender.IMAPHost != "" {
		testResults.IMAP = testIMAPConnection(sender)
	}

	if testResults.SMTP.Success && testResults.EmailSent {
		if err := tx.Model(&sender).Update("smtp_verified", true).Error; err != nil {
			tx.Rollback()
			utils.LogError("update_verification_failed", err, map[string]interface{}{"sender_id": sender.ID})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update verification status"})
		}
		testResults.SMTPVerified = true
	}

	tx.Commit()

	utils.LogEvent("sender_test_completed", map[string]interface{}{
		"sender_id":    sender.ID,
		"smtp_success": testResults.SMTP.Success,
		"email_sent":   testResults.EmailSent,
		"imap_success": testResults.IMAP.Success,
	})

	return c.JSON(fiber.Map{
		"message": "sender test completed",
		"results": testResults,
	})
}

// testSMTPConnection dials the sender's SMTP server and authenticates,
// without sending a message.
func testSMTPConnection(sender models.Sender, password string) TestResult {
	result := TestResult{Success: false}
	logContext := map[string]interface{}{
		"smtp_host": sender.SMTPHost,
		"smtp_port": sender.SMTPPort,
		"username":  sender.SMTPUsername,
	}

	smtpAddr := fmt.Sprintf("%s:%d", sender.SMTPHost, sender.SMTPPort)

	var auth smtp.Auth
	if sender.SMTPUsername != "" && password != "" {
		auth = smtp.PlainAuth("", sender.SMTPUsername, password, sender.SMTPHost)
	}

	switch strings.ToUpper(sender.Encryption) {
	case "SSL", "TLS":
		tlsConfig := &tls.Config{InsecureSkipVerify: false, ServerName: sender.SMTPHost}
		conn, err := tls.Dial("tcp", smtpAddr, tlsConfig)
		if err != nil {
			result.Error = fmt.Sprintf("failed to establish TLS connection: %v", err)
			utils.LogError("smtp_tls_connection", err, logContext)
			return result
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, sender.SMTPHost)
		if err != nil {
			result.Error = fmt.Sprintf("failed to create SMTP client: %v", err)
			utils.LogError("smtp_client_creation", err, logContext)
			return result
		}
		defer client.Close()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				result.Error = fmt.Sprintf("SMTP authentication failed: %v", err)
				utils.LogError("smtp_authentication", err, logContext)
				return result
			}
		}
		result.Success = true

	case "STARTTLS":
		client, err := smtp.Dial(smtpAddr)
		if err != nil {
			result.Error = fmt.Sprintf("failed to connect to SMTP server: %v", err)
			utils.LogError("smtp_connection", err, logContext)
			return result
		}
		defer client.Close()

		if err := client.StartTLS(&tls.Config{InsecureSkipVerify: false, ServerName: sender.SMTPHost}); err != nil {
			result.Error = fmt.Sprintf("failed to start TLS: %v", err)
			utils.LogError("smtp_starttls", err, logContext)
			return result
		}
		if auth != nil {
			if err := client.Auth(auth); err != nil {
				result.Error = fmt.Sprintf("SMTP authentication failed: %v", err)
				utils.LogError("smtp_authentication", err, logContext)
				return result
			}
		}
		result.Success = true

	default:
		client, err := smtp.Dial(smtpAddr)
		if err != nil {
			result.Error = fmt.Sprintf("failed to connect to SMTP server: %v", err)
			utils.LogError("smtp_connection", err, logContext)
			return result
		}
		defer client.Close()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				result.Error = fmt.Sprintf("SMTP authentication failed: %v", err)
				utils.LogError("smtp_authentication", err, logContext)
				return result
			}
		}
		result.Success = true
	}

	utils.LogEvent("smtp_test_success", logContext)
	return result
}

// sendTestEmail sends a one-off message through the sender's real SMTP
// dialer, reusing the gomail pattern the Email Channel Adapter uses for
// production sends (package channel).
func sendTestEmail(sender models.Sender, password string, toEmail string) bool {
	logContext := map[string]interface{}{
		"smtp_host": sender.SMTPHost,
		"smtp_port": sender.SMTPPort,
		"to_email":  toEmail,
	}

	m := gomail.NewMessage()
	m.SetHeader("From", sender.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Sender configuration test")
	m.SetBody("text/plain", "This is a test message confirming your sender's SMTP configuration.")

	d := gomail.NewDialer(sender.SMTPHost, sender.SMTPPort, sender.SMTPUsername, password)
	switch strings.ToUpper(sender.Encryption) {
	case "SSL", "TLS":
		d.SSL = true
	case "STARTTLS":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: false, ServerName: sender.SMTPHost}
	default:
		d.SSL = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.DialAndSend(m)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			utils.LogError("send_test_email", err, logContext)
			return false
		}
	case <-ctx.Done():
		utils.LogError("send_test_email_timeout", ctx.Err(), logContext)
		return false
	}

	utils.LogEvent("test_email_sent", logContext)
	return true
}

// testIMAPConnection is exercised both by TestSender and by the reply
// watcher's startup check before it enrolls a sender into its polling
// loop (worker/reply_watcher.go).
func testIMAPConnection(sender models.Sender) TestResult {
	result := TestResult{Success: false}
	logContext := map[string]interface{}{
		"imap_host": sender.IMAPHost,
		"imap_port": sender.IMAPPort,
		"username":  sender.IMAPUsername,
	}

	imapPassword, err := utils.Decrypt(sender.IMAPPassword)
	if err != nil {
		result.Error = fmt.Sprintf("failed to decrypt IMAP password: %v", err)
		utils.LogError("imap_password_decrypt", err, logContext)
		return result
	}

	imapAddr := fmt.Sprintf("%s:%d", sender.IMAPHost, sender.IMAPPort)
	cl, err := client.DialTLS(imapAddr, &tls.Config{InsecureSkipVerify: false, ServerName: sender.IMAPHost})
	if err != nil {
		result.Error = fmt.Sprintf("failed to connect to IMAP server: %v", err)
		utils.LogError("imap_connection", err, logContext)
		return result
	}
	defer cl.Logout()

	cl.Timeout = 10 * time.Second

	if err := cl.Login(sender.IMAPUsername, imapPassword); err != nil {
		result.Error = fmt.Sprintf("IMAP authentication failed: %v", err)
		utils.LogError("imap_authentication", err, logContext)
		return result
	}

	if sender.IMAPMailbox != "" {
		if _, err := cl.Select(sender.IMAPMailbox, false); err != nil {
			result.Error = fmt.Sprintf("failed to select mailbox: %v", err)
			utils.LogError("imap_mailbox_select", err, logContext)
			return result
		}
	}

	result.Success = true
	utils.LogEvent("imap_test_success", logContext)
	return result
}

// VerifySender checks the sender's own from-address for deliverability
// risk (disposable domain, no MX, catch-all, dead mailbox) on top of
// the SMTP credential test /senders/{id}/test already ran, so a
// warmup can be refused for a mailbox that will just bounce on send.
func VerifySender(c *fiber.Ctx) error {
	senderID := c.Params("id")
	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var sender models.Sender
	if err := config.DB.First(&sender, senderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sender not found"})
	}

	if !sender.SMTPVerified {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sender SMTP settings not verified; run /senders/{id}/test first"})
	}

	result, err := utils.EnhancedVerifyEmailAddress(sender.FromEmail)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "address verification failed"})
	}
	if result.IsBounceRisk {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sender address failed deliverability verification",
			"data":  result,
		})
	}

	return c.JSON(fiber.Map{"message": "sender verified", "data": result})
}
