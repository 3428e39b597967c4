// Package routes wires the Control API, Webhook Ingress, and status
// stream onto a Fiber app, grouped and protected the way
// SetupAPIRoutes/SetupAuthRoutes group and protect their own routes.
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	controller "github.com/outreachhq/sequencer/controllers"
	"github.com/outreachhq/sequencer/middleware"
)

// SetupControlAPIRoutes registers the operator-facing Control API,
// protected end to end by JWT the same way /api/v1 is wrapped with
// middleware.Protected().
func SetupControlAPIRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	sequences := api.Group("/sequences")
	sequences.Post("/", controller.CreateSequence)
	sequences.Get("/:id", controller.GetSequence)
	sequences.Put("/:id", controller.UpdateSequence)
	sequences.Post("/:id/enrollments", controller.CreateEnrollmentForSequence)
	sequences.Get("/:id/status", controller.GetSequenceStatus)

	app.Get("/api/v1/sequences/:id/status/stream", websocket.New(func(c *websocket.Conn) {
		controller.HandleSequenceStatusWS(c)
	}))

	enrollments := api.Group("/enrollments")
	enrollments.Post("/:id/retry", controller.RetryEnrollment)

	senders := api.Group("/senders")
	senders.Post("/", controller.CreateSender)
	senders.Get("/", controller.GetSenders)
	senders.Get("/:id", controller.GetSender)
	senders.Put("/:id", controller.UpdateSender)
	senders.Delete("/:id", controller.DeleteSender)
	senders.Post("/:id/test", controller.TestSender)
	senders.Post("/:id/verify", controller.VerifySender)
	senders.Post("/:id/hold", controller.HoldSender)
	senders.Delete("/:id/hold", controller.UnholdSender)

	// Email-keyed sender endpoints address a mailbox rather than a row:
	// warmup status and hold/unhold both read naturally as "this
	// mailbox", not "row 7".
	api.Get("/senders/by-email/:email/warmup", controller.GetSenderWarmupStatus)
	api.Post("/senders/by-email/:email/hold", controller.HoldSenderByEmail)
	api.Delete("/senders/by-email/:email/hold", controller.UnholdSenderByEmail)

	render := api.Group("/render")
	render.Post("/preview", controller.RenderPreview)

	send := api.Group("/send", middleware.TestSendRateLimiter())
	send.Post("/test", controller.SendTest)

	log.Println("Control API routes initialized")
}

// SetupWebhookRoutes registers the provider callback endpoints. These
// sit outside the JWT-protected group, and the handlers do not verify
// a provider signature or shared secret.
func SetupWebhookRoutes(app *fiber.App, handler WebhookHandler) {
	webhooks := app.Group("/webhooks", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	webhooks.Post("/email", handler.HandleEmail)
	webhooks.Post("/voice", handler.HandleVoice)

	log.Println("Webhook ingress routes initialized")
}

// WebhookHandler is the subset of webhook.Handler routes.go depends
// on, kept as an interface so this package never imports the webhook
// package's gorm/eventlog wiring directly.
type WebhookHandler interface {
	HandleEmail(c *fiber.Ctx) error
	HandleVoice(c *fiber.Ctx) error
}

// SetupRoutes wires the health check, Control API, webhook ingress,
// and the catch-all 404 handler onto app, in that order.
func SetupRoutes(app *fiber.App, webhookHandler WebhookHandler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupControlAPIRoutes(app)
	SetupWebhookRoutes(app, webhookHandler)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
