package router

import (
	"github.com/HendrikVoss/ChimpRelay/app/controllers"
	"github.com/gofiber/fiber/v2"
)

type WebhookRouter struct {
}

// InstallRouter registers the webhook ingestion route. No rate limiter
// here: Stripe controls the delivery rate and throttling it would only
// cause redelivery storms.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/stripe/webhook", controllers.HandleStripeWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
