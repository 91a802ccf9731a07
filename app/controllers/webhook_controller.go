package controllers

import (
	"context"
	"time"

	"github.com/HendrikVoss/ChimpRelay/internal/pkg/database"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/dispatch"
	"github.com/gofiber/fiber/v2"
)

// HandleStripeWebhook ingests Stripe event deliveries. Authenticated and
// parsed events are always acknowledged with "OK" so Stripe does not
// redeliver them; only authentication and parse failures return an error
// status and trigger Stripe's retry.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	d := dispatch.NewFromDB(database.GetDB())
	if err := d.Handle(ctx, rawBody, c.Get("Stripe-Signature")); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid webhook payload or signature")
	}
	return c.SendString("OK")
}
