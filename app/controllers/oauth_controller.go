package controllers

import (
	"context"
	"net/url"
	"time"

	"github.com/HendrikVoss/ChimpRelay/internal/pkg/database"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/env"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/linker"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/mailchimp"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultSuccessURL = "https://dashboard.stripe.com/apps/success"
	defaultErrorURL   = "https://dashboard.stripe.com/apps/error"
)

type oauthStartRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
	State     string `json:"state" validate:"required"`
}

// HandleMailchimpOAuthStart hands the dashboard app the Mailchimp consent
// URL. The signature freshness window is enforced here so a captured start
// request cannot be replayed later.
func HandleMailchimpOAuthStart(c *fiber.Ctx) error {
	var req oauthStartRequest
	if err := parseSignedBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id, account_id and state are required"})
	}
	if !verifySignedStrict(c, req.UserID, req.AccountID) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	redirectURL, err := mailchimp.NewClientFromEnv().AuthorizeURLWithState(req.State)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Mailchimp OAuth is not configured"})
	}
	return c.JSON(fiber.Map{"redirect_url": redirectURL})
}

// HandleMailchimpOAuthCallback completes the authorization-code exchange
// and sends the user-agent back to the Stripe dashboard. Failure reasons
// stay opaque; upstream error bodies never reach the redirect.
func HandleMailchimpOAuthCallback(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	svc := linker.NewServiceFromDB(database.GetDB())
	res := svc.CompleteLink(ctx, c.Query("code"), c.Query("state"), c.Query("error"))
	if res.Linked() {
		return c.Redirect(env.GetEnv("STRIPE_SUCCESS_URL", defaultSuccessURL), fiber.StatusFound)
	}
	return c.Redirect(errorRedirect(res.Reason), fiber.StatusFound)
}

func errorRedirect(reason string) string {
	base := env.GetEnv("STRIPE_ERROR_URL", defaultErrorURL)
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("error", reason)
	u.RawQuery = q.Encode()
	return u.String()
}
