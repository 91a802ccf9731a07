package controllers

import (
	"fmt"
	"time"

	"github.com/HendrikVoss/ChimpRelay/internal/pkg/env"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/stripesig"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// signedAccountRequest is the body shape shared by all account-scoped
// calls from the dashboard app.
type signedAccountRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
}

// canonicalPayload rebuilds the exact byte sequence the dashboard app signs:
// the user/account pair in fixed field order, independent of how the request
// body itself was serialized.
func canonicalPayload(userID, accountID string) []byte {
	return []byte(fmt.Sprintf(`{"user_id":"%s","account_id":"%s"}`, userID, accountID))
}

func signingSecret() string {
	return env.GetEnv("STRIPE_SIGNING_SECRET", "")
}

func verifySigned(c *fiber.Ctx, userID, accountID string) bool {
	return stripesig.Verify(c.Get("Stripe-Signature"), canonicalPayload(userID, accountID), signingSecret())
}

// verifySignedStrict additionally enforces signature freshness; used for
// the OAuth-start endpoint to prevent replayed consent URLs.
func verifySignedStrict(c *fiber.Ctx, userID, accountID string) bool {
	tolerance := time.Duration(env.GetEnvInt("OAUTH_SIGNATURE_TOLERANCE_SECONDS", 300)) * time.Second
	return stripesig.VerifyWithTolerance(c.Get("Stripe-Signature"), canonicalPayload(userID, accountID), signingSecret(), tolerance)
}

func parseSignedBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return err
	}
	return validate.Struct(out)
}
