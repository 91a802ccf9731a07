package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HendrikVoss/ChimpRelay/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPayload(t *testing.T) {
	// Field order and quoting must match what the dashboard app signs.
	assert.Equal(t,
		`{"user_id":"u_1","account_id":"acct_1"}`,
		string(canonicalPayload("u_1", "acct_1")))
}

func signedHeader(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySigned(t *testing.T) {
	env.Env = map[string]string{"STRIPE_SIGNING_SECRET": "whsec_test"}
	t.Cleanup(func() { env.Env = nil })

	app := fiber.New()
	app.Post("/t", func(c *fiber.Ctx) error {
		if !verifySigned(c, "u_1", "acct_1") {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	header := signedHeader(canonicalPayload("u_1", "acct_1"), "whsec_test", time.Now().Unix())

	req := httptest.NewRequest("POST", "/t", strings.NewReader(`{"user_id":"u_1","account_id":"acct_1"}`))
	req.Header.Set("Stripe-Signature", header)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/t", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestVerifySignedStrict_RejectsStaleSignatures(t *testing.T) {
	env.Env = map[string]string{
		"STRIPE_SIGNING_SECRET":             "whsec_test",
		"OAUTH_SIGNATURE_TOLERANCE_SECONDS": "300",
	}
	t.Cleanup(func() { env.Env = nil })

	app := fiber.New()
	app.Post("/t", func(c *fiber.Ctx) error {
		if !verifySignedStrict(c, "u_1", "acct_1") {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	payload := canonicalPayload("u_1", "acct_1")

	req := httptest.NewRequest("POST", "/t", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signedHeader(payload, "whsec_test", time.Now().Unix()))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/t", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signedHeader(payload, "whsec_test", time.Now().Add(-time.Hour).Unix()))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
