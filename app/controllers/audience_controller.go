package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/HendrikVoss/ChimpRelay/internal/pkg/audiences"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/cache"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/database"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const audienceCacheTTL = 60 * time.Second

type selectAudienceRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	AccountID  string `json:"account_id" validate:"required"`
	AudienceID string `json:"audience_id" validate:"required"`
}

// HandleMailchimpAudiences proxies the linked account's audiences from
// Mailchimp, with a short-lived cache so dashboard refreshes don't hammer
// the upstream API.
func HandleMailchimpAudiences(c *fiber.Ctx) error {
	var req signedAccountRequest
	if err := parseSignedBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and account_id are required"})
	}
	if !verifySigned(c, req.UserID, req.AccountID) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	cacheKey := "mailchimp:audiences:" + req.AccountID
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	svc := audiences.NewServiceFromDB(database.GetDB())
	list, err := svc.List(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not linked to Mailchimp"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Mailchimp request failed"})
	}

	body, err := json.Marshal(fiber.Map{"audiences": list})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "response encoding failed"})
	}
	_ = cache.Set(cacheKey, string(body), audienceCacheTTL)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// HandleMailchimpAudienceSelect stores the merchant's audience choice.
func HandleMailchimpAudienceSelect(c *fiber.Ctx) error {
	var req selectAudienceRequest
	if err := parseSignedBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "audience_id is required"})
	}
	if !verifySigned(c, req.UserID, req.AccountID) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	svc := audiences.NewServiceFromDB(database.GetDB())
	if err := svc.Select(c.Context(), req.AccountID, req.AudienceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not linked to Mailchimp"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "audience selection failed"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Audience selected successfully"})
}

// HandleMailchimpAudienceSelected returns the currently selected audience
// id, empty string when the merchant has not chosen one yet.
func HandleMailchimpAudienceSelected(c *fiber.Ctx) error {
	var req signedAccountRequest
	if err := parseSignedBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and account_id are required"})
	}
	if !verifySigned(c, req.UserID, req.AccountID) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	svc := audiences.NewServiceFromDB(database.GetDB())
	selected, err := svc.Selected(c.Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "account not linked to Mailchimp"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	return c.JSON(fiber.Map{"selected_audience_id": selected})
}
