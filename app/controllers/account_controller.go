package controllers

import (
	"errors"

	"github.com/HendrikVoss/ChimpRelay/app/models"
	"github.com/HendrikVoss/ChimpRelay/app/repository"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/database"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type createAccountResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	AccountID string `json:"accountId,omitempty"`
}

// HandleStripeAccountCreate registers a Stripe connected account on first
// contact from the dashboard app. Existing rows are never mutated.
func HandleStripeAccountCreate(c *fiber.Ctx) error {
	var req signedAccountRequest
	if err := parseSignedBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(createAccountResponse{Success: false, Message: "user_id and account_id are required"})
	}
	if !verifySigned(c, req.UserID, req.AccountID) {
		return c.Status(fiber.StatusBadRequest).JSON(createAccountResponse{Success: false, Message: "Invalid Stripe signature"})
	}

	repo := repository.NewStripeAccountRepository(database.GetDB())
	existing, err := repo.GetByUserAndAccountID(req.UserID, req.AccountID)
	if err == nil {
		return c.JSON(createAccountResponse{Success: true, Message: "User already exists", AccountID: existing.StripeAccountID})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(createAccountResponse{Success: false, Message: "Account lookup failed"})
	}

	account := &models.StripeAccount{StripeUserID: req.UserID, StripeAccountID: req.AccountID}
	if err := repo.Create(account); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(createAccountResponse{Success: false, Message: "Account could not be created"})
	}
	return c.JSON(createAccountResponse{Success: true, Message: "User created successfully", AccountID: account.StripeAccountID})
}

// HandleStripeAccountMailchimpCheck reports whether the account has
// completed the Mailchimp linking flow.
func HandleStripeAccountMailchimpCheck(c *fiber.Ctx) error {
	var req signedAccountRequest
	if err := parseSignedBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"exists": false})
	}
	if !verifySigned(c, req.UserID, req.AccountID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"exists": false})
	}

	repo := repository.NewMailchimpCredentialRepository(database.GetDB())
	if _, err := repo.GetByStripeAccountID(req.AccountID); err != nil {
		return c.JSON(fiber.Map{"exists": false})
	}
	return c.JSON(fiber.Map{"exists": true})
}
