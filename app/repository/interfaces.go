package repository

import (
	"github.com/HendrikVoss/ChimpRelay/app/models"
)

// StripeAccountRepository defines the database operations for registered
// Stripe connected accounts.
type StripeAccountRepository interface {
	Create(account *models.StripeAccount) error
	GetByUserAndAccountID(stripeUserID, stripeAccountID string) (*models.StripeAccount, error)
	ExistsByStripeAccountID(stripeAccountID string) (bool, error)
}

// MailchimpCredentialRepository defines the database operations for the
// Mailchimp credential linked to a Stripe account.
type MailchimpCredentialRepository interface {
	// Upsert creates the credential row for its account or replaces the
	// token/prefix of an existing one (re-authorization).
	Upsert(cred *models.MailchimpCredential) error
	GetByStripeAccountID(stripeAccountID string) (*models.MailchimpCredential, error)
	Save(cred *models.MailchimpCredential) error
}
