package repository

import (
	"github.com/HendrikVoss/ChimpRelay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mailchimpCredentialRepository struct {
	db *gorm.DB
}

// NewMailchimpCredentialRepository creates a Mailchimp credential repository
// backed by GORM.
func NewMailchimpCredentialRepository(db *gorm.DB) MailchimpCredentialRepository {
	return &mailchimpCredentialRepository{db: db}
}

func (r *mailchimpCredentialRepository) Upsert(cred *models.MailchimpCredential) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_account_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"server_prefix",
			"updated_at",
		}),
	}).Create(cred).Error; err != nil {
		return err
	}

	// Ensure ID and selected audience are populated after upsert.
	return r.db.Where("stripe_account_id = ?", cred.StripeAccountID).First(cred).Error
}

func (r *mailchimpCredentialRepository) GetByStripeAccountID(stripeAccountID string) (*models.MailchimpCredential, error) {
	var cred models.MailchimpCredential
	err := r.db.Where("stripe_account_id = ?", stripeAccountID).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *mailchimpCredentialRepository) Save(cred *models.MailchimpCredential) error {
	return r.db.Save(cred).Error
}
