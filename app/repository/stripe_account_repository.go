package repository

import (
	"errors"

	"github.com/HendrikVoss/ChimpRelay/app/models"
	"gorm.io/gorm"
)

type stripeAccountRepository struct {
	db *gorm.DB
}

// NewStripeAccountRepository creates a Stripe account repository backed by GORM.
func NewStripeAccountRepository(db *gorm.DB) StripeAccountRepository {
	return &stripeAccountRepository{db: db}
}

func (r *stripeAccountRepository) Create(account *models.StripeAccount) error {
	return r.db.Create(account).Error
}

func (r *stripeAccountRepository) GetByUserAndAccountID(stripeUserID, stripeAccountID string) (*models.StripeAccount, error) {
	var account models.StripeAccount
	err := r.db.Where("stripe_user_id = ? AND stripe_account_id = ?", stripeUserID, stripeAccountID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *stripeAccountRepository) ExistsByStripeAccountID(stripeAccountID string) (bool, error) {
	var account models.StripeAccount
	err := r.db.Where("stripe_account_id = ?", stripeAccountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
