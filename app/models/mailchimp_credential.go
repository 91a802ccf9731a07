package models

import "time"

// MailchimpCredential stores the OAuth credential linking one Stripe
// connected account to Mailchimp. A missing row for an account means
// "not linked". Re-authorization replaces token and prefix (last write
// wins); SelectedAudienceID is set independently once the merchant picks
// an audience.
type MailchimpCredential struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	StripeAccountID    string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_mailchimp_credentials_account" json:"stripe_account_id"`
	AccessToken        string    `gorm:"type:text;not null" json:"-"`
	ServerPrefix       string    `gorm:"type:varchar(32);not null" json:"server_prefix"`
	SelectedAudienceID string    `gorm:"type:varchar(64);not null;default:''" json:"selected_audience_id"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
