package models

import "time"

// StripeAccount stores a merchant's connected Stripe account as registered
// by the embedded dashboard app. Rows are created once and never mutated.
type StripeAccount struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StripeUserID    string    `gorm:"type:varchar(191);not null;index:ux_stripe_accounts_user_account,unique,priority:1" json:"stripe_user_id"`
	StripeAccountID string    `gorm:"type:varchar(191);not null;index:ux_stripe_accounts_user_account,unique,priority:2;uniqueIndex:ux_stripe_accounts_account" json:"stripe_account_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
