package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances.
type Repositories struct {
	Accounts    StripeAccountRepository
	Credentials MailchimpCredentialRepository
}

// NewRepositories creates all repositories from a single DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Accounts:    NewStripeAccountRepository(db),
		Credentials: NewMailchimpCredentialRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories.
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetStripeAccountRepository returns the Stripe account repository instance.
func (f *Factory) GetStripeAccountRepository() StripeAccountRepository {
	return f.GetRepositories().Accounts
}

// GetMailchimpCredentialRepository returns the credential repository instance.
func (f *Factory) GetMailchimpCredentialRepository() MailchimpCredentialRepository {
	return f.GetRepositories().Credentials
}
