package audiences

import (
	"context"
	"strings"

	"github.com/HendrikVoss/ChimpRelay/app/repository"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/mailchimp"
	"gorm.io/gorm"
)

// Service exposes the audience operations a merchant drives from the
// Stripe dashboard: listing Mailchimp audiences, picking one, and reading
// the current pick. All operations require an existing credential;
// gorm.ErrRecordNotFound is passed through for unlinked accounts.
type Service struct {
	credentials repository.MailchimpCredentialRepository
	client      *mailchimp.Client
}

func NewService(credentials repository.MailchimpCredentialRepository, client *mailchimp.Client) *Service {
	return &Service{credentials: credentials, client: client}
}

// NewServiceFromDB creates an audience service from a GORM DB handle using
// the environment-configured Mailchimp client.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewMailchimpCredentialRepository(db), mailchimp.NewClientFromEnv())
}

// List proxies the linked account's audiences live from Mailchimp.
func (s *Service) List(ctx context.Context, stripeAccountID string) ([]mailchimp.Audience, error) {
	cred, err := s.credentials.GetByStripeAccountID(stripeAccountID)
	if err != nil {
		return nil, err
	}
	return s.client.ListAudiences(ctx, cred)
}

// Select stores the merchant's audience choice on the credential.
func (s *Service) Select(ctx context.Context, stripeAccountID, audienceID string) error {
	_ = ctx
	cred, err := s.credentials.GetByStripeAccountID(stripeAccountID)
	if err != nil {
		return err
	}
	cred.SelectedAudienceID = strings.TrimSpace(audienceID)
	return s.credentials.Save(cred)
}

// Selected returns the currently chosen audience id, "" when unset.
func (s *Service) Selected(ctx context.Context, stripeAccountID string) (string, error) {
	_ = ctx
	cred, err := s.credentials.GetByStripeAccountID(stripeAccountID)
	if err != nil {
		return "", err
	}
	return cred.SelectedAudienceID, nil
}
