package linker

import (
	"context"
	"log"
	"strings"

	"github.com/HendrikVoss/ChimpRelay/app/models"
	"github.com/HendrikVoss/ChimpRelay/app/repository"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/mailchimp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// State is the position of one linking attempt in the OAuth flow.
type State string

const (
	StateInitiated        State = "initiated"
	StateCodeExchanged    State = "code_exchanged"
	StateMetadataResolved State = "metadata_resolved"
	StateLinked           State = "linked"
	StateFailed           State = "failed"
)

// Result is the terminal outcome of a linking attempt. Reason is only set
// for failed attempts and is safe to surface to the user-agent; upstream
// error bodies stay in the logs.
type Result struct {
	State     State
	Reason    string
	AttemptID string
}

// Linked reports whether the attempt completed the full flow.
func (r Result) Linked() bool {
	return r.State == StateLinked
}

// Service drives the Mailchimp authorization-code exchange for one Stripe
// connected account and persists the resulting credential.
type Service struct {
	accounts    repository.StripeAccountRepository
	credentials repository.MailchimpCredentialRepository
	client      *mailchimp.Client
}

func NewService(accounts repository.StripeAccountRepository, credentials repository.MailchimpCredentialRepository, client *mailchimp.Client) *Service {
	return &Service{accounts: accounts, credentials: credentials, client: client}
}

// NewServiceFromDB creates a linker service from a GORM DB handle using the
// environment-configured Mailchimp client.
func NewServiceFromDB(db *gorm.DB) *Service {
	repos := repository.NewRepositories(db)
	return NewService(repos.Accounts, repos.Credentials, mailchimp.NewClientFromEnv())
}

// AuthorizeURL builds the consent screen URL for the given state. The
// caller has already authenticated the request; state must equal the
// Stripe account id so the callback can attribute the grant.
func (s *Service) AuthorizeURL(state string) (string, error) {
	return s.client.AuthorizeURLWithState(state)
}

// CompleteLink runs the callback half of the flow:
// Initiated -> CodeExchanged -> MetadataResolved -> Linked, with a terminal
// Failed state carrying an opaque reason. Each hop is sequential; a crash
// after the token exchange but before persistence simply means the merchant
// redoes the consent flow.
func (s *Service) CompleteLink(ctx context.Context, code, state, authErr string) Result {
	res := Result{State: StateInitiated, AttemptID: uuid.NewString()}

	if strings.TrimSpace(authErr) != "" {
		log.Printf("[linker %s] consent denied: %s", res.AttemptID, authErr)
		return res.fail("OAuth authorization failed: " + authErr)
	}
	if strings.TrimSpace(code) == "" {
		return res.fail("Missing authorization code")
	}
	if strings.TrimSpace(state) == "" {
		return res.fail("Missing state parameter")
	}

	accountID := strings.TrimSpace(state)
	exists, err := s.accounts.ExistsByStripeAccountID(accountID)
	if err != nil {
		log.Printf("[linker %s] account lookup failed: %v", res.AttemptID, err)
		return res.fail("Connection failed")
	}
	if !exists {
		log.Printf("[linker %s] unknown stripe account: %s", res.AttemptID, accountID)
		return res.fail("Invalid account")
	}

	token, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		log.Printf("[linker %s] token exchange failed: %v", res.AttemptID, err)
		return res.fail("Token exchange failed")
	}
	res.State = StateCodeExchanged

	prefix, err := s.client.Metadata(ctx, token.AccessToken)
	if err != nil {
		log.Printf("[linker %s] metadata resolution failed: %v", res.AttemptID, err)
		return res.fail("Connection failed")
	}
	res.State = StateMetadataResolved

	cred := &models.MailchimpCredential{
		StripeAccountID: accountID,
		AccessToken:     token.AccessToken,
		ServerPrefix:    prefix,
	}
	if err := s.credentials.Upsert(cred); err != nil {
		log.Printf("[linker %s] credential upsert failed: %v", res.AttemptID, err)
		return res.fail("Connection failed")
	}

	res.State = StateLinked
	log.Printf("[linker %s] account %s linked to mailchimp (%s)", res.AttemptID, accountID, prefix)
	return res
}

func (r Result) fail(reason string) Result {
	r.State = StateFailed
	r.Reason = reason
	return r
}
