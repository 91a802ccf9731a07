package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/HendrikVoss/ChimpRelay/app/models"
	"github.com/HendrikVoss/ChimpRelay/app/repository"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/env"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/mailchimp"
	"github.com/HendrikVoss/ChimpRelay/internal/pkg/stripesig"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Errors returned when a webhook delivery cannot be acknowledged. Stripe
// retries deliveries that do not get a 2xx, so these are the only paths
// that signal failure to the caller.
var (
	ErrMissingAuth  = errors.New("webhook endpoint secret or signature header missing")
	ErrBadSignature = errors.New("invalid webhook signature")
	ErrBadPayload   = errors.New("invalid webhook payload")
)

// MemberUpserter adds a customer to the selected audience of a credential.
type MemberUpserter interface {
	UpsertMember(ctx context.Context, cred *models.MailchimpCredential, email, displayName string) error
}

// Dispatcher authenticates Stripe webhook deliveries and routes qualifying
// events into the linked Mailchimp audience. Everything that verifies and
// parses is acknowledged; only authentication and parse failures propagate.
type Dispatcher struct {
	credentials    repository.MailchimpCredentialRepository
	sync           MemberUpserter
	endpointSecret string

	// testAccountOverride substitutes events arriving with an empty
	// account field; empty means such events are dropped.
	testAccountOverride string
}

func New(credentials repository.MailchimpCredentialRepository, sync MemberUpserter, endpointSecret, testAccountOverride string) *Dispatcher {
	return &Dispatcher{
		credentials:         credentials,
		sync:                sync,
		endpointSecret:      strings.TrimSpace(endpointSecret),
		testAccountOverride: strings.TrimSpace(testAccountOverride),
	}
}

// NewFromDB creates a dispatcher from a GORM DB handle with settings and
// the Mailchimp client taken from the environment.
func NewFromDB(db *gorm.DB) *Dispatcher {
	return New(
		repository.NewMailchimpCredentialRepository(db),
		mailchimp.NewClientFromEnv(),
		env.GetEnv("STRIPE_ENDPOINT_SECRET", ""),
		env.GetEnv("TEST_ACCOUNT_OVERRIDE", ""),
	)
}

type eventEnvelope struct {
	Type    string `json:"type"`
	Account string `json:"account"`
	Data    struct {
		Object struct {
			CustomerDetails struct {
				Email string `json:"email"`
				Name  string `json:"name"`
			} `json:"customer_details"`
		} `json:"object"`
	} `json:"data"`
}

// Handle verifies, parses, and dispatches one webhook delivery. A nil
// return means the delivery is acknowledged, whether or not it produced a
// member upsert; sync failures are logged and still acknowledged since
// redelivery is the sender's responsibility.
func (d *Dispatcher) Handle(ctx context.Context, rawBody []byte, signatureHeader string) error {
	// No unauthenticated fallback: absent material is a hard reject.
	if d.endpointSecret == "" || strings.TrimSpace(signatureHeader) == "" {
		return ErrMissingAuth
	}
	if !stripesig.Verify(signatureHeader, rawBody, d.endpointSecret) {
		return ErrBadSignature
	}

	var ev eventEnvelope
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if strings.TrimSpace(ev.Type) == "" {
		return fmt.Errorf("%w: missing event type", ErrBadPayload)
	}

	delivery := uuid.NewString()

	account := strings.TrimSpace(ev.Account)
	if account == "" {
		if d.testAccountOverride == "" {
			log.Printf("[webhook %s] event %s without account, dropping", delivery, ev.Type)
			return nil
		}
		log.Printf("[webhook %s] event %s without account, using test override", delivery, ev.Type)
		account = d.testAccountOverride
	}

	cred, err := d.credentials.GetByStripeAccountID(account)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[webhook %s] account %s not linked to mailchimp", delivery, account)
		} else {
			log.Printf("[webhook %s] credential lookup for %s failed: %v", delivery, account, err)
		}
		return nil
	}
	if cred.SelectedAudienceID == "" {
		log.Printf("[webhook %s] account %s has no audience selected", delivery, account)
		return nil
	}

	switch ev.Type {
	case "checkout.session.completed":
		email := strings.TrimSpace(ev.Data.Object.CustomerDetails.Email)
		if email == "" {
			log.Printf("[webhook %s] checkout event for %s without customer email", delivery, account)
			return nil
		}
		name := ev.Data.Object.CustomerDetails.Name
		if err := d.sync.UpsertMember(ctx, cred, email, name); err != nil {
			log.Printf("[webhook %s] member upsert for %s failed: %v", delivery, account, err)
			return nil
		}
		log.Printf("[webhook %s] customer %s added to audience %s", delivery, email, cred.SelectedAudienceID)
	default:
		// Forward-compatible no-op: unknown event types are never errors.
		log.Printf("[webhook %s] unhandled event type: %s", delivery, ev.Type)
	}
	return nil
}
