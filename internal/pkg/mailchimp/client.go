package mailchimp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HendrikVoss/ChimpRelay/internal/pkg/env"
)

const (
	defaultAuthorizeURL = "https://login.mailchimp.com/oauth2/authorize"
	defaultTokenURL     = "https://login.mailchimp.com/oauth2/token"
	defaultMetadataURL  = "https://login.mailchimp.com/oauth2/metadata"

	// Regional API host; the %s is the server prefix ("dc") from metadata.
	defaultAPIHostTemplate = "https://%s.api.mailchimp.com/3.0"
)

type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthorizeURL    string
	TokenURL        string
	MetadataURL     string
	APIHostTemplate string

	HTTPClient *http.Client
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

func NewClientFromEnv() *Client {
	return &Client{
		ClientID:        strings.TrimSpace(env.GetEnv("MAILCHIMP_CLIENT_ID", "")),
		ClientSecret:    strings.TrimSpace(env.GetEnv("MAILCHIMP_CLIENT_SECRET", "")),
		RedirectURI:     strings.TrimSpace(env.GetEnv("MAILCHIMP_REDIRECT_URI", "")),
		AuthorizeURL:    strings.TrimSpace(env.GetEnv("MAILCHIMP_AUTHORIZE_URL", defaultAuthorizeURL)),
		TokenURL:        strings.TrimSpace(env.GetEnv("MAILCHIMP_TOKEN_URL", defaultTokenURL)),
		MetadataURL:     strings.TrimSpace(env.GetEnv("MAILCHIMP_METADATA_URL", defaultMetadataURL)),
		APIHostTemplate: strings.TrimSpace(env.GetEnv("MAILCHIMP_API_HOST_TEMPLATE", defaultAPIHostTemplate)),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthorizeURLWithState builds the consent screen URL. The state carries
// the Stripe account id so the callback can attribute the grant.
func (c *Client) AuthorizeURLWithState(state string) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return "", errors.New("MAILCHIMP_CLIENT_ID is not configured")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return "", errors.New("MAILCHIMP_REDIRECT_URI is not configured")
	}
	u, err := url.Parse(c.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid MAILCHIMP_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, errors.New("MAILCHIMP_CLIENT_ID/MAILCHIMP_CLIENT_SECRET are not configured")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return nil, errors.New("MAILCHIMP_REDIRECT_URI is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("redirect_uri", c.RedirectURI)
	form.Set("code", strings.TrimSpace(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mailchimp token exchange failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out TokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("mailchimp token exchange returned empty access_token")
	}
	return &out, nil
}

// Metadata resolves the server prefix ("dc") that routes API calls to the
// account's regional shard.
func (c *Client) Metadata(ctx context.Context, accessToken string) (string, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return "", errors.New("access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MetadataURL, nil)
	if err != nil {
		return "", err
	}
	// Mailchimp's OAuth endpoints use the "OAuth" authorization scheme.
	req.Header.Set("Authorization", "OAuth "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mailchimp metadata request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		DC string `json:"dc"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.DC) == "" {
		return "", errors.New("mailchimp metadata response missing dc")
	}
	return strings.TrimSpace(out.DC), nil
}

func (c *Client) apiHost(serverPrefix string) string {
	return fmt.Sprintf(c.APIHostTemplate, serverPrefix)
}
