package mailchimp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/HendrikVoss/ChimpRelay/app/models"
)

// Audience is one mailing list the merchant can relay customers into.
type Audience struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListAudiences fetches the audiences visible to the credential.
func (c *Client) ListAudiences(ctx context.Context, cred *models.MailchimpCredential) ([]Audience, error) {
	u := c.apiHost(cred.ServerPrefix) + "/lists"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mailchimp lists request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		Lists []Audience `json:"lists"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Lists, nil
}
