package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/HendrikVoss/ChimpRelay/app/models"
)

// SubscriberHash derives Mailchimp's idempotent member identifier: the MD5
// digest of the lowercased email, hex-encoded. Not a security hash.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// SplitDisplayName splits on the first whitespace run: the first token is
// the first name, the remainder the last name. Single-token names yield an
// empty last name.
func SplitDisplayName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	first = fields[0]
	last = strings.Join(fields[1:], " ")
	return first, last
}

type memberBody struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	Tags         []string          `json:"tags"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

// UpsertMember creates or replaces a member of the credential's selected
// audience. The subscriber hash keys the PUT, so redelivered events for the
// same customer converge on one member.
func (c *Client) UpsertMember(ctx context.Context, cred *models.MailchimpCredential, email, displayName string) error {
	body := memberBody{
		EmailAddress: email,
		Status:       "subscribed",
		Tags:         []string{"stripe"},
	}
	if strings.TrimSpace(displayName) != "" {
		first, last := SplitDisplayName(displayName)
		body.MergeFields = map[string]string{"FNAME": first}
		if last != "" {
			body.MergeFields["LNAME"] = last
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/lists/%s/members/%s",
		c.apiHost(cred.ServerPrefix), cred.SelectedAudienceID, SubscriberHash(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "OAuth "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailchimp member upsert failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}
