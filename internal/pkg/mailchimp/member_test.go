package mailchimp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HendrikVoss/ChimpRelay/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberHash(t *testing.T) {
	// md5("a@example.com"); input is lowercased before hashing.
	const want = "b418773a2c51fb9777a1648346fa7394"
	hash := SubscriberHash("A@Example.com")
	assert.Equal(t, want, hash)
	assert.Len(t, hash, 32)
	assert.Equal(t, hash, SubscriberHash("a@example.com"))
}

func TestSplitDisplayName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Prince", "Prince", ""},
		{"  Mary  Jane   Watson ", "Mary", "Jane Watson"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitDisplayName(tt.in)
		assert.Equal(t, tt.first, first, "first name for %q", tt.in)
		assert.Equal(t, tt.last, last, "last name for %q", tt.in)
	}
}

func testClient(ts *httptest.Server) *Client {
	return &Client{
		ClientID:        "cid",
		ClientSecret:    "csecret",
		RedirectURI:     "https://relay.example/api/oauth/mailchimp/callback",
		AuthorizeURL:    ts.URL + "/oauth2/authorize",
		TokenURL:        ts.URL + "/oauth2/token",
		MetadataURL:     ts.URL + "/oauth2/metadata",
		APIHostTemplate: ts.URL + "/%s",
		HTTPClient:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestUpsertMember(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cred := &models.MailchimpCredential{
		StripeAccountID:    "acct_1",
		AccessToken:        "tok_1",
		ServerPrefix:       "us21",
		SelectedAudienceID: "aud_1",
	}

	err := testClient(ts).UpsertMember(context.Background(), cred, "A@Example.com", "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "/us21/lists/aud_1/members/b418773a2c51fb9777a1648346fa7394", gotPath)
	assert.Equal(t, "OAuth tok_1", gotAuth)
	assert.Equal(t, "A@Example.com", gotBody["email_address"])
	assert.Equal(t, "subscribed", gotBody["status"])
	assert.Equal(t, []interface{}{"stripe"}, gotBody["tags"])
	assert.Equal(t, map[string]interface{}{"FNAME": "Ada", "LNAME": "Lovelace"}, gotBody["merge_fields"])
}

func TestUpsertMember_SingleTokenName(t *testing.T) {
	var gotBody map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cred := &models.MailchimpCredential{ServerPrefix: "us21", SelectedAudienceID: "aud_1", AccessToken: "tok_1"}
	require.NoError(t, testClient(ts).UpsertMember(context.Background(), cred, "p@example.com", "Prince"))

	assert.Equal(t, map[string]interface{}{"FNAME": "Prince"}, gotBody["merge_fields"])
}

func TestUpsertMember_NoDisplayName(t *testing.T) {
	var gotBody map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cred := &models.MailchimpCredential{ServerPrefix: "us21", SelectedAudienceID: "aud_1", AccessToken: "tok_1"}
	require.NoError(t, testClient(ts).UpsertMember(context.Background(), cred, "p@example.com", "  "))

	_, present := gotBody["merge_fields"]
	assert.False(t, present, "merge_fields should be omitted without a display name")
}

func TestUpsertMember_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Invalid Resource"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	cred := &models.MailchimpCredential{ServerPrefix: "us21", SelectedAudienceID: "aud_1", AccessToken: "tok_1"}
	err := testClient(ts).UpsertMember(context.Background(), cred, "p@example.com", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}
