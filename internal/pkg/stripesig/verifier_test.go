package stripesig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signHeader(t *testing.T, payload []byte, secret string, ts int64) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return "t=" + strconv.FormatInt(ts, 10) + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"user_id":"u_1","account_id":"acct_1"}`)
	secret := "whsec_test"
	header := signHeader(t, payload, secret, time.Now().Unix())

	if !Verify(header, payload, secret) {
		t.Fatalf("expected valid signature to verify")
	}
	if Verify(header, []byte(`{"user_id":"u_1","account_id":"acct_2"}`), secret) {
		t.Fatalf("expected mutated payload to fail")
	}
	if Verify(header, payload, "whsec_other") {
		t.Fatalf("expected wrong secret to fail")
	}
	mutated := []byte(header)
	if mutated[len(mutated)-1] == '0' {
		mutated[len(mutated)-1] = '1'
	} else {
		mutated[len(mutated)-1] = '0'
	}
	if Verify(string(mutated), payload, secret) {
		t.Fatalf("expected mutated signature to fail")
	}
}

func TestVerify_MissingFields(t *testing.T) {
	payload := []byte("{}")
	secret := "whsec_test"

	if Verify("", payload, secret) {
		t.Fatalf("expected empty header to fail")
	}
	if Verify("t=1700000000", payload, secret) {
		t.Fatalf("expected header without v1 to fail")
	}
	if Verify("v1=deadbeef", payload, secret) {
		t.Fatalf("expected header without t to fail")
	}
	if Verify("t=1700000000,v1=not-hex", payload, secret) {
		t.Fatalf("expected non-hex signature to fail")
	}
}

func TestVerify_NoFreshnessCheck(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	secret := "whsec_test"
	old := time.Now().Add(-48 * time.Hour).Unix()

	// The basic variant accepts stale timestamps so redelivered events
	// keep verifying.
	if !Verify(signHeader(t, payload, secret, old), payload, secret) {
		t.Fatalf("expected old but valid signature to verify")
	}
}

func TestVerifyWithTolerance(t *testing.T) {
	payload := []byte(`{"user_id":"u_1","account_id":"acct_1"}`)
	secret := "whsec_test"

	fresh := signHeader(t, payload, secret, time.Now().Unix())
	if !VerifyWithTolerance(fresh, payload, secret, 5*time.Minute) {
		t.Fatalf("expected fresh signature to verify")
	}

	stale := signHeader(t, payload, secret, time.Now().Add(-10*time.Minute).Unix())
	if VerifyWithTolerance(stale, payload, secret, 5*time.Minute) {
		t.Fatalf("expected stale signature to be rejected")
	}

	future := signHeader(t, payload, secret, time.Now().Add(10*time.Minute).Unix())
	if VerifyWithTolerance(future, payload, secret, 5*time.Minute) {
		t.Fatalf("expected far-future signature to be rejected")
	}

	// Non-positive tolerance falls back to the default window.
	if !VerifyWithTolerance(fresh, payload, secret, 0) {
		t.Fatalf("expected default tolerance to accept a fresh signature")
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	payload := []byte("{}")
	header := signHeader(t, payload, "whsec_test", time.Now().Unix())
	if Verify(header, payload, "") {
		t.Fatalf("expected empty secret to fail closed")
	}
}
