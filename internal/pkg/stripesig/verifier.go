package stripesig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the freshness window applied by VerifyWithTolerance
// when the caller passes a non-positive tolerance.
const DefaultTolerance = 5 * time.Minute

// Verify checks a Stripe-style signature header of the form
// "t=<unix>,v1=<hex>" against the raw payload. The signed message is
// "<t>.<payload>", MACed with HMAC-SHA256 under the shared secret.
// It fails closed when either field is absent and compares signatures in
// constant time. No freshness check is applied here; Stripe redelivers
// old events with their original timestamps.
func Verify(signatureHeader string, payload []byte, secret string) bool {
	timestamp, signature, ok := parseHeader(signatureHeader)
	if !ok {
		return false
	}
	return signatureMatches(timestamp, payload, secret, signature)
}

// VerifyWithTolerance is the strict variant used for the OAuth-start
// endpoint: it additionally rejects signatures whose timestamp is outside
// the tolerance window, preventing replay of captured start requests.
func VerifyWithTolerance(signatureHeader string, payload []byte, secret string, tolerance time.Duration) bool {
	timestamp, signature, ok := parseHeader(signatureHeader)
	if !ok {
		return false
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(seconds, 0))
	if age > tolerance || age < -tolerance {
		return false
	}
	return signatureMatches(timestamp, payload, secret, signature)
}

func parseHeader(header string) (timestamp, signature string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if v, found := strings.CutPrefix(part, "t="); found {
			timestamp = v
		} else if v, found := strings.CutPrefix(part, "v1="); found {
			signature = v
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", false
	}
	return timestamp, signature, true
}

func signatureMatches(timestamp string, payload []byte, secret, signature string) bool {
	if strings.TrimSpace(secret) == "" {
		return false
	}
	expected, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}
