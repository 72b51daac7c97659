// Package unsubscribe derives the bearer capability embedded in email
// unsubscribe links. A token is a keyed hash of the normalized email, so
// anyone holding the secret can recompute it and nothing is stored.
package unsubscribe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"bogoninja/internal/domain/registrant"
)

// ErrEmptySecret is returned when a Signer is built without a key.
var ErrEmptySecret = errors.New("unsubscribe secret cannot be empty")

// Signer generates and verifies unsubscribe tokens.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer keyed by secret.
// PRE: secret is non-empty
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: secret}, nil
}

// Generate returns hex(HMAC-SHA256(secret, normalized email)).
func (s *Signer) Generate(email string) string {
	return hex.EncodeToString(s.mac(email))
}

// Verify reports whether token is the capability for email.
// Malformed hex and length mismatches return false.
func (s *Signer) Verify(email, token string) bool {
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(email))
}

// URL builds the unsubscribe link for email under baseURL.
func (s *Signer) URL(email, baseURL string) string {
	normalized := registrant.NormalizeEmail(email)
	return strings.TrimRight(baseURL, "/") +
		"/unsubscribe?email=" + url.QueryEscape(normalized) +
		"&token=" + s.Generate(normalized)
}

func (s *Signer) mac(email string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(registrant.NormalizeEmail(email)))
	return h.Sum(nil)
}
