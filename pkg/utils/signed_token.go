package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidSignedToken = errors.New("invalid signed token")

// TokenSigner wraps a raw provider id in an HMAC-signed token so the browser
// never holds the bare id. This is signing, not encryption: the id is visible
// inside the token but cannot be forged or swapped.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret []byte) *TokenSigner {
	return &TokenSigner{secret: secret}
}

func (s *TokenSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *TokenSigner) Sign(id string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(id))
	return payload + "." + s.sign(payload)
}

// Verify returns the wrapped id if the signature matches.
func (s *TokenSigner) Verify(token string) (string, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidSignedToken
	}
	expected := s.sign(payload)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidSignedToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidSignedToken
	}
	return string(raw), nil
}
