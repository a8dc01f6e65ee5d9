// Package signer produces authenticated request parameters for the
// exchange's HMAC-SHA256 scheme.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// ErrMissingCredential is returned when the signer has no usable API key
// or secret. It is detected locally, before any network call.
var ErrMissingCredential = errors.New("api key or secret not configured")

// safetyBiasMs keeps stamped timestamps slightly behind the server clock.
// The exchange rejects requests more than 1s ahead of its clock but accepts
// requests up to recvWindow behind it.
const safetyBiasMs = 1000

// Signer stamps and signs request parameters. Identical parameter sets
// signed with an identical timestamp always produce identical signatures;
// the stamped timestamp itself is strictly increasing per signer so a
// signed query is never reused verbatim.
type Signer struct {
	apiKey     string
	secret     string
	recvWindow time.Duration

	mu     sync.Mutex
	offset int64 // server minus local clock, milliseconds
	lastTS int64
}

func New(apiKey, secret string, recvWindow time.Duration) *Signer {
	if recvWindow <= 0 {
		recvWindow = 60 * time.Second
	}
	return &Signer{
		apiKey:     apiKey,
		secret:     secret,
		recvWindow: recvWindow,
	}
}

// Ready reports whether the signer holds a usable credential.
func (s *Signer) Ready() error {
	if s.apiKey == "" || s.secret == "" {
		return ErrMissingCredential
	}
	return nil
}

func (s *Signer) APIKey() string {
	return s.apiKey
}

// SetOffset records the server-minus-local clock skew observed from the
// exchange's time endpoint.
func (s *Signer) SetOffset(offset time.Duration) {
	s.mu.Lock()
	s.offset = offset.Milliseconds()
	s.mu.Unlock()
}

// Timestamp returns a skew-adjusted epoch-millis value that is strictly
// increasing across calls on the same signer.
func (s *Signer) Timestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := time.Now().UnixMilli() + s.offset - safetyBiasMs
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts
	return ts
}

// Sign returns a copy of params with timestamp, recvWindow, and signature
// appended. The input values are never mutated and the secret never
// appears in any output or error.
func (s *Signer) Sign(params url.Values) (url.Values, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	signed := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			signed.Add(k, v)
		}
	}
	signed.Set("timestamp", strconv.FormatInt(s.Timestamp(), 10))
	signed.Set("recvWindow", strconv.FormatInt(s.recvWindow.Milliseconds(), 10))
	signed.Set("signature", Signature(s.secret, signed.Encode()))

	return signed, nil
}

// Signature computes the lowercase hex HMAC-SHA256 of payload. It is a
// pure function: same secret and payload, same output.
func Signature(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
