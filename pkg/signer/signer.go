package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Signer creates and validates HMAC-signed, expiring tokens bound to a subject.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New constructs a signer with the provided secret and TTL.
func New(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	if now != nil {
		s.now = now
	}
	return s
}

// TTL returns the configured token lifetime.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Generate returns a token binding subject and nonce until the signer TTL elapses.
func (s *Signer) Generate(subject, nonce string) (string, time.Time, error) {
	if subject == "" || nonce == "" {
		return "", time.Time{}, fmt.Errorf("subject and nonce required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	encodedSubject := base64.RawURLEncoding.EncodeToString([]byte(subject))
	ts := fmt.Sprintf("%d", expiresAt.Unix())
	signature := s.sign(nonce, ts, encodedSubject)
	token := strings.Join([]string{nonce, ts, encodedSubject, signature}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded subject and nonce.
func (s *Signer) Parse(token string) (subject, nonce string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("invalid token format")
	}
	nonce = parts[0]
	ts := parts[1]
	encodedSubject := parts[2]
	signature := parts[3]

	rawSubject, err := base64.RawURLEncoding.DecodeString(encodedSubject)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode subject: %w", err)
	}

	expUnix, err := parseUnix(ts)
	if err != nil {
		return "", "", time.Time{}, err
	}
	expiresAt = time.Unix(expUnix, 0)

	expected := s.sign(nonce, ts, encodedSubject)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}
	if s.now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}
	return string(rawSubject), nonce, expiresAt, nil
}

func (s *Signer) sign(nonce, ts, encodedSubject string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(nonce + "|" + ts + "|" + encodedSubject))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseUnix(raw string) (int64, error) {
	var ts int64
	_, err := fmt.Sscanf(raw, "%d", &ts)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp")
	}
	return ts, nil
}
