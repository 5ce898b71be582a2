package session

import (
	"context"
	"time"

	"github.com/rajac/admission-portal/internal/validation"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/signer"
)

const csrfKeyPrefix = "csrf:"

// CSRF issues single-use tokens bound to one browser.
type CSRF struct {
	signer *signer.Signer
}

// NewCSRF builds a token issuer around s.
func NewCSRF(s *signer.Signer) *CSRF {
	return &CSRF{signer: s}
}

// Issue mints a token for clientID and remembers its nonce in store.
func (c *CSRF) Issue(ctx context.Context, store Storage, clientID string) (string, time.Time, error) {
	nonce, err := validation.GenerateSecureToken(16)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create security token")
	}
	token, expiresAt, err := c.signer.Generate(clientID, nonce)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create security token")
	}
	if err := store.Set(ctx, csrfKeyPrefix+nonce, "1", c.signer.TTL()); err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store security token")
	}
	return token, expiresAt, nil
}

// Consume validates token for clientID and burns it.
func (c *CSRF) Consume(ctx context.Context, store Storage, clientID, token string) error {
	if token == "" {
		return appErrors.Clone(appErrors.ErrCSRFInvalid, "missing security token")
	}
	subject, nonce, _, err := c.signer.Parse(token)
	if err != nil || subject != clientID {
		return appErrors.Clone(appErrors.ErrCSRFInvalid, "")
	}
	existed, err := store.Delete(ctx, csrfKeyPrefix+nonce)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check security token")
	}
	if !existed {
		return appErrors.Clone(appErrors.ErrCSRFInvalid, "")
	}
	return nil
}
