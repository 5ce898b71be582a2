package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rajac/admission-portal/internal/validation"
)

// RecordKey is the durable key of the hardening session record.
const RecordKey = "rajac_session"

// User types a record can be issued for.
const (
	UserTypeParent = "parent"
	UserTypeAdmin  = "admin"
)

// Record is a bounded-lifetime marker written when hardening is enabled.
type Record struct {
	UserID    string `json:"userId"`
	UserType  string `json:"userType"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	Token     string `json:"token"`
}

// Records manages the session record of one browser.
type Records struct {
	store Storage
	ttl   time.Duration
	now   func() time.Time
}

// NewRecords returns a record manager over store.
func NewRecords(store Storage, ttl time.Duration) *Records {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Records{store: store, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source.
func (r *Records) WithClock(now func() time.Time) *Records {
	r.now = now
	return r
}

// Create writes a fresh record for userID.
func (r *Records) Create(ctx context.Context, userID, userType string) (*Record, error) {
	token, err := validation.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}
	now := r.now()
	rec := &Record{
		UserID:    userID,
		UserType:  userType,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(r.ttl).UnixMilli(),
		Token:     token,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, RecordKey, string(payload), r.ttl); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the live record, clearing it once expired or unreadable.
func (r *Records) Get(ctx context.Context) (*Record, error) {
	raw, ok, err := r.store.Get(ctx, RecordKey)
	if err != nil || !ok {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || r.now().UnixMilli() > rec.ExpiresAt {
		return nil, r.Clear(ctx)
	}
	return &rec, nil
}

// Valid reports whether a live record exists.
func (r *Records) Valid(ctx context.Context) bool {
	rec, err := r.Get(ctx)
	return err == nil && rec != nil
}

// Clear removes the record.
func (r *Records) Clear(ctx context.Context) error {
	_, err := r.store.Delete(ctx, RecordKey)
	return err
}
