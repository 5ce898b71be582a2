// Package remote is the stateful auth client a browser session talks to. It
// persists the current session in durable storage and fans auth-state
// changes out to subscribers.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

// AuthAPI is the hosted auth contract.
type AuthAPI interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (*models.Session, error)
	SignIn(ctx context.Context, req dto.SignInRequest) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	GetUser(ctx context.Context, accessToken string) (*models.Identity, error)
}

// KeyValue is the storage the client persists its session in.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

// Listener receives auth-state changes. session is nil after sign-out.
type Listener func(ctx context.Context, event models.AuthEvent, session *models.Session)

// Subscription detaches a listener.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Config configures a Client.
type Config struct {
	StorageKey string
	TTL        time.Duration
	Logger     *zap.Logger
	Now        func() time.Time
}

// Client is one browser's view of the auth service.
type Client struct {
	api     AuthAPI
	storage KeyValue
	key     string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	current  *models.Session
	loaded   bool
	verified bool

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
	emitMu      sync.Mutex
}

// NewClient builds a client persisting under cfg.StorageKey.
func NewClient(api AuthAPI, storage KeyValue, cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		api:       api,
		storage:   storage,
		key:       cfg.StorageKey,
		ttl:       cfg.TTL,
		logger:    cfg.Logger,
		now:       cfg.Now,
		listeners: make(map[int]Listener),
	}
}

// SignUp registers a parent and stores the resulting session.
func (c *Client) SignUp(ctx context.Context, email, password string, meta models.UserMetadata) (*models.Session, error) {
	sess, err := c.api.SignUp(ctx, dto.SignUpRequest{Email: email, Password: password, FatherName: meta.FatherName})
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, sess); err != nil {
		return nil, err
	}
	c.emit(ctx, models.AuthEventSignedIn, sess)
	return sess, nil
}

// SignInWithPassword authenticates and stores the resulting session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := c.api.SignIn(ctx, dto.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, sess); err != nil {
		return nil, err
	}
	c.emit(ctx, models.AuthEventSignedIn, sess)
	return sess, nil
}

// SignOut ends the remote session and forgets the local one. The local
// session is dropped even when the remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	sess, loadErr := c.GetSession(ctx)

	var remoteErr error
	if sess != nil {
		remoteErr = c.api.SignOut(ctx, sess.AccessToken)
	}
	if err := c.forget(ctx); err != nil && remoteErr == nil {
		remoteErr = err
	}
	c.emit(ctx, models.AuthEventSignedOut, nil)

	if remoteErr != nil {
		return remoteErr
	}
	return loadErr
}

// GetSession returns the stored session, refreshing it when the access token
// has lapsed. A restored session is checked once against the auth service so
// sessions ended server-side are dropped. It returns nil without error when
// nobody is signed in.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	sess, err := c.load(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	if !sess.Expired(c.now()) {
		return c.verify(ctx, sess)
	}

	refreshed, err := c.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrUnauthorized.Code) {
			c.logger.Debug("stored session could not be refreshed", zap.Error(err))
			c.drop(ctx)
			return nil, nil
		}
		return nil, err
	}
	if err := c.store(ctx, refreshed); err != nil {
		return nil, err
	}
	c.emit(ctx, models.AuthEventTokenRefreshed, refreshed)
	return refreshed, nil
}

func (c *Client) verify(ctx context.Context, sess *models.Session) (*models.Session, error) {
	c.mu.Lock()
	verified := c.verified
	c.mu.Unlock()
	if verified {
		return sess, nil
	}

	if _, err := c.api.GetUser(ctx, sess.AccessToken); err != nil {
		if appErrors.HasCode(err, appErrors.ErrUnauthorized.Code) {
			c.logger.Debug("stored session ended remotely", zap.Error(err))
			c.drop(ctx)
			return nil, nil
		}
		return nil, err
	}
	c.mu.Lock()
	c.verified = true
	c.mu.Unlock()
	return sess, nil
}

func (c *Client) drop(ctx context.Context) {
	if err := c.forget(ctx); err != nil {
		c.logger.Warn("failed to drop stored session", zap.Error(err))
	}
	c.emit(ctx, models.AuthEventSignedOut, nil)
}

// OnAuthStateChange registers fn and immediately delivers INITIAL_SESSION
// with the current session.
func (c *Client) OnAuthStateChange(ctx context.Context, fn Listener) Subscription {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	sess, err := c.load(ctx)
	if err != nil {
		c.logger.Warn("failed to load stored session", zap.Error(err))
	}
	c.emitMu.Lock()
	fn(ctx, models.AuthEventInitialSession, sess)
	c.emitMu.Unlock()

	return &subscription{cancel: func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}}
}

func (c *Client) emit(ctx context.Context, event models.AuthEvent, sess *models.Session) {
	c.listenersMu.Lock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.listenersMu.Unlock()

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	for _, fn := range fns {
		fn(ctx, event, sess)
	}
}

func (c *Client) load(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.current, nil
	}

	raw, ok, err := c.storage.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read stored session: %w", err)
	}
	c.loaded = true
	if !ok {
		c.current = nil
		return nil, nil
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.AccessToken == "" {
		c.logger.Warn("discarding malformed stored session", zap.Error(err))
		_, _ = c.storage.Delete(ctx, c.key)
		c.current = nil
		return nil, nil
	}
	c.current = &sess
	return c.current, nil
}

func (c *Client) store(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.storage.Set(ctx, c.key, string(payload), c.ttl); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to persist session")
	}
	c.mu.Lock()
	c.current = sess
	c.loaded = true
	c.verified = true
	c.mu.Unlock()
	return nil
}

func (c *Client) forget(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.loaded = true
	c.verified = false
	c.mu.Unlock()
	if _, err := c.storage.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("delete stored session: %w", err)
	}
	return nil
}
