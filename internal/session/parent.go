package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/remote"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/jobs"
)

// Page lifecycle events that end a parent session.
const (
	PageHide     = "pagehide"
	BeforeUnload = "beforeunload"
)

// LegacyTokenKey is an older durable key cleared alongside the current one.
const LegacyTokenKey = "supabase.auth.token"

type authClient interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(ctx context.Context, fn remote.Listener) remote.Subscription
}

// ParentState is the observable parent auth state.
type ParentState struct {
	Identity *models.Identity
	Session  *models.Session
	Loading  bool
}

// SignedIn reports whether a parent identity is present.
func (s ParentState) SignedIn() bool {
	return s.Identity != nil
}

// Parent tracks one browser's parent session. Tabs are tied to the session
// through a transient copy of the access token: a provider session without a
// matching transient token is treated as signed out.
type Parent struct {
	client      authClient
	durable     Storage
	transient   Storage
	durableKeys []string
	tokenKey    string
	dispatcher  jobs.Dispatcher
	logger      *zap.Logger

	mu    sync.RWMutex
	state ParentState
	// tabToken is this tab's copy of the access token; bound is set while it
	// matches the client's session.
	tabToken string
	bound    bool

	subsMu sync.Mutex
	subs   map[int]func(ParentState)
	nextID int

	sub remote.Subscription
}

// ParentOptions carries the collaborators of a Parent.
type ParentOptions struct {
	// DurableKeys are removed when the page is hidden or the parent signs out.
	DurableKeys []string
	// TokenKey is the transient key holding the tab's copy of the access token.
	TokenKey string
	// Dispatcher runs remote sign-outs off the request path when set.
	Dispatcher jobs.Dispatcher
	Logger     *zap.Logger
}

// NewParent returns a Parent in the loading state.
func NewParent(client authClient, durable, transient Storage, opts ParentOptions) *Parent {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Parent{
		client:      client,
		durable:     durable,
		transient:   transient,
		durableKeys: opts.DurableKeys,
		tokenKey:    opts.TokenKey,
		dispatcher:  opts.Dispatcher,
		logger:      opts.Logger,
		state:       ParentState{Loading: true},
		subs:        make(map[int]func(ParentState)),
	}
}

// Init subscribes to the auth client and resolves the initial state. The
// tab token is read first: a stored session it does not match is neither
// accepted nor refreshed.
func (p *Parent) Init(ctx context.Context) {
	token, ok, err := p.transient.Get(ctx, p.tokenKey)
	if err != nil {
		p.logger.Warn("failed to read tab token", zap.Error(err))
	}
	if ok {
		p.mu.Lock()
		p.tabToken = token
		p.mu.Unlock()
	}

	p.sub = p.client.OnAuthStateChange(ctx, p.onAuthEvent)
	if !p.isBound() {
		p.apply(nil)
		return
	}

	sess, err := p.client.GetSession(ctx)
	if err != nil {
		p.logger.Warn("failed to restore parent session", zap.Error(err))
		p.apply(nil)
		return
	}
	if sess == nil || !p.isBound() {
		p.apply(nil)
		return
	}
	p.apply(sess)
}

// State returns a snapshot of the current state.
func (p *Parent) State() ParentState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Subscribe registers fn for state changes and returns its cancel function.
func (p *Parent) Subscribe(fn func(ParentState)) func() {
	p.subsMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subsMu.Unlock()

	return func() {
		p.subsMu.Lock()
		delete(p.subs, id)
		p.subsMu.Unlock()
	}
}

// Close detaches from the auth client.
func (p *Parent) Close() {
	if p.sub != nil {
		p.sub.Unsubscribe()
	}
	p.subsMu.Lock()
	p.subs = make(map[int]func(ParentState))
	p.subsMu.Unlock()
}

// HandlePageHide forgets the durable session and ends it remotely. The
// transient token is left alone.
func (p *Parent) HandlePageHide(ctx context.Context, event string) error {
	if event != PageHide && event != BeforeUnload {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported page event")
	}

	sess, err := p.client.GetSession(ctx)
	if err != nil {
		p.logger.Warn("failed to read session on page hide", zap.Error(err))
	}
	p.clearDurable(ctx)

	if sess != nil {
		p.remoteSignOut(ctx, sess.AccessToken)
	}
	p.apply(nil)
	return nil
}

// SignOut ends the session. Remote failures are logged and local state is
// cleared regardless.
func (p *Parent) SignOut(ctx context.Context) {
	if err := p.client.SignOut(ctx); err != nil {
		p.logger.Warn("remote sign-out failed", zap.Error(err))
	}
	p.clearDurable(ctx)
	if _, err := p.transient.Delete(ctx, p.tokenKey); err != nil {
		p.logger.Warn("failed to clear tab token", zap.Error(err))
	}
	p.apply(nil)
}

func (p *Parent) remoteSignOut(ctx context.Context, accessToken string) {
	if p.dispatcher != nil {
		err := p.dispatcher.Enqueue(jobs.Job{Type: jobs.TypeRemoteSignOut, Payload: accessToken})
		if err == nil {
			return
		}
		p.logger.Warn("failed to queue remote sign-out", zap.Error(err))
	}
	if err := p.client.SignOut(ctx); err != nil {
		p.logger.Warn("remote sign-out failed", zap.Error(err))
	}
}

func (p *Parent) clearDurable(ctx context.Context) {
	for _, key := range p.durableKeys {
		if _, err := p.durable.Delete(ctx, key); err != nil {
			p.logger.Warn("failed to clear durable key", zap.String("key", key), zap.Error(err))
		}
	}
}

func (p *Parent) onAuthEvent(ctx context.Context, event models.AuthEvent, sess *models.Session) {
	switch event {
	case models.AuthEventInitialSession:
		p.mu.Lock()
		p.bound = sess != nil && p.tabToken != "" && p.tabToken == sess.AccessToken
		bound := p.bound
		p.mu.Unlock()
		if !bound {
			sess = nil
		}
	case models.AuthEventSignedIn:
		p.bind(ctx, sess)
	case models.AuthEventTokenRefreshed:
		if !p.isBound() {
			sess = nil
			break
		}
		p.bind(ctx, sess)
	case models.AuthEventSignedOut:
		p.mu.Lock()
		p.bound = false
		p.tabToken = ""
		p.mu.Unlock()
		if _, err := p.transient.Delete(ctx, p.tokenKey); err != nil {
			p.logger.Warn("failed to clear tab token", zap.Error(err))
		}
	}
	p.apply(sess)
}

// bind mirrors the access token into this tab.
func (p *Parent) bind(ctx context.Context, sess *models.Session) {
	if sess == nil {
		return
	}
	if err := p.transient.Set(ctx, p.tokenKey, sess.AccessToken, 0); err != nil {
		p.logger.Warn("failed to store tab token", zap.Error(err))
	}
	p.mu.Lock()
	p.tabToken = sess.AccessToken
	p.bound = true
	p.mu.Unlock()
}

func (p *Parent) isBound() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bound
}

func (p *Parent) apply(sess *models.Session) {
	next := ParentState{Session: sess}
	if sess != nil {
		identity := sess.User
		next.Identity = &identity
	}

	p.mu.Lock()
	p.state = next
	p.mu.Unlock()

	p.subsMu.Lock()
	fns := make([]func(ParentState), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subsMu.Unlock()
	for _, fn := range fns {
		fn(next)
	}
}
