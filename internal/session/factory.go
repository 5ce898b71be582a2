package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/remote"
	"github.com/rajac/admission-portal/pkg/jobs"
)

// FactoryConfig tunes how scopes and stores are built.
type FactoryConfig struct {
	StorageKey      string
	DurableTTL      time.Duration
	TransientTTL    time.Duration
	RecordTTL       time.Duration
	AdminRevalidate bool
}

// Factory builds per-request session objects over a shared backend.
type Factory struct {
	backend    Backend
	api        remote.AuthAPI
	admins     adminVerifier
	dispatcher jobs.Dispatcher
	config     FactoryConfig
	logger     *zap.Logger
}

// NewFactory wires the collaborators shared by every request. dispatcher may
// be nil.
func NewFactory(backend Backend, api remote.AuthAPI, admins adminVerifier, dispatcher jobs.Dispatcher, config FactoryConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		backend:    backend,
		api:        api,
		admins:     admins,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
	}
}

// Durable returns the storage scope shared by all tabs of clientID.
func (f *Factory) Durable(clientID string) Storage {
	return f.backend.Scope("durable:"+clientID+":", f.config.DurableTTL)
}

// Transient returns the storage scope of one tab.
func (f *Factory) Transient(tabID string) Storage {
	return f.backend.Scope("transient:"+tabID+":", f.config.TransientTTL)
}

// Request returns the lazily built session objects of one request.
func (f *Factory) Request(clientID, tabID string) *Request {
	return &Request{factory: f, ClientID: clientID, TabID: tabID}
}

// Request scopes session objects to one incoming request. It is not shared
// across requests.
type Request struct {
	factory  *Factory
	ClientID string
	TabID    string

	mu      sync.Mutex
	client  *remote.Client
	parent  *Parent
	admin   *Admin
	records *Records
}

// Durable returns this browser's durable scope.
func (r *Request) Durable() Storage {
	return r.factory.Durable(r.ClientID)
}

// Transient returns this tab's transient scope.
func (r *Request) Transient() Storage {
	return r.factory.Transient(r.TabID)
}

// Client returns the auth client bound to the durable scope.
func (r *Request) Client() *remote.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientLocked()
}

func (r *Request) clientLocked() *remote.Client {
	if r.client == nil {
		f := r.factory
		r.client = remote.NewClient(f.api, r.Durable(), remote.Config{
			StorageKey: f.config.StorageKey,
			TTL:        f.config.DurableTTL,
			Logger:     f.logger,
		})
	}
	return r.client
}

// Parent returns the initialised parent store.
func (r *Request) Parent(ctx context.Context) *Parent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parent == nil {
		f := r.factory
		r.parent = NewParent(r.clientLocked(), r.Durable(), r.Transient(), ParentOptions{
			DurableKeys: []string{f.config.StorageKey, LegacyTokenKey},
			TokenKey:    f.config.StorageKey,
			Dispatcher:  f.dispatcher,
			Logger:      f.logger,
		})
		r.parent.Init(ctx)
	}
	return r.parent
}

// Admin returns the initialised staff store.
func (r *Request) Admin(ctx context.Context) *Admin {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.admin == nil {
		f := r.factory
		r.admin = NewAdmin(f.admins, r.Durable(), f.config.AdminRevalidate, f.logger)
		r.admin.Init(ctx)
	}
	return r.admin
}

// Records returns the session record manager.
func (r *Request) Records() *Records {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = NewRecords(r.Durable(), r.factory.config.RecordTTL)
	}
	return r.records
}

// Close releases subscriptions held by the request.
func (r *Request) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parent != nil {
		r.parent.Close()
	}
	if r.admin != nil {
		r.admin.Close()
	}
}
