package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/models"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

// AdminKey is the durable key holding the signed-in staff record.
const AdminKey = "admin"

type adminVerifier interface {
	VerifyAdminLogin(ctx context.Context, email, password string) (*models.AdminUser, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
}

// AdminState is the observable staff auth state.
type AdminState struct {
	Admin   *models.AdminUser
	Loading bool
}

// Admin tracks one browser's staff session. The stored record never expires
// on its own; it lives until sign-out.
type Admin struct {
	verifier   adminVerifier
	durable    Storage
	revalidate bool
	logger     *zap.Logger

	mu    sync.RWMutex
	state AdminState

	subsMu sync.Mutex
	subs   map[int]func(AdminState)
	nextID int
}

// NewAdmin returns an Admin in the loading state. With revalidate set a
// restored record is checked against is_admin.
func NewAdmin(verifier adminVerifier, durable Storage, revalidate bool, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{
		verifier:   verifier,
		durable:    durable,
		revalidate: revalidate,
		logger:     logger,
		state:      AdminState{Loading: true},
		subs:       make(map[int]func(AdminState)),
	}
}

// Init restores a stored staff record.
func (a *Admin) Init(ctx context.Context) {
	admin := a.restore(ctx)
	if admin != nil && a.revalidate {
		ok, err := a.verifier.IsAdmin(ctx, admin.ID)
		switch {
		case err != nil:
			a.logger.Warn("admin revalidation failed", zap.String("admin_id", admin.ID), zap.Error(err))
		case !ok:
			a.logger.Info("stored admin no longer authorised", zap.String("admin_id", admin.ID))
			a.forget(ctx)
			admin = nil
		}
	}
	a.set(admin)
}

// State returns a snapshot of the current state.
func (a *Admin) State() AdminState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Subscribe registers fn for state changes and returns its cancel function.
func (a *Admin) Subscribe(fn func(AdminState)) func() {
	a.subsMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.subsMu.Unlock()

	return func() {
		a.subsMu.Lock()
		delete(a.subs, id)
		a.subsMu.Unlock()
	}
}

// Close drops every subscriber.
func (a *Admin) Close() {
	a.subsMu.Lock()
	a.subs = make(map[int]func(AdminState))
	a.subsMu.Unlock()
}

// SignIn checks staff credentials. On failure the state is unchanged.
func (a *Admin) SignIn(ctx context.Context, email, password string) (*models.AdminUser, error) {
	admin, err := a.verifier.VerifyAdminLogin(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Login failed. Please try again.")
	}

	payload, err := json.Marshal(admin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode admin")
	}
	if err := a.durable.Set(ctx, AdminKey, string(payload), NoExpiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Login failed. Please try again.")
	}

	a.logger.Info("admin signed in", zap.String("admin_id", admin.ID))
	a.set(admin)
	return admin, nil
}

// SignOut forgets the staff record.
func (a *Admin) SignOut(ctx context.Context) {
	a.forget(ctx)
	a.set(nil)
}

func (a *Admin) restore(ctx context.Context) *models.AdminUser {
	raw, ok, err := a.durable.Get(ctx, AdminKey)
	if err != nil {
		a.logger.Warn("failed to read admin session", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var admin models.AdminUser
	if err := json.Unmarshal([]byte(raw), &admin); err != nil || admin.ID == "" {
		a.logger.Warn("discarding malformed admin session", zap.Error(err))
		a.forget(ctx)
		return nil
	}
	return &admin
}

func (a *Admin) forget(ctx context.Context) {
	if _, err := a.durable.Delete(ctx, AdminKey); err != nil {
		a.logger.Warn("failed to clear admin session", zap.Error(err))
	}
}

func (a *Admin) set(admin *models.AdminUser) {
	next := AdminState{Admin: admin}
	a.mu.Lock()
	a.state = next
	a.mu.Unlock()

	a.subsMu.Lock()
	fns := make([]func(AdminState), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subsMu.Unlock()
	for _, fn := range fns {
		fn(next)
	}
}
