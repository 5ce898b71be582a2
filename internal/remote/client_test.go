package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

const storageKey = "sb-test-auth-token"

type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapStore() *mapStore { return &mapStore{data: map[string]string{}} }

func (m *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapStore) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

type fakeAPI struct {
	signInErr  error
	signOutErr error
	refreshErr error
	getUserErr error
	signedOut  []string
	refreshed  int
	userChecks int
}

func (f *fakeAPI) session(token string, expiresAt time.Time) *models.Session {
	return &models.Session{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		ExpiresAt:    expiresAt.Unix(),
		User:         models.Identity{ID: "user-1", Email: "parent@example.com", FatherName: "Ahmed"},
	}
}

func (f *fakeAPI) SignUp(_ context.Context, req dto.SignUpRequest) (*models.Session, error) {
	s := f.session("signup-token", time.Now().Add(time.Hour))
	s.User.FatherName = req.FatherName
	return s, nil
}

func (f *fakeAPI) SignIn(_ context.Context, _ dto.SignInRequest) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session("signin-token", time.Now().Add(time.Hour)), nil
}

func (f *fakeAPI) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return f.signOutErr
}

func (f *fakeAPI) Refresh(_ context.Context, _ string) (*models.Session, error) {
	f.refreshed++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.session("refreshed-token", time.Now().Add(time.Hour)), nil
}

func (f *fakeAPI) GetUser(_ context.Context, _ string) (*models.Identity, error) {
	f.userChecks++
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	return &models.Identity{ID: "user-1"}, nil
}

type recorded struct {
	event models.AuthEvent
	token string
}

func record(events *[]recorded) Listener {
	return func(_ context.Context, event models.AuthEvent, s *models.Session) {
		r := recorded{event: event}
		if s != nil {
			r.token = s.AccessToken
		}
		*events = append(*events, r)
	}
}

func TestSignInPersistsAndNotifies(t *testing.T) {
	store := newMapStore()
	client := NewClient(&fakeAPI{}, store, Config{StorageKey: storageKey})

	var events []recorded
	client.OnAuthStateChange(context.Background(), record(&events))

	sess, err := client.SignInWithPassword(context.Background(), "parent@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "signin-token", sess.AccessToken)

	raw, ok, _ := store.Get(context.Background(), storageKey)
	require.True(t, ok)
	var stored models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "signin-token", stored.AccessToken)

	assert.Equal(t, []recorded{
		{event: models.AuthEventInitialSession},
		{event: models.AuthEventSignedIn, token: "signin-token"},
	}, events)
}

func TestSignInFailureLeavesStateUntouched(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{signInErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")}
	client := NewClient(api, store, Config{StorageKey: storageKey})

	_, err := client.SignInWithPassword(context.Background(), "parent@example.com", "wrong")
	require.Error(t, err)

	_, ok, _ := store.Get(context.Background(), storageKey)
	assert.False(t, ok)
}

func TestGetSessionRestoresFromStorage(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{}
	payload, _ := json.Marshal(api.session("stored-token", time.Now().Add(time.Hour)))
	store.data[storageKey] = string(payload)

	client := NewClient(api, store, Config{StorageKey: storageKey})
	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "stored-token", sess.AccessToken)
	assert.Zero(t, api.refreshed)
}

func TestGetSessionChecksRestoredSessionOnce(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{}
	payload, _ := json.Marshal(api.session("stored-token", time.Now().Add(time.Hour)))
	store.data[storageKey] = string(payload)

	client := NewClient(api, store, Config{StorageKey: storageKey})
	for i := 0; i < 3; i++ {
		sess, err := client.GetSession(context.Background())
		require.NoError(t, err)
		require.NotNil(t, sess)
	}
	assert.Equal(t, 1, api.userChecks)
}

func TestGetSessionDropsSessionEndedRemotely(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{getUserErr: appErrors.Clone(appErrors.ErrUnauthorized, "session has ended")}
	payload, _ := json.Marshal(api.session("stored-token", time.Now().Add(time.Hour)))
	store.data[storageKey] = string(payload)

	client := NewClient(api, store, Config{StorageKey: storageKey})
	var events []recorded
	client.OnAuthStateChange(context.Background(), record(&events))

	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, store.data)
	assert.Equal(t, models.AuthEventSignedOut, events[len(events)-1].event)
}

func TestGetSessionSurfacesVerificationOutage(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{getUserErr: appErrors.Clone(appErrors.ErrRemoteUnavailable, "failed to load session")}
	payload, _ := json.Marshal(api.session("stored-token", time.Now().Add(time.Hour)))
	store.data[storageKey] = string(payload)

	client := NewClient(api, store, Config{StorageKey: storageKey})
	_, err := client.GetSession(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRemoteUnavailable.Code))
	assert.NotEmpty(t, store.data)
}

func TestFreshSignInSkipsVerification(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(api, newMapStore(), Config{StorageKey: storageKey})
	_, err := client.SignInWithPassword(context.Background(), "parent@example.com", "secret1")
	require.NoError(t, err)

	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "signin-token", sess.AccessToken)
	assert.Zero(t, api.userChecks)
}

func TestGetSessionRefreshesExpiredToken(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{}
	payload, _ := json.Marshal(api.session("stale-token", time.Now().Add(-time.Minute)))
	store.data[storageKey] = string(payload)

	client := NewClient(api, store, Config{StorageKey: storageKey})
	var events []recorded
	client.OnAuthStateChange(context.Background(), record(&events))

	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", sess.AccessToken)
	assert.Equal(t, models.AuthEventTokenRefreshed, events[len(events)-1].event)
}

func TestGetSessionDropsUnrefreshableSession(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{refreshErr: appErrors.Clone(appErrors.ErrUnauthorized, "refresh token expired")}
	payload, _ := json.Marshal(api.session("stale-token", time.Now().Add(-time.Minute)))
	store.data[storageKey] = string(payload)

	client := NewClient(api, store, Config{StorageKey: storageKey})
	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
	_, ok, _ := store.Get(context.Background(), storageKey)
	assert.False(t, ok)
}

func TestMalformedStoredSessionIsDiscarded(t *testing.T) {
	store := newMapStore()
	store.data[storageKey] = "{not json"

	client := NewClient(&fakeAPI{}, store, Config{StorageKey: storageKey})
	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, store.data)
}

func TestSignOutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	store := newMapStore()
	api := &fakeAPI{signOutErr: errors.New("network down")}
	client := NewClient(api, store, Config{StorageKey: storageKey})

	_, err := client.SignInWithPassword(context.Background(), "parent@example.com", "secret1")
	require.NoError(t, err)

	var events []recorded
	client.OnAuthStateChange(context.Background(), record(&events))

	err = client.SignOut(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"signin-token"}, api.signedOut)
	assert.Empty(t, store.data)

	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, models.AuthEventSignedOut, events[len(events)-1].event)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	client := NewClient(&fakeAPI{}, newMapStore(), Config{StorageKey: storageKey})

	var events []recorded
	sub := client.OnAuthStateChange(context.Background(), record(&events))
	sub.Unsubscribe()
	sub.Unsubscribe()

	_, err := client.SignInWithPassword(context.Background(), "parent@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestListenersAreCalledInSubscriptionOrder(t *testing.T) {
	client := NewClient(&fakeAPI{}, newMapStore(), Config{StorageKey: storageKey})

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		client.OnAuthStateChange(context.Background(), func(_ context.Context, event models.AuthEvent, _ *models.Session) {
			if event == models.AuthEventSignedIn {
				order = append(order, i)
			}
		})
	}

	_, err := client.SignUp(context.Background(), "parent@example.com", "secret1", models.UserMetadata{FatherName: "Ahmed"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}
