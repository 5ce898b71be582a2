package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/middleware"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/internal/validation"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

const testStorageKey = "sb-test-auth-token"

type fakeAuthAPI struct{}

func (fakeAuthAPI) session(email string) *models.Session {
	return &models.Session{
		AccessToken:  "access-" + email,
		RefreshToken: "refresh-" + email,
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		User:         models.Identity{ID: "parent-1", Email: email, FatherName: "Ahmed"},
	}
}

func (f fakeAuthAPI) SignUp(_ context.Context, req dto.SignUpRequest) (*models.Session, error) {
	if req.Email == "taken@example.com" {
		return nil, appErrors.Clone(appErrors.ErrConflict, "User already registered")
	}
	return f.session(req.Email), nil
}

func (f fakeAuthAPI) SignIn(_ context.Context, req dto.SignInRequest) (*models.Session, error) {
	if req.Password != "secret1" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")
	}
	return f.session(req.Email), nil
}

func (fakeAuthAPI) SignOut(context.Context, string) error { return nil }

func (f fakeAuthAPI) Refresh(context.Context, string) (*models.Session, error) {
	return f.session("parent@example.com"), nil
}

func (fakeAuthAPI) GetUser(context.Context, string) (*models.Identity, error) {
	return &models.Identity{ID: "parent-1"}, nil
}

type fakeAdmins struct{}

func (fakeAdmins) VerifyAdminLogin(_ context.Context, email, password string) (*models.AdminUser, error) {
	if email != "staff@rajac.example" || password != "staff-pass" {
		return nil, sql.ErrNoRows
	}
	return &models.AdminUser{ID: "admin-1", Email: email, Name: "Staff"}, nil
}

func (fakeAdmins) IsAdmin(context.Context, string) (bool, error) { return true, nil }

// newTestEngine returns a gin engine with session cookies wired the way the
// router does it.
func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	factory := session.NewFactory(session.NewMemoryBackend(), fakeAuthAPI{}, fakeAdmins{}, nil, session.FactoryConfig{
		StorageKey:   testStorageKey,
		DurableTTL:   time.Hour,
		TransientTTL: time.Hour,
	}, nil)
	r := gin.New()
	r.Use(middleware.Sessions(factory, middleware.CookieConfig{
		ClientCookie: "rajac_client",
		TabCookie:    "rajac_tab",
		ClientTTL:    24 * time.Hour,
	}))
	return r
}

// browser keeps cookies between requests like a single tab would.
type browser struct {
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(engine *gin.Engine) *browser {
	return &browser{engine: engine, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.engine.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

// newTab drops the tab cookie, as opening a fresh tab would.
func (b *browser) newTab() {
	delete(b.cookies, "rajac_tab")
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func newValidator() *validation.Validator {
	return validation.New()
}
