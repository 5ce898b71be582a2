package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/service"
	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/pkg/ratelimit"
	"github.com/rajac/admission-portal/pkg/signer"
)

const storageKey = "sb-test-auth-token"

type stubAuthAPI struct{}

func (stubAuthAPI) session() *models.Session {
	return &models.Session{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		User:         models.Identity{ID: "parent-1", Email: "parent@example.com", FatherName: "Ahmed"},
	}
}

func (s stubAuthAPI) SignUp(context.Context, dto.SignUpRequest) (*models.Session, error) {
	return s.session(), nil
}

func (s stubAuthAPI) SignIn(context.Context, dto.SignInRequest) (*models.Session, error) {
	return s.session(), nil
}

func (stubAuthAPI) SignOut(context.Context, string) error { return nil }

func (s stubAuthAPI) Refresh(context.Context, string) (*models.Session, error) {
	return s.session(), nil
}

func (stubAuthAPI) GetUser(context.Context, string) (*models.Identity, error) {
	return &models.Identity{ID: "parent-1"}, nil
}

type stubAdmins struct{}

func (stubAdmins) VerifyAdminLogin(_ context.Context, email, _ string) (*models.AdminUser, error) {
	if email != "staff@rajac.example" {
		return nil, sql.ErrNoRows
	}
	return &models.AdminUser{ID: "admin-1", Email: email, Name: "Staff"}, nil
}

func (stubAdmins) IsAdmin(context.Context, string) (bool, error) { return true, nil }

var cookies = CookieConfig{ClientCookie: "rajac_client", TabCookie: "rajac_tab", ClientTTL: 365 * 24 * time.Hour}

func newEngine(t *testing.T, middlewares ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	factory := session.NewFactory(session.NewMemoryBackend(), stubAuthAPI{}, stubAdmins{}, nil, session.FactoryConfig{
		StorageKey:   storageKey,
		DurableTTL:   time.Hour,
		TransientTTL: time.Hour,
	}, nil)

	r := gin.New()
	r.Use(Sessions(factory, cookies))
	r.Use(middlewares...)

	r.POST("/test/parent-login", func(c *gin.Context) {
		req := SessionFrom(c)
		req.Parent(c.Request.Context())
		_, err := req.Client().SignInWithPassword(c.Request.Context(), "parent@example.com", "secret1")
		require.NoError(t, err)
		c.Status(http.StatusNoContent)
	})
	r.POST("/test/admin-login", func(c *gin.Context) {
		_, err := SessionFrom(c).Admin(c.Request.Context()).SignIn(c.Request.Context(), "staff@rajac.example", "pw")
		require.NoError(t, err)
		c.Status(http.StatusNoContent)
	})
	return r
}

type browser struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, engine *gin.Engine) *browser {
	return &browser{t: t, engine: engine, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
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

func TestSessionsIssuesAndKeepsCookies(t *testing.T) {
	r := newEngine(t)
	r.GET("/", func(c *gin.Context) {
		req := SessionFrom(c)
		c.String(http.StatusOK, req.ClientID+"|"+req.TabID)
	})
	b := newBrowser(t, r)

	first := b.do(http.MethodGet, "/", nil)
	require.Contains(t, b.cookies, "rajac_client")
	require.Contains(t, b.cookies, "rajac_tab")
	assert.Greater(t, b.cookies["rajac_client"].MaxAge, 0)
	assert.Zero(t, b.cookies["rajac_tab"].MaxAge)
	assert.True(t, b.cookies["rajac_client"].HttpOnly)

	second := b.do(http.MethodGet, "/", nil)
	assert.Equal(t, first.Body.String(), second.Body.String())

	b.cookies["rajac_tab"] = &http.Cookie{Name: "rajac_tab", Value: "not-a-uuid"}
	third := b.do(http.MethodGet, "/", nil)
	assert.NotEqual(t, first.Body.String(), third.Body.String())
	assert.True(t, strings.HasPrefix(third.Body.String(), b.cookies["rajac_client"].Value))
}

func TestRequireParent(t *testing.T) {
	r := newEngine(t)
	protected := r.Group("/", RequireParent("/auth"))
	protected.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusOK, ParentFrom(c).FatherName) })
	protected.POST("/form", func(c *gin.Context) { c.Status(http.StatusCreated) })
	b := newBrowser(t, r)

	rec := b.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))

	rec = b.do(http.MethodPost, "/form", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	b.do(http.MethodPost, "/test/parent-login", nil)
	rec = b.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ahmed", rec.Body.String())

	delete(b.cookies, "rajac_tab")
	rec = b.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newEngine(t)
	r.GET("/admin/dashboard", RequireAdmin("/admin/login"), func(c *gin.Context) {
		c.String(http.StatusOK, AdminFrom(c).ID)
	})
	b := newBrowser(t, r)

	rec := b.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	b.do(http.MethodPost, "/test/admin-login", nil)
	delete(b.cookies, "rajac_tab")
	rec = b.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", rec.Body.String())
}

func TestSessionRecordSignsOutWithoutRecord(t *testing.T) {
	r := newEngine(t, SessionRecord(nil))
	r.GET("/admin/dashboard", RequireAdmin("/admin/login"), func(c *gin.Context) { c.Status(http.StatusOK) })
	b := newBrowser(t, r)

	b.do(http.MethodPost, "/test/admin-login", nil)
	rec := b.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(t, SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := newBrowser(t, r).do(http.MethodGet, "/", nil)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self';")
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewMemory(ratelimit.Rule{Name: "test", Max: 2, Window: time.Minute})
	r := newEngine(t)
	r.POST("/auth/login", RateLimit(limiter, ByClient, nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	b := newBrowser(t, r)

	assert.Equal(t, http.StatusOK, b.do(http.MethodPost, "/auth/login", nil).Code)
	rec := b.do(http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = b.do(http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other := newBrowser(t, r)
	assert.Equal(t, http.StatusOK, other.do(http.MethodPost, "/auth/login", nil).Code)
}

func TestCSRF(t *testing.T) {
	csrf := session.NewCSRF(signer.New("secret", time.Hour))
	r := newEngine(t, CSRF(csrf, "/auth/pagehide"))
	r.GET("/csrf", func(c *gin.Context) {
		req := SessionFrom(c)
		token, _, err := csrf.Issue(c.Request.Context(), req.Durable(), req.ClientID)
		require.NoError(t, err)
		c.String(http.StatusOK, token)
	})
	r.POST("/form", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/auth/pagehide", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	b := newBrowser(t, r)

	rec := b.do(http.MethodPost, "/form", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body struct {
		Error struct{ Code string } `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CSRF_INVALID", body.Error.Code)

	token := b.do(http.MethodGet, "/csrf", nil).Body.String()
	header := http.Header{CSRFHeader: []string{token}}
	assert.Equal(t, http.StatusCreated, b.do(http.MethodPost, "/form", header).Code)
	assert.Equal(t, http.StatusForbidden, b.do(http.MethodPost, "/form", header).Code)

	assert.Equal(t, http.StatusNoContent, b.do(http.MethodPost, "/auth/pagehide", nil).Code)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/nope", "/also-nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := rec.Body.String()
	assert.Contains(t, out, `http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",path="unmatched",status="404"} 2`)
	assert.NotContains(t, out, "/nope")
}
