// Package router assembles the HTTP surface of the portal.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/handler"
	"github.com/rajac/admission-portal/internal/middleware"
	"github.com/rajac/admission-portal/internal/service"
	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/pkg/logger"
	corsmiddleware "github.com/rajac/admission-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/rajac/admission-portal/pkg/middleware/requestid"
	"github.com/rajac/admission-portal/pkg/ratelimit"
)

// PageHidePath is the beacon endpoint; browsers cannot attach headers to it.
const PageHidePath = "/auth/pagehide"

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Pages   *handler.PageHandler
	Auth    *handler.AuthHandler
	Forms   *handler.FormHandler
	Admin   *handler.AdminHandler
	CSRF    *handler.CSRFHandler
	Metrics *handler.MetricsHandler
}

// Limiters holds the optional rate limiters. A nil limiter disables its rule.
type Limiters struct {
	API   ratelimit.Limiter
	Login ratelimit.Limiter
	Form  ratelimit.Limiter
}

// Options toggles the optional parts of the route table.
type Options struct {
	AllowedOrigins  []string
	Cookies         middleware.CookieConfig
	SecurityHeaders bool
	SessionRecord   bool
	// CSRF enables token checks on state-changing requests when set.
	CSRF     *session.CSRF
	Limiters Limiters
	Docs     bool
}

// New builds the gin engine with every portal route.
func New(factory *session.Factory, h Handlers, metrics *service.MetricsService, log *zap.Logger, opts Options) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	if opts.SecurityHeaders {
		r.Use(middleware.SecurityHeaders())
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	app := r.Group("/")
	app.Use(middleware.Sessions(factory, opts.Cookies))
	if opts.Limiters.API != nil {
		app.Use(middleware.RateLimit(opts.Limiters.API, middleware.ByIP, log))
	}
	if opts.SessionRecord {
		app.Use(middleware.SessionRecord(log))
	}
	if opts.CSRF != nil {
		app.Use(middleware.CSRF(opts.CSRF, PageHidePath))
		app.GET("/csrf", h.CSRF.Issue)
	}

	loginLimit := limit(opts.Limiters.Login, log)
	formLimit := limit(opts.Limiters.Form, log)

	app.GET(service.RouteHome, h.Pages.Index)
	app.GET(service.RouteAuth, h.Pages.Auth)
	app.GET(service.RouteForm, h.Pages.Form)
	app.GET(service.RouteEnterOutlook, h.Pages.EnterOutlook)
	app.GET(service.RoutePayFees, h.Pages.PayFees)
	app.GET(service.RouteDashboard, h.Pages.Dashboard)
	app.GET(service.RouteAdminLogin, h.Pages.AdminLogin)
	app.GET(service.RouteAdminPanel, h.Pages.AdminDashboard)

	auth := app.Group("/auth")
	auth.POST("/signup", append(loginLimit, h.Auth.SignUp)...)
	auth.POST("/login", append(loginLimit, h.Auth.Login)...)
	auth.POST("/logout", h.Auth.Logout)
	app.POST(PageHidePath, h.Auth.PageHide)

	parent := app.Group("/", middleware.RequireParent(service.RouteAuth))
	parent.POST(service.RouteForm, append(formLimit, h.Forms.Submit)...)
	parent.POST(service.RouteEnterOutlook, h.Forms.BookSlot)

	app.POST(service.RouteAdminLogin, append(loginLimit, h.Admin.Login)...)
	app.POST("/admin/logout", h.Admin.Logout)
	admin := app.Group("/admin/applications", middleware.RequireAdmin(service.RouteAdminLogin))
	admin.PATCH("/:id", h.Admin.UpdateApplication)
	admin.GET("/export", h.Admin.ExportApplications)

	r.NoRoute(h.Pages.NotFound)
	return r
}

func limit(limiter ratelimit.Limiter, log *zap.Logger) []gin.HandlerFunc {
	if limiter == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.RateLimit(limiter, middleware.ByClient, log)}
}
