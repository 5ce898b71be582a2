package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/rajac/admission-portal/api/swagger"
	"github.com/rajac/admission-portal/internal/handler"
	"github.com/rajac/admission-portal/internal/middleware"
	"github.com/rajac/admission-portal/internal/repository"
	"github.com/rajac/admission-portal/internal/router"
	"github.com/rajac/admission-portal/internal/service"
	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/internal/validation"
	"github.com/rajac/admission-portal/pkg/cache"
	"github.com/rajac/admission-portal/pkg/config"
	"github.com/rajac/admission-portal/pkg/database"
	"github.com/rajac/admission-portal/pkg/jobs"
	"github.com/rajac/admission-portal/pkg/logger"
	"github.com/rajac/admission-portal/pkg/mailer"
	"github.com/rajac/admission-portal/pkg/ratelimit"
	"github.com/rajac/admission-portal/pkg/signer"
)

const shutdownTimeout = 15 * time.Second

// @title Rajac Admission Portal API
// @version 1.0.0
// @description Parent admission flow and staff review for Rajac International Schools
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Session.Driver == config.StorageDriverRedis {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validate := validation.New()
	metrics := service.NewMetricsService()

	authRepo := repository.NewAuthRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	authSvc := service.NewAuthService(authRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.Auth.JWTSecret,
		AccessTokenExpiry:  cfg.Auth.Expiration,
		RefreshTokenExpiry: cfg.Auth.RefreshExpiration,
		Issuer:             cfg.Auth.Issuer,
		EnforceStrength:    cfg.Hardening.PasswordPolicy,
	})

	var mail mailer.Mailer = mailer.NewLog(logr)
	if cfg.Mail.SendgridAPIKey != "" {
		mail = mailer.NewSendgrid(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, logr)
	}
	notifications := service.NewNotificationService(mail, metrics, logr)

	mux := jobs.NewMux()
	mux.Handle(jobs.TypeRemoteSignOut, func(ctx context.Context, job jobs.Job) error {
		err := authSvc.HandleSignOutJob(ctx, job)
		metrics.RecordJob(job.Type, err)
		return err
	})
	notifications.Register(mux)

	queue := jobs.NewQueue("portal", mux.Process, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	admissionSvc := service.NewAdmissionService(admissionRepo, validate, queue, metrics, logr, service.AdmissionConfig{
		Sanitize: cfg.Hardening.SanitizeInput,
	})
	reviewSvc := service.NewReviewService(admissionRepo, validate, logr)
	exportSvc := service.NewExportService(reviewSvc, logr, nil, nil, nil)

	var backend session.Backend = session.NewMemoryBackend()
	if redisClient != nil {
		backend = session.NewRedisBackend(redisClient, "rajac:")
	}
	factory := session.NewFactory(backend, authSvc, adminRepo, queue, session.FactoryConfig{
		StorageKey:      cfg.Auth.StorageKey(),
		DurableTTL:      cfg.Session.DurableTTL,
		TransientTTL:    cfg.Session.TransientTTL,
		RecordTTL:       cfg.Hardening.SessionTTL,
		AdminRevalidate: cfg.Admin.Revalidate,
	}, logr)

	checks := map[string]handler.Check{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handlers := router.Handlers{
		Pages:   handler.NewPageHandler(admissionSvc, reviewSvc),
		Auth:    handler.NewAuthHandler(admissionSvc, metrics, logr, cfg.Hardening.SessionRecord),
		Forms:   handler.NewFormHandler(admissionSvc),
		Admin:   handler.NewAdminHandler(reviewSvc, exportSvc, validate, metrics, logr, cfg.Hardening.SessionRecord),
		Metrics: handler.NewMetricsHandler(metrics, checks),
	}

	opts := router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Cookies: middleware.CookieConfig{
			ClientCookie: cfg.Session.ClientCookie,
			TabCookie:    cfg.Session.TabCookie,
			ClientTTL:    cfg.Session.ClientCookieTTL,
			Domain:       cfg.Session.CookieDomain,
			Secure:       cfg.Session.SecureCookies,
		},
		SecurityHeaders: cfg.Hardening.SecurityHeaders,
		SessionRecord:   cfg.Hardening.SessionRecord,
		Docs:            cfg.Env != config.EnvProduction,
	}
	if cfg.Hardening.CSRF {
		csrf := session.NewCSRF(signer.New(cfg.Hardening.CSRFSecret, cfg.Hardening.CSRFTTL))
		opts.CSRF = csrf
		handlers.CSRF = handler.NewCSRFHandler(csrf)
	}
	if cfg.Hardening.RateLimit {
		opts.Limiters = newLimiters(redisClient)
	}

	r := router.New(factory, handlers, metrics, logr, opts)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "session_driver", cfg.Session.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logr.Sugar().Errorw("server failed", "error", err)
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		_ = srv.Close()
	}
	logr.Info("server stopped")
}

func newLimiters(client *redis.Client) router.Limiters {
	if client == nil {
		return router.Limiters{
			API:   ratelimit.NewMemory(ratelimit.APIRequest),
			Login: ratelimit.NewMemory(ratelimit.LoginAttempt),
			Form:  ratelimit.NewMemory(ratelimit.FormSubmission),
		}
	}
	return router.Limiters{
		API:   ratelimit.NewRedis(client, ratelimit.APIRequest),
		Login: ratelimit.NewRedis(client, ratelimit.LoginAttempt),
		Form:  ratelimit.NewRedis(client, ratelimit.FormSubmission),
	}
}
