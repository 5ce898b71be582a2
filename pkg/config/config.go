package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers for durable and transient client storage.
const (
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Config struct {
	Env     string
	Port    int
	AppName string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Session   SessionConfig
	Admin     AdminConfig
	Hardening HardeningConfig
	Mail      MailConfig
	Jobs      JobsConfig
	CORS      CORSConfig
	Log       LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig configures the hosted auth contract (token signing and storage keys).
type AuthConfig struct {
	JWTSecret         string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	ProjectRef        string
	Issuer            string
}

// StorageKey returns the durable key the auth client persists its session under.
func (a AuthConfig) StorageKey() string {
	return "sb-" + a.ProjectRef + "-auth-token"
}

// SessionConfig controls how browser storage scopes are emulated server-side.
type SessionConfig struct {
	Driver          string
	ClientCookie    string
	TabCookie       string
	ClientCookieTTL time.Duration
	DurableTTL      time.Duration
	TransientTTL    time.Duration
	CookieDomain    string
	SecureCookies   bool
}

// AdminConfig tunes the staff session.
type AdminConfig struct {
	Revalidate bool
}

// HardeningConfig toggles the optional request interceptors.
type HardeningConfig struct {
	RateLimit       bool
	CSRF            bool
	SessionRecord   bool
	SanitizeInput   bool
	PasswordPolicy  bool
	SecurityHeaders bool
	CSRFSecret      string
	CSRFTTL         time.Duration
	SessionTTL      time.Duration
}

// MailConfig configures outbound notifications.
type MailConfig struct {
	SendgridAPIKey string
	FromName       string
	FromEmail      string
}

// JobsConfig tunes the background dispatcher.
type JobsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.AppName = v.GetString("APP_NAME")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:         v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		ProjectRef:        v.GetString("AUTH_PROJECT_REF"),
		Issuer:            v.GetString("AUTH_ISSUER"),
	}

	cfg.Session = SessionConfig{
		Driver:          strings.ToLower(v.GetString("SESSION_STORAGE_DRIVER")),
		ClientCookie:    v.GetString("SESSION_CLIENT_COOKIE"),
		TabCookie:       v.GetString("SESSION_TAB_COOKIE"),
		ClientCookieTTL: parseDuration(v.GetString("SESSION_CLIENT_COOKIE_TTL"), 365*24*time.Hour),
		DurableTTL:      parseDuration(v.GetString("SESSION_DURABLE_TTL"), 30*24*time.Hour),
		TransientTTL:    parseDuration(v.GetString("SESSION_TRANSIENT_TTL"), 12*time.Hour),
		CookieDomain:    v.GetString("SESSION_COOKIE_DOMAIN"),
		SecureCookies:   v.GetBool("SESSION_SECURE_COOKIES"),
	}

	cfg.Admin = AdminConfig{
		Revalidate: v.GetBool("ADMIN_REVALIDATE"),
	}

	cfg.Hardening = HardeningConfig{
		RateLimit:       v.GetBool("HARDENING_RATE_LIMIT"),
		CSRF:            v.GetBool("HARDENING_CSRF"),
		SessionRecord:   v.GetBool("HARDENING_SESSION_RECORD"),
		SanitizeInput:   v.GetBool("HARDENING_SANITIZE_INPUT"),
		PasswordPolicy:  v.GetBool("HARDENING_PASSWORD_POLICY"),
		SecurityHeaders: v.GetBool("HARDENING_SECURITY_HEADERS"),
		CSRFSecret:      v.GetString("HARDENING_CSRF_SECRET"),
		CSRFTTL:         parseDuration(v.GetString("HARDENING_CSRF_TTL"), time.Hour),
		SessionTTL:      parseDuration(v.GetString("HARDENING_SESSION_TTL"), 24*time.Hour),
	}

	cfg.Mail = MailConfig{
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromName:       v.GetString("MAIL_FROM_NAME"),
		FromEmail:      v.GetString("MAIL_FROM_EMAIL"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), 2*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_NAME", "Rajac Admission Portal")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rajac_admission")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "1h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("AUTH_PROJECT_REF", "rajac")
	v.SetDefault("AUTH_ISSUER", "rajac-admission-portal")

	v.SetDefault("SESSION_STORAGE_DRIVER", StorageDriverRedis)
	v.SetDefault("SESSION_CLIENT_COOKIE", "rajac_client")
	v.SetDefault("SESSION_TAB_COOKIE", "rajac_tab")
	v.SetDefault("SESSION_CLIENT_COOKIE_TTL", "8760h")
	v.SetDefault("SESSION_DURABLE_TTL", "720h")
	v.SetDefault("SESSION_TRANSIENT_TTL", "12h")
	v.SetDefault("SESSION_COOKIE_DOMAIN", "")
	v.SetDefault("SESSION_SECURE_COOKIES", false)

	v.SetDefault("ADMIN_REVALIDATE", false)

	v.SetDefault("HARDENING_RATE_LIMIT", false)
	v.SetDefault("HARDENING_CSRF", false)
	v.SetDefault("HARDENING_SESSION_RECORD", false)
	v.SetDefault("HARDENING_SANITIZE_INPUT", false)
	v.SetDefault("HARDENING_PASSWORD_POLICY", false)
	v.SetDefault("HARDENING_SECURITY_HEADERS", true)
	v.SetDefault("HARDENING_CSRF_SECRET", "dev_csrf_secret")
	v.SetDefault("HARDENING_CSRF_TTL", "1h")
	v.SetDefault("HARDENING_SESSION_TTL", "24h")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "Rajac International Schools")
	v.SetDefault("MAIL_FROM_EMAIL", "admissions@rajac.example")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_RETRY_DELAY", "2s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
