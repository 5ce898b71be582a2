package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/repository"
	"github.com/rajac/admission-portal/internal/validation"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/jobs"
)

type authRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, session *models.AuthSession) error
	FindSession(ctx context.Context, id string) (*models.AuthSession, error)
	FindSessionByRefreshToken(ctx context.Context, token string) (*models.AuthSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	// EnforceStrength requires sign-up passwords to pass the strength check.
	EnforceStrength bool
}

// AuthService issues and validates parent sessions.
type AuthService struct {
	repo      authRepository
	validator *validation.Validator
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authRepository, validate *validation.Validator, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = time.Hour
	}
	if config.RefreshTokenExpiry <= 0 {
		config.RefreshTokenExpiry = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// SignUp registers a parent and signs them in.
func (s *AuthService) SignUp(ctx context.Context, req dto.SignUpRequest) (*models.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FatherName = strings.TrimSpace(req.FatherName)
	if violations := s.validator.Struct(req); len(violations) > 0 {
		return nil, validation.ViolationsError(violations)
	}
	if s.config.EnforceStrength {
		if strength := validation.PasswordStrength(req.Password); !strength.Valid {
			violations := make([]validation.Violation, 0, len(strength.Feedback))
			for _, msg := range strength.Feedback {
				violations = append(violations, validation.Violation{Path: "password", Message: msg})
			}
			return nil, validation.ViolationsError(violations)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	meta, err := json.Marshal(models.UserMetadata{FatherName: req.FatherName})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode metadata")
	}

	user := &models.User{Email: req.Email, EncryptedPassword: string(hash), RawUserMetaData: meta}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "User already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not create your account. Please try again.")
	}

	s.logger.Info("parent signed up", zap.String("user_id", user.ID))
	return s.issueSession(ctx, user)
}

// SignIn authenticates a parent with email and password.
func (s *AuthService) SignIn(ctx context.Context, req dto.SignInRequest) (*models.Session, error) {
	if violations := s.validator.Struct(req); len(violations) > 0 {
		return nil, validation.ViolationsError(violations)
	}

	user, err := s.repo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Login failed. Please try again.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")
	}

	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token into a new session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	stored, err := s.repo.FindSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to load session")
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token expired")
	}

	user, err := s.repo.FindUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to load user")
	}
	if err := s.repo.DeleteSession(ctx, stored.ID); err != nil {
		s.logger.Warn("failed to delete rotated session", zap.Error(err))
	}
	return s.issueSession(ctx, user)
}

// SignOut ends the server-side session behind an access token. Expired
// tokens are still accepted so stale clients can sign out.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.parse(accessToken, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSession(ctx, claims.SessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to end session")
	}
	return nil
}

// HandleSignOutJob ends the session named by a queued sign-out job whose
// payload is the access token.
func (s *AuthService) HandleSignOutJob(ctx context.Context, job jobs.Job) error {
	token, ok := job.Payload.(string)
	if !ok || token == "" {
		return fmt.Errorf("sign-out job: unexpected payload %T", job.Payload)
	}
	if err := s.SignOut(ctx, token); err != nil {
		if appErrors.HasCode(err, appErrors.ErrUnauthorized.Code) {
			s.logger.Debug("dropping sign-out for unusable token", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// GetUser resolves an access token to its identity, rejecting tokens whose
// session has ended. The remote client calls it when restoring a session.
func (s *AuthService) GetUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	claims, err := s.parse(accessToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindSession(ctx, claims.SessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has ended")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to load session")
	}
	return &models.Identity{ID: claims.Subject, Email: claims.Email, FatherName: claims.FatherName}, nil
}

func (s *AuthService) parse(tokenString string, opts ...jwt.ParserOption) (*models.AuthClaims, error) {
	opts = append(opts, jwt.WithTimeFunc(s.now))
	token, err := jwt.ParseWithClaims(tokenString, &models.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AuthClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*models.Session, error) {
	refresh, err := generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	issuedAt := s.now().UTC()
	row := &models.AuthSession{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    issuedAt.Add(s.config.RefreshTokenExpiry),
		CreatedAt:    issuedAt,
	}
	if err := s.repo.CreateSession(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to persist session")
	}

	identity := user.Identity()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.AuthClaims{
		Email:      identity.Email,
		SessionID:  row.ID,
		FatherName: identity.FatherName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.Session{
		AccessToken:  signed,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		SessionID:    row.ID,
		User:         identity,
	}, nil
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
