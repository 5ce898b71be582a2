package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/service"
	"github.com/rajac/admission-portal/internal/session"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/response"
)

const actorParent = "parent"

type landingService interface {
	Landing(ctx context.Context, identity *models.Identity) string
}

// AuthHandler wires the parent auth actions to the session store.
type AuthHandler struct {
	admissions landingService
	metrics    *service.MetricsService
	logger     *zap.Logger
	records    bool
}

// NewAuthHandler creates a new handler. records enables session records on sign-in.
func NewAuthHandler(admissions landingService, metrics *service.MetricsService, logger *zap.Logger, records bool) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{admissions: admissions, metrics: metrics, logger: logger, records: records}
}

// SignUp godoc
// @Summary Register a parent
// @Description Creates the account, signs it in and picks the landing route
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.SignUpRequest true "Sign-up payload"
// @Success 200 {object} response.Envelope{data=dto.AuthResponse}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sign-up payload"))
		return
	}

	sessReq := sessionFromContext(c)
	ctx := c.Request.Context()
	sessReq.Parent(ctx)
	sess, err := sessReq.Client().SignUp(ctx, req.Email, req.Password, models.UserMetadata{FatherName: req.FatherName})
	h.metrics.RecordAuthEvent(actorParent, "sign_up", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signedIn(c, sessReq, sess)
}

// Login godoc
// @Summary Authenticate a parent
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.SignInRequest true "Login payload"
// @Success 200 {object} response.Envelope{data=dto.AuthResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	sessReq := sessionFromContext(c)
	ctx := c.Request.Context()
	sessReq.Parent(ctx)
	sess, err := sessReq.Client().SignInWithPassword(ctx, req.Email, req.Password)
	h.metrics.RecordAuthEvent(actorParent, "sign_in", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signedIn(c, sessReq, sess)
}

// Logout godoc
// @Summary Sign the parent out
// @Description Always succeeds; remote failures are logged
// @Tags Authentication
// @Produce json
// @Success 303 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessReq := sessionFromContext(c)
	ctx := c.Request.Context()
	sessReq.Parent(ctx).SignOut(ctx)
	h.clearRecord(ctx, sessReq)
	h.metrics.RecordAuthEvent(actorParent, "sign_out", nil)
	response.Redirect(c, service.RouteAuth)
}

// PageHide godoc
// @Summary Page lifecycle beacon
// @Description Clears the durable tokens so the next full load starts signed out
// @Tags Authentication
// @Param event query string true "pagehide or beforeunload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/pagehide [post]
func (h *AuthHandler) PageHide(c *gin.Context) {
	sessReq := sessionFromContext(c)
	ctx := c.Request.Context()
	if err := sessReq.Parent(ctx).HandlePageHide(ctx, c.Query("event")); err != nil {
		response.Error(c, err)
		return
	}
	h.clearRecord(ctx, sessReq)
	response.NoContent(c)
}

func (h *AuthHandler) signedIn(c *gin.Context, sessReq *session.Request, sess *models.Session) {
	ctx := c.Request.Context()
	if h.records {
		if _, err := sessReq.Records().Create(ctx, sess.User.ID, session.UserTypeParent); err != nil {
			h.logger.Warn("failed to create session record", zap.String("user_id", sess.User.ID), zap.Error(err))
		}
	}
	identity := sess.User
	response.JSON(c, http.StatusOK, dto.AuthResponse{
		User:     identity,
		Redirect: h.admissions.Landing(ctx, &identity),
	})
}

func (h *AuthHandler) clearRecord(ctx context.Context, sessReq *session.Request) {
	if !h.records {
		return
	}
	if err := sessReq.Records().Clear(ctx); err != nil {
		h.logger.Warn("failed to clear session record", zap.Error(err))
	}
}
