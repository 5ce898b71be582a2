package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/service"
	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/internal/validation"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/response"
)

const actorAdmin = "admin"

type reviewService interface {
	Update(ctx context.Context, admin models.AdminUser, id string, req dto.ReviewUpdateRequest, term string) (*dto.AdminDashboard, error)
}

type exportService interface {
	Export(ctx context.Context, format, term string) (*service.ExportFile, error)
}

// AdminHandler serves the staff actions.
type AdminHandler struct {
	reviews   reviewService
	exports   exportService
	validator *validation.Validator
	metrics   *service.MetricsService
	logger    *zap.Logger
	records   bool
}

// NewAdminHandler creates an admin handler. records enables session records on sign-in.
func NewAdminHandler(reviews reviewService, exports exportService, validator *validation.Validator, metrics *service.MetricsService, logger *zap.Logger, records bool) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{reviews: reviews, exports: exports, validator: validator, metrics: metrics, logger: logger, records: records}
}

// Login godoc
// @Summary Authenticate a staff member
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.AdminLoginRequest true "Staff credentials"
// @Success 200 {object} response.Envelope{data=dto.AdminAuthResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	if violations := h.validator.Struct(req); len(violations) > 0 {
		response.Error(c, validation.ViolationsError(violations))
		return
	}

	sessReq := sessionFromContext(c)
	ctx := c.Request.Context()
	admin, err := sessReq.Admin(ctx).SignIn(ctx, req.Email, req.Password)
	h.metrics.RecordAuthEvent(actorAdmin, "sign_in", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.records {
		if _, err := sessReq.Records().Create(ctx, admin.ID, session.UserTypeAdmin); err != nil {
			h.logger.Warn("failed to create session record", zap.String("admin_id", admin.ID), zap.Error(err))
		}
	}
	response.JSON(c, http.StatusOK, dto.AdminAuthResponse{Admin: *admin, Redirect: service.RouteAdminPanel})
}

// Logout godoc
// @Summary Sign the staff member out
// @Tags Admin
// @Produce json
// @Success 303 {object} response.Envelope
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	sessReq := sessionFromContext(c)
	ctx := c.Request.Context()
	sessReq.Admin(ctx).SignOut(ctx)
	if h.records {
		if err := sessReq.Records().Clear(ctx); err != nil {
			h.logger.Warn("failed to clear session record", zap.Error(err))
		}
	}
	h.metrics.RecordAuthEvent(actorAdmin, "sign_out", nil)
	response.Redirect(c, service.RouteAdminLogin)
}

// UpdateApplication godoc
// @Summary Update an application
// @Description Only the provided fields change; the reloaded review list is returned
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param search query string false "Search term applied to the reloaded list"
// @Param payload body dto.ReviewUpdateRequest true "Reviewer edits"
// @Success 200 {object} response.Envelope{data=dto.AdminDashboard}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id} [patch]
func (h *AdminHandler) UpdateApplication(c *gin.Context) {
	var req dto.ReviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}
	admin := adminFromContext(c)
	if admin == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.reviews.Update(c.Request.Context(), *admin, c.Param("id"), req, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// ExportApplications godoc
// @Summary Export applications
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/applications/export [get]
func (h *AdminHandler) ExportApplications(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), c.Query("format"), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
