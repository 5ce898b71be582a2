package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/service"
	"github.com/rajac/admission-portal/pkg/response"
)

type pageService interface {
	Gate(ctx context.Context, identity *models.Identity, page string) (service.GateDecision, error)
	Dashboard(ctx context.Context, identity *models.Identity) (*dto.ParentDashboard, error)
}

type adminDashboardService interface {
	Dashboard(ctx context.Context, admin models.AdminUser, term string) (*dto.AdminDashboard, error)
}

// PageHandler renders the portal routes.
type PageHandler struct {
	admissions pageService
	reviews    adminDashboardService
}

// NewPageHandler constructs a page handler.
func NewPageHandler(admissions pageService, reviews adminDashboardService) *PageHandler {
	return &PageHandler{admissions: admissions, reviews: reviews}
}

// Index godoc
// @Summary Landing page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View}
// @Router / [get]
func (h *PageHandler) Index(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.View{Page: dto.PageIndex, Identity: parentFromContext(c)})
}

// Auth godoc
// @Summary Parent sign-in and sign-up page
// @Description Signed-in parents are sent to the form or the dashboard
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View}
// @Success 303 {object} response.Envelope
// @Router /auth [get]
func (h *PageHandler) Auth(c *gin.Context) {
	h.gated(c, dto.PageAuth)
}

// Form godoc
// @Summary Admission form page
// @Description Parents with a submission are sent to the dashboard
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View}
// @Success 303 {object} response.Envelope
// @Router /form [get]
func (h *PageHandler) Form(c *gin.Context) {
	h.gated(c, dto.PageForm)
}

// EnterOutlook godoc
// @Summary Exam slot booking page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View}
// @Success 303 {object} response.Envelope
// @Router /enter-outlook [get]
func (h *PageHandler) EnterOutlook(c *gin.Context) {
	h.gated(c, dto.PageEnterOutlook)
}

// PayFees godoc
// @Summary Fee payment page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View}
// @Success 303 {object} response.Envelope
// @Router /pay-fees [get]
func (h *PageHandler) PayFees(c *gin.Context) {
	h.gated(c, dto.PagePayFees)
}

// Dashboard godoc
// @Summary Parent dashboard
// @Description Application status with its outcome message
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View{data=dto.ParentDashboard}}
// @Success 303 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dashboard [get]
func (h *PageHandler) Dashboard(c *gin.Context) {
	identity, ok := h.gate(c, dto.PageDashboard)
	if !ok {
		return
	}
	data, err := h.admissions.Dashboard(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.View{Page: dto.PageDashboard, Identity: identity, Data: data})
}

// AdminLogin godoc
// @Summary Staff sign-in page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.View}
// @Success 303 {object} response.Envelope
// @Router /admin/login [get]
func (h *PageHandler) AdminLogin(c *gin.Context) {
	if admin := adminFromContext(c); admin != nil {
		response.Redirect(c, service.RouteAdminPanel)
		return
	}
	response.JSON(c, http.StatusOK, dto.View{Page: dto.PageAdminLogin})
}

// AdminDashboard godoc
// @Summary Staff review dashboard
// @Description Applications newest first, filtered by father or student name
// @Tags Pages
// @Produce json
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {object} response.Envelope{data=dto.View{data=dto.AdminDashboard}}
// @Success 303 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *PageHandler) AdminDashboard(c *gin.Context) {
	admin := adminFromContext(c)
	if admin == nil {
		response.Redirect(c, service.RouteAdminLogin)
		return
	}
	data, err := h.reviews.Dashboard(c.Request.Context(), *admin, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.View{Page: dto.PageAdminPanel, Admin: admin, Data: data})
}

// NotFound renders the catch-all page.
func (h *PageHandler) NotFound(c *gin.Context) {
	response.JSON(c, http.StatusNotFound, dto.View{Page: dto.PageNotFound})
}

func (h *PageHandler) gated(c *gin.Context, page string) {
	identity, ok := h.gate(c, page)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, dto.View{Page: page, Identity: identity})
}

// gate applies the page rule and reports whether the page should render.
func (h *PageHandler) gate(c *gin.Context, page string) (*models.Identity, bool) {
	identity := parentFromContext(c)
	decision, err := h.admissions.Gate(c.Request.Context(), identity, page)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !decision.Render() {
		response.Redirect(c, decision.Redirect)
		return nil, false
	}
	return identity, true
}
