package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/service"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/response"
)

type admissionService interface {
	Submit(ctx context.Context, identity *models.Identity, raw []byte) (*models.AdmissionForm, error)
	BookSlot(ctx context.Context, identity *models.Identity, req dto.BookSlotRequest) error
}

// FormHandler handles the parent form actions.
type FormHandler struct {
	service admissionService
}

// NewFormHandler creates a form handler.
func NewFormHandler(svc admissionService) *FormHandler {
	return &FormHandler{service: svc}
}

// Submit godoc
// @Summary Submit the admission form
// @Description One submission per parent; the next step is exam booking
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.AdmissionFormRequest true "Admission form"
// @Success 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /form [post]
func (h *FormHandler) Submit(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}
	if _, err := h.service.Submit(c.Request.Context(), parentFromContext(c), raw); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, service.RouteEnterOutlook)
}

// BookSlot godoc
// @Summary Book the entrance exam slot
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.BookSlotRequest true "Exam slot"
// @Success 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enter-outlook [post]
func (h *FormHandler) BookSlot(c *gin.Context) {
	var req dto.BookSlotRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	if err := h.service.BookSlot(c.Request.Context(), parentFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, service.RoutePayFees)
}
