package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/pkg/response"
)

// CSRFHandler issues single-use form tokens.
type CSRFHandler struct {
	csrf *session.CSRF
}

// NewCSRFHandler creates a CSRF handler.
func NewCSRFHandler(csrf *session.CSRF) *CSRFHandler {
	return &CSRFHandler{csrf: csrf}
}

// Issue godoc
// @Summary Issue a CSRF token
// @Description The token is valid for one state-changing request from this browser
// @Tags Security
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.CSRFResponse}
// @Router /csrf [get]
func (h *CSRFHandler) Issue(c *gin.Context) {
	req := sessionFromContext(c)
	token, expiresAt, err := h.csrf.Issue(c.Request.Context(), req.Durable(), req.ClientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CSRFResponse{Token: token, ExpiresAt: expiresAt.Unix()})
}
