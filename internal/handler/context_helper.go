package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rajac/admission-portal/internal/middleware"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/session"
)

// parentFromContext prefers the identity stored by RequireParent and falls
// back to the session store for public pages.
func parentFromContext(c *gin.Context) *models.Identity {
	if identity := middleware.ParentFrom(c); identity != nil {
		return identity
	}
	req := middleware.SessionFrom(c)
	if req == nil {
		return nil
	}
	return req.Parent(c.Request.Context()).State().Identity
}

func adminFromContext(c *gin.Context) *models.AdminUser {
	if admin := middleware.AdminFrom(c); admin != nil {
		return admin
	}
	req := middleware.SessionFrom(c)
	if req == nil {
		return nil
	}
	return req.Admin(c.Request.Context()).State().Admin
}

func sessionFromContext(c *gin.Context) *session.Request {
	return middleware.SessionFrom(c)
}
