package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajac/admission-portal/internal/models"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/response"
)

const (
	contextParentKey = "currentParent"
	contextAdminKey  = "currentAdmin"
)

// RequireParent lets signed-in parents through. Page loads are redirected
// to loginPath; other requests get UNAUTHORIZED.
func RequireParent(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := SessionFrom(c)
		if req == nil {
			deny(c, loginPath)
			return
		}
		state := req.Parent(c.Request.Context()).State()
		if !state.SignedIn() {
			deny(c, loginPath)
			return
		}
		c.Set(contextParentKey, state.Identity)
		c.Next()
	}
}

// RequireAdmin lets signed-in staff through.
func RequireAdmin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := SessionFrom(c)
		if req == nil {
			deny(c, loginPath)
			return
		}
		admin := req.Admin(c.Request.Context()).State().Admin
		if admin == nil {
			deny(c, loginPath)
			return
		}
		c.Set(contextAdminKey, admin)
		c.Next()
	}
}

// ParentFrom returns the identity stored by RequireParent.
func ParentFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(contextParentKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}

// AdminFrom returns the staff record stored by RequireAdmin.
func AdminFrom(c *gin.Context) *models.AdminUser {
	v, ok := c.Get(contextAdminKey)
	if !ok {
		return nil
	}
	admin, _ := v.(*models.AdminUser)
	return admin
}

func deny(c *gin.Context, loginPath string) {
	if c.Request.Method == http.MethodGet {
		response.Redirect(c, loginPath)
	} else {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Please sign in to continue."))
	}
	c.Abort()
}
