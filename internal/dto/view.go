package dto

import "github.com/rajac/admission-portal/internal/models"

// Page names rendered by the portal.
const (
	PageIndex        = "index"
	PageAuth         = "auth"
	PageForm         = "form"
	PageEnterOutlook = "enter-outlook"
	PagePayFees      = "pay-fees"
	PageDashboard    = "dashboard"
	PageAdminLogin   = "admin-login"
	PageAdminPanel   = "admin-dashboard"
	PageNotFound     = "not-found"
)

// View is the body of a rendered page.
type View struct {
	Page     string            `json:"page"`
	Identity *models.Identity  `json:"identity,omitempty"`
	Admin    *models.AdminUser `json:"admin,omitempty"`
	Data     interface{}       `json:"data,omitempty"`
}
