package dto

import "github.com/rajac/admission-portal/internal/models"

// SignUpRequest registers a parent account.
type SignUpRequest struct {
	Email      string `json:"email" form:"email" validate:"required,simple_email,max=254"`
	Password   string `json:"password" form:"password" validate:"required,min=6,max=72"`
	FatherName string `json:"fatherName" form:"fatherName" validate:"required,min=2,max=100"`
}

// SignInRequest authenticates a parent.
type SignInRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AdminLoginRequest authenticates a staff member.
type AdminLoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResponse is returned after a parent authenticates.
type AuthResponse struct {
	User     models.Identity `json:"user"`
	Redirect string          `json:"redirect"`
}

// AdminAuthResponse is returned after a staff member authenticates.
type AdminAuthResponse struct {
	Admin    models.AdminUser `json:"admin"`
	Redirect string           `json:"redirect"`
}

// CSRFResponse carries a single-use form token.
type CSRFResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
