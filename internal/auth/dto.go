package auth

import (
	"github.com/divinestore/storefront-backend/internal/profiles"
)

// Credentials are the email and password sent to a login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries a Google-issued ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// RegistrationRequest is the reseller signup payload.
type RegistrationRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8"`
	DisplayName   string  `json:"display_name" validate:"required,max=120"`
	Mobile        *string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	GovernmentID1 *string `json:"government_id1,omitempty" validate:"omitempty,max=64"`
	GovernmentID2 *string `json:"government_id2,omitempty" validate:"omitempty,max=64"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// BootstrapRequest provisions the single admin account.
type BootstrapRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Secret      string `json:"secret" validate:"required"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=120"`
}

// RefreshRequest exchanges a refresh token for a new session.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SessionResponse is returned on every successful sign-in.
type SessionResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	Profile      *profiles.ProfileDTO `json:"profile"`
}
