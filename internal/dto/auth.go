package dto

import "strings"

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	FullName        string  `json:"full_name" validate:"required,max=120"`
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email,max=120"`
	DateOfBirth     *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Password        string  `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Normalize trims the identity fields; passwords are kept verbatim
func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.DateOfBirth != nil {
		dob := strings.TrimSpace(*r.DateOfBirth)
		r.DateOfBirth = &dob
	}
}

// RegisterResponse is returned once the account awaits email verification
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// LoginResponse represents the response after successful authentication
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UnverifiedEmailResponse is the 403 body for logins before verification
type UnverifiedEmailResponse struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	EmailNotVerified bool   `json:"email_not_verified"`
	Email            string `json:"email"`
}

// VerifyEmailRequest carries a verification token in a POST body
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

func (r *VerifyEmailRequest) Normalize() {
	r.Token = strings.TrimSpace(r.Token)
}

// ResendVerificationRequest asks for a fresh verification email
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ResendVerificationRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// RateLimitedResponse is the 429 body with the remaining cooldown
type RateLimitedResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	WaitTime int64  `json:"wait_time"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	DateOfBirth   *string `json:"date_of_birth,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	IsPremium     bool    `json:"is_premium"`
	CreatedAt     string  `json:"created_at"`
}

// RefreshSessionResponse wraps the current user for session refreshes
type RefreshSessionResponse struct {
	User UserResponse `json:"user"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
