package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/middleware"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth   *services.AuthService
	jwt    *config.JWTConfig
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(auth *services.AuthService, jwtCfg *config.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwtCfg, logger: logger}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an unverified account and send a verification email
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.RegisterResponse "Verification email sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email or username already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	input := services.RegisterInput{
		FullName:        req.FullName,
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := utils.ParseDate(*req.DateOfBirth)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "Use YYYY-MM-DD format for date_of_birth")
			return
		}
		input.DateOfBirth = &dob
	}

	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.RegisterResponse{
		Message: "Registration successful. Please check your email to verify your account.",
		Email:   user.Email,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate a verified user and return a bearer token
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "User login credentials"
// @Success 200 {object} dto.LoginResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.UnverifiedEmailResponse "Email not verified"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/token [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if apperrors.Is(err, apperrors.KindForbidden) && user != nil {
		utils.WriteJSONResponse(w, http.StatusForbidden, dto.UnverifiedEmailResponse{
			Error:            "Email not verified",
			Message:          "Please verify your email before logging in",
			EmailNotVerified: true,
			Email:            user.Email,
		})
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	now := time.Now()
	token, expiresAt, err := middleware.GenerateToken(user, h.jwt, now)
	if err != nil {
		writeServiceError(w, h.logger, apperrors.Internal(err, "failed to generate token"))
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int64(expiresAt.Sub(now).Seconds()),
		ExpiresAt: utils.FormatTimestamp(expiresAt),
		User:      toUserResponse(user),
	})
}

// VerifyEmail handles the link sent by email
// @Summary Verify email address
// @Description Consume a verification token from the emailed link
// @Tags authentication
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} dto.MessageResponse "Email verified or already verified"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /api/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, r.PathValue("token"))
}

// VerifyEmailPost verifies a token sent in the request body
// @Summary Verify email address
// @Description Consume a verification token sent as JSON
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verification token"
// @Success 200 {object} dto.MessageResponse "Email verified or already verified"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /api/verify-email [post]
func (h *AuthHandler) VerifyEmailPost(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	h.verify(w, r, req.Token)
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request, token string) {
	result, err := h.auth.VerifyEmail(r.Context(), token)
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound, apperrors.KindExpired:
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid token", err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	message := "Email verified successfully"
	if result.AlreadyVerified {
		message = "Email already verified"
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: message})
}

// ResendVerification sends a fresh verification email
// @Summary Resend verification email
// @Description Issue a new verification token once the cooldown has passed
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ResendVerificationRequest true "Account email"
// @Success 200 {object} dto.MessageResponse "Verification email sent"
// @Failure 400 {object} dto.ErrorResponse "Email already verified"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 429 {object} dto.RateLimitedResponse "Cooldown still running"
// @Failure 500 {object} dto.ErrorResponse "Email could not be sent"
// @Router /api/resend-verification [post]
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendVerificationRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if err := h.auth.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Verification email sent"})
}

// Protected echoes the session identity
// @Summary Protected test route
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/protected [get]
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Hello, " + claims.Email})
}

// Me returns the signed-in user's profile
// @Summary Get current user
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(r.Context(), claims.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(user))
}

// RefreshSession returns the signed-in user wrapped for the web client
// @Summary Refresh session
// @Description Reload the current user's profile, e.g. after a premium upgrade
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RefreshSessionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/refresh-session [get]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(r.Context(), claims.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.RefreshSessionResponse{User: toUserResponse(user)})
}
