package handlers

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/middleware"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

const oauthStateCookie = "oauth_state"

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	google        *services.GoogleAuthService
	jwt           *config.JWTConfig
	frontendURL   string
	secureCookies bool
	logger        *zap.Logger
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(google *services.GoogleAuthService, cfg *config.Config, logger *zap.Logger) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		google:        google,
		jwt:           &cfg.JWT,
		frontendURL:   cfg.Frontend.BaseURL,
		secureCookies: cfg.IsProduction(),
		logger:        logger,
	}
}

func (h *GoogleAuthHandler) notConfigured(w http.ResponseWriter) bool {
	if h.google.Enabled() {
		return false
	}
	utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Google sign-in not configured", "")
	return true
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Failure 503 {object} dto.ErrorResponse "Google sign-in not configured"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.notConfigured(w) {
		return
	}

	authURL, state := h.google.LoginURL()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{AuthURL: authURL, State: state})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Handle Google OAuth callback and redirect to the web client with a session token
// @Tags authentication
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State parameter for CSRF protection"
// @Success 302 "Redirect to the web client"
// @Failure 400 {object} dto.ErrorResponse "Invalid state or code"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 403 {object} dto.ErrorResponse "Google email not verified"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.notConfigured(w) {
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "OAuth state does not match")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	user, err := h.google.SignIn(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	token, _, err := middleware.GenerateToken(user, h.jwt, time.Now())
	if err != nil {
		writeServiceError(w, h.logger, apperrors.Internal(err, "failed to generate token"))
		return
	}

	http.Redirect(w, r, h.frontendURL+"/auth/callback#token="+url.QueryEscape(token), http.StatusFound)
}
