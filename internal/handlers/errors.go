package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/middleware"
	"AMUZZ_BACK-END/internal/utils"
)

// writeServiceError maps a service error onto the HTTP response. Internal
// details are logged, never returned.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("unclassified error", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
		return
	}

	status := appErr.Kind.StatusCode()
	switch appErr.Kind {
	case apperrors.KindInternal:
		logger.Error("internal error", zap.Error(err))
		utils.WriteErrorResponse(w, status, appErr.Kind.String(), "An unexpected error occurred")
	case apperrors.KindUpstream:
		logger.Error("upstream error", zap.Error(err))
		utils.WriteErrorResponse(w, status, appErr.Kind.String(), appErr.Message)
	case apperrors.KindRateLimited:
		wait := int64(math.Ceil(appErr.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.FormatInt(wait, 10))
		utils.WriteJSONResponse(w, status, dto.RateLimitedResponse{
			Error:    appErr.Kind.String(),
			Message:  appErr.Message,
			WaitTime: wait,
		})
	default:
		utils.WriteErrorResponse(w, status, appErr.Kind.String(), appErr.Message)
	}
}

// requireClaims returns the session claims or writes a 401
func requireClaims(w http.ResponseWriter, r *http.Request) (*middleware.JWTClaims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return nil, false
	}
	return claims, true
}

// pathUUID parses a UUID path parameter or writes a 400
func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "invalid "+label+" id")
		return uuid.Nil, false
	}
	return id, true
}
