package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/dto"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperrors.Validation("name is required"), http.StatusBadRequest, "name is required"},
		{"conflict", apperrors.Conflict("email is already registered"), http.StatusConflict, "email is already registered"},
		{"not found", fmt.Errorf("wrapped: %w", apperrors.NotFound("playlist not found")), http.StatusNotFound, "playlist not found"},
		{"auth", apperrors.Auth("invalid email or password"), http.StatusUnauthorized, "invalid email or password"},
		{"internal hides cause", apperrors.Internal(errors.New("pq: relation missing"), "failed to save"), http.StatusInternalServerError, "An unexpected error occurred"},
		{"upstream", apperrors.Upstream(errors.New("dial tcp: timeout"), "failed to send verification email"), http.StatusInternalServerError, "failed to send verification email"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.NotContains(t, rec.Body.String(), "pq:")
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestWriteServiceErrorRateLimited(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.NewNop(), apperrors.RateLimited(1500*time.Millisecond, "please wait"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	var body dto.RateLimitedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body.WaitTime)
	assert.Equal(t, "please wait", body.Message)
}

func TestWriteServiceErrorLogsInternalCause(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.New(core), apperrors.Internal(errors.New("connection reset"), "failed to load user"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "internal error", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "connection reset")
}

func TestPathUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/playlists/x", nil)
	req.SetPathValue("id", "not-a-uuid")

	rec := httptest.NewRecorder()
	_, ok := pathUUID(rec, req, "id", "playlist")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid playlist id")

	req.SetPathValue("id", "6f1c7d4e-7a4b-4bb5-9a5e-2a1d3f6c8b90")
	rec = httptest.NewRecorder()
	id, ok := pathUUID(rec, req, "id", "playlist")
	assert.True(t, ok)
	assert.Equal(t, "6f1c7d4e-7a4b-4bb5-9a5e-2a1d3f6c8b90", id.String())
}
