package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/handlers"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository/repotest"
	"AMUZZ_BACK-END/internal/services"
)

func TestEndToEndScenario(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodPost, "/api/register", dto.RegisterRequest{
		FullName:        "Jane Doe",
		Username:        "janed",
		Email:           "jane@example.com",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "jane@example.com", decode[dto.RegisterResponse](t, rec).Email)

	rec = h.request(http.MethodGet, "/api/verify-email/"+h.mailer.lastToken(t), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.request(http.MethodPost, "/api/token", dto.LoginRequest{Email: "jane@example.com", Password: "Secret1!"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[dto.LoginResponse](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "bearer", login.TokenType)
	assert.EqualValues(t, 3600, login.ExpiresIn)
	assert.True(t, login.User.EmailVerified)
	_, err := time.Parse(time.RFC3339, login.ExpiresAt)
	assert.NoError(t, err)
	token := login.Token

	rec = h.request(http.MethodPost, "/api/playlists", dto.CreatePlaylistRequest{Name: "Focus"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	playlist := decode[dto.PlaylistResponse](t, rec)
	assert.NotEmpty(t, playlist.ID)

	song := dto.AddSongRequest{SongID: "abc123", Name: "Track", Artist: "Artist", AudioURL: "https://x/a.mp3"}
	rec = h.request(http.MethodPost, "/api/playlists/"+playlist.ID+"/songs", song, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.request(http.MethodPost, "/api/playlists/"+playlist.ID+"/songs", song, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Song already in playlist", decode[dto.AddSongResponse](t, rec).Message)
	assert.Equal(t, 1, h.store.SongCount())

	rec = h.request(http.MethodDelete, "/api/playlists/"+playlist.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.request(http.MethodGet, "/api/playlists", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = h.request(http.MethodGet, "/api/playlists/"+playlist.ID+"/songs", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	h := newHarness(t)

	valid := map[string]any{
		"full_name":        "Jane Doe",
		"username":         "janed",
		"email":            "jane@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}

	mismatch := map[string]any{}
	for k, v := range valid {
		mismatch[k] = v
	}
	mismatch["confirm_password"] = "Other1!!"
	rec := h.request(http.MethodPost, "/api/register", mismatch, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "passwords do not match", decode[dto.ErrorResponse](t, rec).Message)

	rec = h.request(http.MethodPost, "/api/register", `{"email":"jane@example.com","unexpected":true}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodPost, "/api/register", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	badDate := map[string]any{}
	for k, v := range valid {
		badDate[k] = v
	}
	badDate["date_of_birth"] = "01/02/1990"
	rec = h.request(http.MethodPost, "/api/register", badDate, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodPost, "/api/register", valid, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	upper := map[string]any{}
	for k, v := range valid {
		upper[k] = v
	}
	upper["email"] = "JANE@EXAMPLE.COM"
	upper["username"] = "another"
	rec = h.request(http.MethodPost, "/api/register", upper, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, h.store.UserCount())
}

func TestRegisterMailFailure(t *testing.T) {
	h := newHarness(t)
	h.mailer.err = errors.New("smtp down")

	rec := h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        "Jane Doe",
		"username":         "janed",
		"email":            "jane@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "smtp down")
	assert.Equal(t, 0, h.store.UserCount())
}

func TestLoginBeforeVerification(t *testing.T) {
	h := newHarness(t)
	rec := h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        "Jane Doe",
		"username":         "janed",
		"email":            "jane@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.request(http.MethodPost, "/api/token", dto.LoginRequest{Email: "jane@example.com", Password: "Secret1!"}, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decode[dto.UnverifiedEmailResponse](t, rec)
	assert.True(t, body.EmailNotVerified)
	assert.Equal(t, "jane@example.com", body.Email)

	rec = h.request(http.MethodPost, "/api/token", dto.LoginRequest{Email: "jane@example.com", Password: "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.request(http.MethodPost, "/api/token", dto.LoginRequest{Email: "ghost@example.com", Password: "Secret1!"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEmailEndpoints(t *testing.T) {
	h := newHarness(t)
	rec := h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        "Jane Doe",
		"username":         "janed",
		"email":            "jane@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := h.mailer.lastToken(t)

	rec = h.request(http.MethodGet, "/api/verify-email/not-a-token", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodPost, "/api/verify-email", dto.VerifyEmailRequest{Token: token}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email verified successfully", decode[dto.MessageResponse](t, rec).Message)

	rec = h.request(http.MethodGet, "/api/verify-email/"+token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email already verified", decode[dto.MessageResponse](t, rec).Message)

	rec = h.request(http.MethodPost, "/api/resend-verification", dto.ResendVerificationRequest{Email: "jane@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResendVerificationRateLimited(t *testing.T) {
	h := newHarness(t)
	rec := h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        "Jane Doe",
		"username":         "janed",
		"email":            "jane@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.request(http.MethodPost, "/api/resend-verification", dto.ResendVerificationRequest{Email: "jane@example.com"}, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decode[dto.RateLimitedResponse](t, rec)
	assert.InDelta(t, 3600, body.WaitTime, 5)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = h.request(http.MethodPost, "/api/resend-verification", dto.ResendVerificationRequest{Email: "ghost@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutes(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/protected", "/api/me", "/api/playlists"} {
		rec := h.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	token := h.registerAndLogin("janed")

	rec := h.request(http.MethodGet, "/api/protected", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, janed@example.com", decode[dto.MessageResponse](t, rec).Message)

	rec = h.request(http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[dto.UserResponse](t, rec)
	assert.Equal(t, "janed", me.Username)
	assert.False(t, me.IsPremium)
}

func TestPlaylistOwnership(t *testing.T) {
	h := newHarness(t)
	alice := h.registerAndLogin("alice")
	bob := h.registerAndLogin("bob")

	rec := h.request(http.MethodPost, "/api/playlists", dto.CreatePlaylistRequest{Name: "Mine"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	playlist := decode[dto.PlaylistResponse](t, rec)

	song := dto.AddSongRequest{SongID: "1", Name: "Track", Artist: "Artist", AudioURL: "https://x/a.mp3"}
	rec = h.request(http.MethodPost, "/api/playlists/"+playlist.ID+"/songs", song, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	entry := decode[dto.AddSongResponse](t, rec).Song

	songPath := "/api/playlists/" + playlist.ID + "/songs"
	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, songPath, nil},
		{http.MethodPost, songPath, song},
		{http.MethodDelete, songPath + "/" + entry.ID, nil},
		{http.MethodDelete, "/api/playlists/" + playlist.ID, nil},
		{http.MethodDelete, "/api/playlists/" + uuid.NewString(), nil},
	} {
		rec := h.request(tc.method, tc.path, tc.body, bob)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec = h.request(http.MethodGet, "/api/playlists/not-a-uuid/songs", nil, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodDelete, songPath+"/"+entry.ID, nil, alice)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, h.store.SongCount())
}

func TestAddSongRejectsBadURL(t *testing.T) {
	h := newHarness(t)
	token := h.registerAndLogin("janed")

	rec := h.request(http.MethodPost, "/api/playlists", dto.CreatePlaylistRequest{Name: "Focus"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	playlist := decode[dto.PlaylistResponse](t, rec)

	rec = h.request(http.MethodPost, "/api/playlists/"+playlist.ID+"/songs",
		dto.AddSongRequest{SongID: "1", Name: "Track", Artist: "Artist", AudioURL: "javascript:alert(1)"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodPost, "/api/playlists/"+playlist.ID+"/songs",
		map[string]any{"song_id": "1", "name": "Track", "audio_url": "https://x/a.mp3"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMusicByMood(t *testing.T) {
	h := newHarness(t)
	h.catalog.tracks = []models.Track{{ID: "1", Name: "Calm", Artist: "Lakey", Audio: "https://a/1.mp3"}}

	rec := h.request(http.MethodGet, "/api/music/mood/happy", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tracks := decode[[]dto.TrackResponse](t, rec)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Lakey", tracks[0].Artist)
	assert.Equal(t, []string{}, tracks[0].Genres)

	h.catalog.err = errors.New("jamendo: http 502")
	rec = h.request(http.MethodGet, "/api/music/mood/happy", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "502")
}

func TestCheckoutSession(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodPost, "/api/create-checkout-session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test", decode[dto.CheckoutSessionResponse](t, rec).URL)
	assert.Empty(t, h.gateway.lastCheckout.CustomerEmail)

	token := h.registerAndLogin("janed")
	rec = h.request(http.MethodPost, "/api/create-checkout-session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "janed@example.com", h.gateway.lastCheckout.CustomerEmail)
	assert.Equal(t, "http://front.test/payment-success", h.gateway.lastCheckout.SuccessURL)
}

func TestWebhookUpgradesUser(t *testing.T) {
	h := newHarness(t)
	token := h.registerAndLogin("janed")

	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_1","object":"checkout.session","metadata":{"email":"janed@example.com"}}}}`
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})

	req := newWebhookRequest(string(signed.Payload), signed.Header)
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", decode[dto.WebhookAckResponse](t, rec).Status)

	rec = h.request(http.MethodGet, "/api/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.UserResponse](t, rec).IsPremium)

	rec = serve(h, newWebhookRequest(payload, "t=1,v1=bad"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid payload", decode[dto.ErrorResponse](t, rec).Error)

	oversized := strings.Repeat("a", 70<<10)
	rec = serve(h, newWebhookRequest(oversized, signed.Header))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleSignInFlow(t *testing.T) {
	h := newHarness(t)
	h.google.profile = &services.GoogleProfile{Email: "jane@gmail.com", Name: "Jane", EmailVerified: true}

	rec := h.request(http.MethodGet, "/api/auth/google/login", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[dto.GoogleLoginResponse](t, rec)
	assert.Contains(t, login.AuthURL, login.State)

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.True(t, stateCookie.HttpOnly)

	req := newRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=wrong", "")
	req.AddCookie(stateCookie)
	rec = serve(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = newRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state="+login.State, "")
	req.AddCookie(stateCookie)
	rec = serve(h, req)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "http://front.test/auth/callback#token="), location)
	sessionToken := strings.TrimPrefix(location, "http://front.test/auth/callback#token=")

	rec = h.request(http.MethodGet, "/api/me", nil, sessionToken)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[dto.UserResponse](t, rec)
	assert.Equal(t, "jane@gmail.com", me.Email)
	assert.True(t, me.EmailVerified)
}

func TestGoogleNotConfigured(t *testing.T) {
	cfg := testConfig()
	google := handlers.NewGoogleAuthHandler(services.NewGoogleAuthService(nil, repotest.NewMemoryStore(), time.Second, zap.NewNop()), cfg, zap.NewNop())

	rec := httptest.NewRecorder()
	google.GoogleLogin(rec, newRequest(http.MethodGet, "/api/auth/google/login", ""))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	google.GoogleCallback(rec, newRequest(http.MethodGet, "/api/auth/google/callback?code=a&state=b", ""))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.request(http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.store.PingErr = errors.New("connection refused")
	rec = h.request(http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = h.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `amuzz_http_requests_total{method="GET",route="GET /readyz",status="503"}`)
}

func TestRootAndUnknownRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Amuzz backend is running.", rec.Body.String())

	rec = h.request(http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.request(http.MethodPut, "/api/playlists", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func newRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func newWebhookRequest(payload, signature string) *http.Request {
	req := newRequest(http.MethodPost, "/api/webhook", payload)
	req.Header.Set("Stripe-Signature", signature)
	return req
}

func serve(h *harness, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestRefreshSession(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodGet, "/api/refresh-session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := h.registerAndLogin("janed")
	rec = h.request(http.MethodGet, "/api/refresh-session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[dto.RefreshSessionResponse](t, rec)
	assert.Equal(t, "janed@example.com", body.User.Email)
	assert.True(t, body.User.EmailVerified)
}

func TestRegisterTrimsPaddedFields(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        " Jane Doe ",
		"username":         " janed ",
		"email":            " Jane@Example.com ",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "jane@example.com", decode[dto.RegisterResponse](t, rec).Email)

	rec = h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        "Al",
		"username":         "  a ",
		"email":            "al@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, h.store.UserCount())
}
