package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/handlers"
	"AMUZZ_BACK-END/internal/middleware"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/payments"
	"AMUZZ_BACK-END/internal/repository/repotest"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

const testWebhookSecret = "whsec_routes_test"

type fakeMailer struct {
	mu   sync.Mutex
	sent []utils.VerificationEmail
	err  error
}

func (m *fakeMailer) SendVerificationEmail(ctx context.Context, msg utils.VerificationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	link, err := url.Parse(m.sent[len(m.sent)-1].VerificationURL)
	require.NoError(t, err)
	return link.Query().Get("token")
}

type fakeCatalog struct {
	tracks []models.Track
	err    error
}

func (c *fakeCatalog) SearchByMood(ctx context.Context, mood string) ([]models.Track, error) {
	return c.tracks, c.err
}

// fakeGateway fakes checkout creation but verifies webhooks for real
type fakeGateway struct {
	*payments.StripeGateway
	lastCheckout payments.CheckoutRequest
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error) {
	g.lastCheckout = req
	return "https://checkout.stripe.com/c/pay/cs_test", nil
}

type fakeGoogle struct {
	profile *services.GoogleProfile
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (g *fakeGoogle) FetchProfile(ctx context.Context, code string) (*services.GoogleProfile, error) {
	return g.profile, nil
}

type harness struct {
	t       *testing.T
	cfg     *config.Config
	store   *repotest.MemoryStore
	mailer  *fakeMailer
	catalog *fakeCatalog
	gateway *fakeGateway
	google  *fakeGoogle
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "routes-test-secret", Issuer: "amuzz", AccessTokenTTL: time.Hour},
		Verification: config.VerificationConfig{
			TokenTTL:       24 * time.Hour,
			ResendCooldown: time.Hour,
		},
		Frontend: config.FrontendConfig{BaseURL: "http://front.test"},
		Stripe: config.StripeConfig{
			SecretKey:     "sk_test",
			WebhookSecret: testWebhookSecret,
			ProductName:   "Amuzz Premium Access",
			UnitAmount:    500,
			Currency:      "eur",
		},
		OutboundTimeout: time.Second,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()

	h := &harness{
		t:       t,
		cfg:     testConfig(),
		store:   repotest.NewMemoryStore(),
		mailer:  &fakeMailer{},
		catalog: &fakeCatalog{},
		google:  &fakeGoogle{},
	}
	h.gateway = &fakeGateway{StripeGateway: payments.NewStripeGateway(&h.cfg.Stripe, nil)}

	authSvc := services.NewAuthService(h.store, h.mailer, h.cfg, logger, services.WithBcryptCost(bcrypt.MinCost))
	playlistSvc := services.NewPlaylistService(h.store, logger)
	musicSvc := services.NewMusicService(h.catalog, nil, logger)
	paymentSvc := services.NewPaymentService(h.gateway, h.store, h.cfg.Frontend.BaseURL, logger)
	googleSvc := services.NewGoogleAuthService(h.google, h.store, time.Second, logger)
	metrics := middleware.NewMetrics()

	mux := http.NewServeMux()
	SetupRoutes(mux, Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, &h.cfg.JWT, logger),
		Playlists: handlers.NewPlaylistsHandler(playlistSvc, logger),
		Music:     handlers.NewMusicHandler(musicSvc, logger),
		Payments:  handlers.NewPaymentsHandler(paymentSvc, logger),
		Google:    handlers.NewGoogleAuthHandler(googleSvc, h.cfg, logger),
		Health:    handlers.NewHealthHandler(logger, handlers.Check{Name: "db", Ping: h.store.Ping}),
		Metrics:   metrics.Handler(),
	}, &h.cfg.JWT)
	h.handler = metrics.Middleware(mux)

	return h
}

func (h *harness) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// registerAndLogin creates a verified account and returns its session token
func (h *harness) registerAndLogin(username string) string {
	h.t.Helper()
	email := username + "@example.com"

	rec := h.request(http.MethodPost, "/api/register", map[string]any{
		"full_name":        username,
		"username":         username,
		"email":            email,
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}, "")
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.request(http.MethodGet, "/api/verify-email/"+h.mailer.lastToken(h.t), nil, "")
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.request(http.MethodPost, "/api/token", map[string]any{"email": email, "password": "Secret1!"}, "")
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	return decode[map[string]any](h.t, rec)["token"].(string)
}
