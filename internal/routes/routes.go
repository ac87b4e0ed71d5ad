package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/handlers"
	"AMUZZ_BACK-END/internal/middleware"
)

// Handlers groups everything the route table serves
type Handlers struct {
	Auth      *handlers.AuthHandler
	Playlists *handlers.PlaylistsHandler
	Music     *handlers.MusicHandler
	Payments  *handlers.PaymentsHandler
	Google    *handlers.GoogleAuthHandler
	Health    *handlers.HealthHandler
	Metrics   http.Handler
}

// SetupRoutes configures all application routes on mux
func SetupRoutes(mux *http.ServeMux, h Handlers, jwtCfg *config.JWTConfig) {
	auth := middleware.AuthMiddleware(jwtCfg)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtCfg)

	// Health check routes
	mux.HandleFunc("GET /healthz", h.Health.HealthCheck)
	mux.HandleFunc("GET /livez", h.Health.LivenessCheck)
	mux.HandleFunc("GET /readyz", h.Health.ReadinessCheck)
	mux.Handle("GET /metrics", h.Metrics)

	// API documentation
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Authentication routes
	mux.HandleFunc("POST /api/register", h.Auth.Register)
	mux.HandleFunc("POST /api/token", h.Auth.Login)
	mux.HandleFunc("GET /api/verify-email/{token}", h.Auth.VerifyEmail)
	mux.HandleFunc("POST /api/verify-email", h.Auth.VerifyEmailPost)
	mux.HandleFunc("POST /api/resend-verification", h.Auth.ResendVerification)
	mux.HandleFunc("GET /api/protected", auth(h.Auth.Protected))
	mux.HandleFunc("GET /api/me", auth(h.Auth.Me))
	mux.HandleFunc("GET /api/refresh-session", auth(h.Auth.RefreshSession))
	mux.HandleFunc("GET /api/auth/google/login", h.Google.GoogleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", h.Google.GoogleCallback)

	// Music routes
	mux.HandleFunc("GET /api/music/mood/{mood}", h.Music.GetMusicByMood)

	// Playlist routes
	mux.HandleFunc("POST /api/playlists", auth(h.Playlists.CreatePlaylist))
	mux.HandleFunc("GET /api/playlists", auth(h.Playlists.ListPlaylists))
	mux.HandleFunc("DELETE /api/playlists/{id}", auth(h.Playlists.DeletePlaylist))
	mux.HandleFunc("POST /api/playlists/{id}/songs", auth(h.Playlists.AddSong))
	mux.HandleFunc("GET /api/playlists/{id}/songs", auth(h.Playlists.ListSongs))
	mux.HandleFunc("DELETE /api/playlists/{id}/songs/{song_id}", auth(h.Playlists.RemoveSong))

	// Payment routes
	mux.HandleFunc("POST /api/create-checkout-session", optionalAuth(h.Payments.CreateCheckoutSession))
	mux.HandleFunc("POST /api/webhook", h.Payments.Webhook)

	// Root route
	mux.HandleFunc("GET /{$}", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Amuzz backend is running."))
}
