package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository"
)

// GoogleProfile is the identity Google reports for a signed-in account
type GoogleProfile struct {
	Email         string
	Name          string
	EmailVerified bool
}

// GoogleProvider runs the OAuth code flow against Google
type GoogleProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*GoogleProfile, error)
}

// GoogleOAuthProvider implements GoogleProvider with x/oauth2
type GoogleOAuthProvider struct {
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthProvider builds the provider from configured credentials
func NewGoogleOAuthProvider(cfg *config.GoogleOAuthConfig) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchProfile exchanges code for a token and reads the user's profile
func (p *GoogleOAuthProvider) FetchProfile(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(p.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &GoogleProfile{
		Email:         userInfo.Email,
		Name:          userInfo.Name,
		EmailVerified: verified,
	}, nil
}

// GoogleAuthService signs users in with their Google account
type GoogleAuthService struct {
	provider GoogleProvider
	store    repository.Store
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGoogleAuthService creates the service. provider may be nil when
// Google sign-in is not configured.
func NewGoogleAuthService(provider GoogleProvider, store repository.Store, timeout time.Duration, logger *zap.Logger) *GoogleAuthService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleAuthService{provider: provider, store: store, timeout: timeout, logger: logger}
}

// Enabled reports whether Google sign-in is available
func (s *GoogleAuthService) Enabled() bool {
	return s.provider != nil
}

// LoginURL returns the Google consent URL and the CSRF state bound to it
func (s *GoogleAuthService) LoginURL() (string, string) {
	state := uuid.NewString()
	return s.provider.AuthCodeURL(state), state
}

// SignIn completes the code flow and returns the matching account, creating
// a verified one on first sign-in.
func (s *GoogleAuthService) SignIn(ctx context.Context, code string) (*models.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.Validation("authorization code is required")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.provider.FetchProfile(fetchCtx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, apperrors.Auth("invalid authorization code")
		}
		s.logger.Error("failed to fetch google profile", zap.Error(err))
		return nil, apperrors.Upstream(err, "failed to get user info from google")
	}

	email := NormalizeEmail(profile.Email)
	if email == "" {
		return nil, apperrors.Forbidden("google account has no email address")
	}
	if !profile.EmailVerified {
		return nil, apperrors.Forbidden("google account email is not verified")
	}

	var user *models.User
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Users().GetByEmail(ctx, email)
		if err == nil {
			if !existing.EmailVerified {
				if err := tx.Users().MarkEmailVerified(ctx, existing.ID, nil); err != nil {
					return apperrors.Internal(err, "failed to verify email")
				}
				existing.EmailVerified = true
				existing.VerificationToken = nil
				existing.VerificationTokenExpires = nil
			}
			user = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(err, "failed to look up user")
		}

		user, err = s.createUser(ctx, tx.Users(), email, profile.Name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("google sign-in", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *GoogleAuthService) createUser(ctx context.Context, users repository.UserRepository, email, name string) (*models.User, error) {
	// the account gets a random password nobody knows; it can only sign in through Google
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, apperrors.Internal(err, "failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(base64.RawStdEncoding.EncodeToString(secret)), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to hash password")
	}

	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}
	fullName := strings.TrimSpace(name)
	if fullName == "" {
		fullName = localPart
	}

	username, err := availableUsername(ctx, users, usernameBase(localPart))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:            uuid.New(),
		FullName:      truncateRunes(fullName, 120),
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, mapUserWriteError(err)
	}
	return user, nil
}

// usernameBase reduces an email local part to [a-z0-9._], 3 to 40 characters
func usernameBase(localPart string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(localPart) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 40 {
		base = base[:40]
	}
	for len(base) < 3 {
		base += "_"
	}
	return base
}

func availableUsername(ctx context.Context, users repository.UserRepository, base string) (string, error) {
	candidate := base
	for attempt := 0; attempt < 10; attempt++ {
		_, err := users.GetByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", apperrors.Internal(err, "failed to check username")
		}

		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", apperrors.Internal(err, "failed to generate username")
		}
		candidate = fmt.Sprintf("%s%04d", base, n.Int64())
	}
	return "", apperrors.Conflict("could not find a free username")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
