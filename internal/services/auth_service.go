// Package services holds the application logic behind the HTTP handlers.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository"
	"AMUZZ_BACK-END/internal/utils"
)

const verificationTokenBytes = 32

// RegisterInput is a validated registration request
type RegisterInput struct {
	FullName        string
	Username        string
	Email           string
	DateOfBirth     *time.Time
	Password        string
	ConfirmPassword string
}

// VerifyResult reports how a verification token was consumed
type VerifyResult struct {
	User            *models.User
	AlreadyVerified bool
}

// AuthService manages credentials and email verification
type AuthService struct {
	store        repository.Store
	mailer       utils.EmailSender
	verification config.VerificationConfig
	frontendURL  string
	mailTimeout  time.Duration
	logger       *zap.Logger
	now          func() time.Time
	bcryptCost   int
	dummyHash    []byte
}

// AuthOption customises an AuthService
type AuthOption func(*AuthService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithBcryptCost sets the password hashing cost
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// NewAuthService creates a new AuthService instance
func NewAuthService(store repository.Store, mailer utils.EmailSender, cfg *config.Config, logger *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		store:        store,
		mailer:       mailer,
		verification: cfg.Verification,
		frontendURL:  cfg.Frontend.BaseURL,
		mailTimeout:  cfg.OutboundTimeout,
		logger:       logger,
		now:          time.Now,
		bcryptCost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mailTimeout <= 0 {
		s.mailTimeout = 10 * time.Second
	}

	// compared against on unknown emails so login timing does not reveal them
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("amuzz-unknown-account"), s.bcryptCost)
	return s
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and sends its verification email.
// Nothing is persisted unless the email was handed to the provider.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)

	if fullName == "" || username == "" || email == "" || in.Password == "" {
		return nil, apperrors.Validation("full name, username, email and password are required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.Validation("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.Validation("password must be at most 72 bytes")
		}
		return nil, apperrors.Internal(err, "failed to hash password")
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, apperrors.Internal(err, "failed to generate verification token")
	}

	now := s.now().UTC()
	expires := now.Add(s.verification.TokenTTL)
	user := &models.User{
		ID:                       uuid.New(),
		FullName:                 fullName,
		Username:                 username,
		Email:                    email,
		DateOfBirth:              in.DateOfBirth,
		PasswordHash:             string(hash),
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := checkAvailable(ctx, tx.Users(), email, username); err != nil {
			return err
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return mapUserWriteError(err)
		}

		return s.sendVerification(ctx, user, token)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func checkAvailable(ctx context.Context, users repository.UserRepository, email, username string) error {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return apperrors.Conflict("email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Internal(err, "failed to check email")
	}

	if _, err := users.GetByUsername(ctx, username); err == nil {
		return apperrors.Conflict("username is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Internal(err, "failed to check username")
	}
	return nil
}

func mapUserWriteError(err error) error {
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		switch dup.Constraint {
		case repository.ConstraintUsersEmail:
			return apperrors.Conflict("email is already registered")
		case repository.ConstraintUsersUsername:
			return apperrors.Conflict("username is already taken")
		}
		return apperrors.Conflict("account already exists")
	}
	return apperrors.Internal(err, "failed to save user")
}

// VerifyEmail consumes a verification token. Replaying an already consumed
// token succeeds with AlreadyVerified set and writes nothing.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NotFound("invalid or expired verification token")
	}
	digest := tokenDigest(token)

	user, err := s.store.Users().GetByVerificationToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		verified, err := s.store.Users().GetByVerifiedTokenDigest(ctx, digest)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("invalid or expired verification token")
		}
		if err != nil {
			return nil, apperrors.Internal(err, "failed to look up verification token")
		}
		return &VerifyResult{User: verified, AlreadyVerified: true}, nil
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up verification token")
	}

	if user.EmailVerified {
		return &VerifyResult{User: user, AlreadyVerified: true}, nil
	}
	if user.VerificationTokenExpires == nil || !s.now().Before(*user.VerificationTokenExpires) {
		return nil, apperrors.Expired("verification token has expired")
	}

	if err := s.store.Users().MarkEmailVerified(ctx, user.ID, &digest); err != nil {
		return nil, apperrors.Internal(err, "failed to verify email")
	}

	user.EmailVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpires = nil
	user.VerifiedTokenDigest = &digest

	s.logger.Info("email verified", zap.String("user_id", user.ID.String()))
	return &VerifyResult{User: user}, nil
}

// ResendVerification issues a fresh token once the resend cooldown has
// passed. The previous token stays valid if the email cannot be sent.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("no account found for this email")
	}
	if err != nil {
		return apperrors.Internal(err, "failed to look up user")
	}
	if user.EmailVerified {
		return apperrors.AlreadyVerified("email is already verified")
	}

	now := s.now()
	if wait := s.resendWait(user, now); wait > 0 {
		seconds := time.Duration(math.Ceil(wait.Seconds())) * time.Second
		return apperrors.RateLimited(seconds, "please wait before requesting another verification email")
	}

	token, err := newVerificationToken()
	if err != nil {
		return apperrors.Internal(err, "failed to generate verification token")
	}
	expires := now.UTC().Add(s.verification.TokenTTL)

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().SetVerificationToken(ctx, user.ID, token, expires); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.AlreadyVerified("email is already verified")
			}
			return apperrors.Internal(err, "failed to store verification token")
		}
		return s.sendVerification(ctx, user, token)
	})
	if err != nil {
		return err
	}

	s.logger.Info("verification email resent", zap.String("user_id", user.ID.String()))
	return nil
}

// resendWait returns how long the caller must wait before a new token may be
// issued. A token is fresh while more than TTL-cooldown of it remains.
func (s *AuthService) resendWait(user *models.User, now time.Time) time.Duration {
	if user.VerificationTokenExpires == nil {
		return 0
	}
	remaining := user.VerificationTokenExpires.Sub(now)
	threshold := s.verification.TokenTTL - s.verification.ResendCooldown
	if remaining <= threshold {
		return 0
	}
	return remaining - threshold
}

// Authenticate checks login credentials. Unknown emails and wrong passwords
// share one error; unverified accounts get a Forbidden error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	user, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperrors.Auth("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Auth("invalid email or password")
	}

	if !user.EmailVerified {
		return user, apperrors.Forbidden("email not verified")
	}

	return user, nil
}

// GetUser loads the account behind a session
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Auth("account no longer exists")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, token string) error {
	mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	err := s.mailer.SendVerificationEmail(mailCtx, utils.VerificationEmail{
		To:              user.Email,
		FullName:        user.FullName,
		VerificationURL: s.verificationURL(token),
		ExpiresIn:       s.verification.TokenTTL,
	})
	if err != nil {
		s.logger.Error("failed to send verification email",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return apperrors.Upstream(err, "failed to send verification email")
	}
	return nil
}

func (s *AuthService) verificationURL(token string) string {
	return s.frontendURL + "/verify-email?token=" + url.QueryEscape(token)
}

func newVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
