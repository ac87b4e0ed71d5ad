// Package repository is the record store for users, playlists and playlist songs.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"AMUZZ_BACK-END/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate record")
)

// DuplicateError names the unique constraint that rejected a write
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate record: " + e.Constraint
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Unique constraint names, shared with migrations
const (
	ConstraintUsersEmail        = "users_email_key"
	ConstraintUsersUsername     = "users_username_key"
	ConstraintUsersVerification = "users_verification_token_key"
)

// UserRepository persists User records. Emails are expected lowercase.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetByVerifiedTokenDigest(ctx context.Context, digest string) (*models.User, error)
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID, tokenDigest *string) error
	SetPremiumByEmail(ctx context.Context, email string) error
}

// PlaylistRepository persists Playlist and PlaylistSong records.
// Every playlist lookup is filtered by owner.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error)
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Playlist, error)
	// Delete removes the playlist and its songs; callers run it inside InTx.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	// AddSong inserts song unless (playlist_id, song_id) exists, in which case
	// song is overwritten with the stored row and created is false.
	AddSong(ctx context.Context, song *models.PlaylistSong) (created bool, err error)
	ListSongs(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, entryID uuid.UUID) error
}

// Store groups the repositories behind one transactional boundary
type Store interface {
	Users() UserRepository
	Playlists() PlaylistRepository
	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}
