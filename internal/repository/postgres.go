package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"AMUZZ_BACK-END/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx
type dbtx interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewPostgresStore creates a Store backed by pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

func (s *PostgresStore) Users() UserRepository {
	return &pgUserRepository{db: s.db}
}

func (s *PostgresStore) Playlists() PlaylistRepository {
	return &pgPlaylistRepository{db: s.db}
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&PostgresStore{pool: s.pool, db: tx})
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapError converts driver errors into repository sentinels. A foreign key
// violation means the parent row vanished and is reported as ErrNotFound.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &DuplicateError{Constraint: pgErr.ConstraintName}
		case pgForeignKeyViolation:
			// the referenced row (a playlist deleted concurrently) is gone
			return ErrNotFound
		}
	}
	return err
}

// ---- users ----

const userColumns = `id, full_name, username, email, date_of_birth, password_hash,
	email_verified, verification_token, verification_token_expires, verified_token_digest,
	is_premium, created_at, updated_at`

type pgUserRepository struct {
	db dbtx
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.DateOfBirth, &u.PasswordHash,
		&u.EmailVerified, &u.VerificationToken, &u.VerificationTokenExpires, &u.VerifiedTokenDigest,
		&u.IsPremium, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *pgUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.FullName, u.Username, u.Email, u.DateOfBirth, u.PasswordHash,
		u.EmailVerified, u.VerificationToken, u.VerificationTokenExpires, u.VerifiedTokenDigest,
		u.IsPremium, u.CreatedAt, u.UpdatedAt)
	return mapError(err)
}

func (r *pgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *pgUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *pgUserRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
}

func (r *pgUserRepository) GetByVerifiedTokenDigest(ctx context.Context, digest string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verified_token_digest = $1`, digest))
}

func (r *pgUserRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET verification_token = $2, verification_token_expires = $3, updated_at = NOW()
		 WHERE id = $1 AND email_verified = FALSE`,
		id, token, expires)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, tokenDigest *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, verification_token = NULL,
		 verification_token_expires = NULL, verified_token_digest = $2, updated_at = NOW()
		 WHERE id = $1`,
		id, tokenDigest)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) SetPremiumByEmail(ctx context.Context, email string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_premium = TRUE, updated_at = NOW() WHERE email = $1`, email)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- playlists ----

const songColumns = `id, playlist_id, song_id, name, artist, audio_url, image_url, license_url, added_at`

type pgPlaylistRepository struct {
	db dbtx
}

func (r *pgPlaylistRepository) Create(ctx context.Context, p *models.Playlist) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO playlists (id, user_id, name, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.Name, p.Description, p.CreatedAt)
	return mapError(err)
}

func (r *pgPlaylistRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, description, created_at FROM playlists
		 WHERE user_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0)
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		playlists = append(playlists, p)
	}
	return playlists, mapError(rows.Err())
}

func (r *pgPlaylistRepository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Playlist, error) {
	var p models.Playlist
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, description, created_at FROM playlists WHERE id = $1 AND user_id = $2`,
		id, ownerID).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *pgPlaylistRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// songs first: the foreign key has no cascade
		if _, err := tx.Exec(ctx,
			`DELETE FROM playlist_songs WHERE playlist_id IN
			 (SELECT id FROM playlists WHERE id = $1 AND user_id = $2)`, id, ownerID); err != nil {
			return mapError(err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1 AND user_id = $2`, id, ownerID)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *pgPlaylistRepository) AddSong(ctx context.Context, s *models.PlaylistSong) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO playlist_songs (`+songColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (playlist_id, song_id) DO NOTHING`,
		s.ID, s.PlaylistID, s.SongID, s.Name, s.Artist, s.AudioURL, s.ImageURL, s.LicenseURL, s.AddedAt)
	if err != nil {
		return false, mapError(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	err = r.db.QueryRow(ctx,
		`SELECT `+songColumns+` FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`,
		s.PlaylistID, s.SongID).Scan(&s.ID, &s.PlaylistID, &s.SongID, &s.Name, &s.Artist,
		&s.AudioURL, &s.ImageURL, &s.LicenseURL, &s.AddedAt)
	return false, mapError(err)
}

func (r *pgPlaylistRepository) ListSongs(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistSong, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+songColumns+` FROM playlist_songs WHERE playlist_id = $1 ORDER BY added_at, id`, playlistID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	songs := make([]models.PlaylistSong, 0)
	for rows.Next() {
		var s models.PlaylistSong
		if err := rows.Scan(&s.ID, &s.PlaylistID, &s.SongID, &s.Name, &s.Artist,
			&s.AudioURL, &s.ImageURL, &s.LicenseURL, &s.AddedAt); err != nil {
			return nil, mapError(err)
		}
		songs = append(songs, s)
	}
	return songs, mapError(rows.Err())
}

func (r *pgPlaylistRepository) RemoveSong(ctx context.Context, playlistID, entryID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM playlist_songs WHERE id = $1 AND playlist_id = $2`, entryID, playlistID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
