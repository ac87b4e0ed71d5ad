package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AMUZZ_BACK-END/internal/database"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository"
)

func openStore(t *testing.T) *repository.PostgresStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, database.MigrateUp(dsn))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return repository.NewPostgresStore(pool)
}

func newUser(suffix string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	token := "tok-" + uuid.NewString()
	expires := now.Add(24 * time.Hour)
	return &models.User{
		ID:                       uuid.New(),
		FullName:                 "Test " + suffix,
		Username:                 "user_" + suffix,
		Email:                    suffix + "@example.com",
		PasswordHash:             "hash",
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

func TestPostgresUsers(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	u := newUser(suffix)
	require.NoError(t, store.Users().Create(ctx, u))

	dup := newUser(suffix)
	err := store.Users().Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := store.Users().GetByVerificationToken(ctx, *u.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	digest := "digest-" + suffix
	require.NoError(t, store.Users().MarkEmailVerified(ctx, u.ID, &digest))

	got, err = store.Users().GetByVerifiedTokenDigest(ctx, digest)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.VerificationToken)

	require.NoError(t, store.Users().SetPremiumByEmail(ctx, u.Email))
	assert.ErrorIs(t, store.Users().SetPremiumByEmail(ctx, "nobody-"+suffix+"@example.com"), repository.ErrNotFound)
}

func TestPostgresPlaylists(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	owner := newUser(suffix)
	require.NoError(t, store.Users().Create(ctx, owner))

	p := &models.Playlist{ID: uuid.New(), UserID: owner.ID, Name: "Focus", CreatedAt: time.Now()}
	require.NoError(t, store.Playlists().Create(ctx, p))

	song := &models.PlaylistSong{ID: uuid.New(), PlaylistID: p.ID, SongID: "abc123", Name: "Track",
		Artist: "Artist", AudioURL: "https://x/a.mp3", AddedAt: time.Now()}
	created, err := store.Playlists().AddSong(ctx, song)
	require.NoError(t, err)
	assert.True(t, created)

	again := &models.PlaylistSong{ID: uuid.New(), PlaylistID: p.ID, SongID: "abc123", Name: "Track",
		Artist: "Artist", AudioURL: "https://x/a.mp3", AddedAt: time.Now()}
	created, err = store.Playlists().AddSong(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, song.ID, again.ID)

	_, err = store.Playlists().GetOwned(ctx, p.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Playlists().Delete(ctx, p.ID, owner.ID))
	songs, err := store.Playlists().ListSongs(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, songs)

	late := &models.PlaylistSong{ID: uuid.New(), PlaylistID: p.ID, SongID: "late", Name: "Track",
		Artist: "Artist", AudioURL: "https://x/b.mp3", AddedAt: time.Now()}
	_, err = store.Playlists().AddSong(ctx, late)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgresInTxRollback(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u := newUser(uuid.NewString()[:8])

	err := store.InTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Users().Create(ctx, u))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = store.Users().GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
