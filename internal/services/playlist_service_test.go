package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository/repotest"
)

func seedUser(store *repotest.MemoryStore, username string) uuid.UUID {
	id := uuid.New()
	store.PutUser(models.User{
		ID:            id,
		FullName:      username,
		Username:      username,
		Email:         username + "@example.com",
		EmailVerified: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	return id
}

func newPlaylistFixture(t *testing.T) (*PlaylistService, *repotest.MemoryStore, uuid.UUID) {
	t.Helper()
	store := repotest.NewMemoryStore()
	owner := seedUser(store, "jane")
	return NewPlaylistService(store, zap.NewNop()), store, owner
}

func trackInput(songID string) SongInput {
	return SongInput{SongID: songID, Name: "Track", Artist: "Artist", AudioURL: "https://x/a.mp3"}
}

func TestCreateAndListPlaylists(t *testing.T) {
	svc, _, owner := newPlaylistFixture(t)
	ctx := context.Background()

	desc := "  deep work  "
	focus, err := svc.Create(ctx, owner, "  Focus ", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Focus", focus.Name)
	require.NotNil(t, focus.Description)
	assert.Equal(t, "deep work", *focus.Description)
	assert.Equal(t, owner, focus.UserID)

	blank := "   "
	chill, err := svc.Create(ctx, owner, "Chill", &blank)
	require.NoError(t, err)
	assert.Nil(t, chill.Description)

	_, err = svc.Create(ctx, owner, "   ", nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	playlists, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, playlists, 2)
}

func TestPlaylistUnknownOwner(t *testing.T) {
	svc, _, _ := newPlaylistFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), "Focus", nil)
	assert.True(t, apperrors.Is(err, apperrors.KindAuth))

	_, err = svc.List(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindAuth))
}

func TestAddSongIsIdempotent(t *testing.T) {
	svc, store, owner := newPlaylistFixture(t)
	ctx := context.Background()

	playlist, err := svc.Create(ctx, owner, "Focus", nil)
	require.NoError(t, err)

	first, created, err := svc.AddSong(ctx, owner, playlist.ID, trackInput("abc123"))
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.AddSong(ctx, owner, playlist.ID, trackInput("abc123"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.SongCount())

	songs, err := svc.ListSongs(ctx, owner, playlist.ID)
	require.NoError(t, err)
	assert.Len(t, songs, 1)
}

func TestAddSongValidation(t *testing.T) {
	svc, _, owner := newPlaylistFixture(t)
	ctx := context.Background()
	playlist, err := svc.Create(ctx, owner, "Focus", nil)
	require.NoError(t, err)

	for _, in := range []SongInput{
		{Name: "Track", Artist: "Artist", AudioURL: "https://x/a.mp3"},
		{SongID: "1", Artist: "Artist", AudioURL: "https://x/a.mp3"},
		{SongID: "1", Name: "Track", AudioURL: "https://x/a.mp3"},
		{SongID: "1", Name: "Track", Artist: "Artist", AudioURL: "  "},
	} {
		_, _, err := svc.AddSong(ctx, owner, playlist.ID, in)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "%+v", in)
	}

	empty := ""
	in := trackInput("x1")
	in.ImageURL = &empty
	song, _, err := svc.AddSong(ctx, owner, playlist.ID, in)
	require.NoError(t, err)
	assert.Nil(t, song.ImageURL)
}

func TestDeletePlaylistRemovesSongs(t *testing.T) {
	svc, store, owner := newPlaylistFixture(t)
	ctx := context.Background()

	playlist, err := svc.Create(ctx, owner, "Focus", nil)
	require.NoError(t, err)
	_, _, err = svc.AddSong(ctx, owner, playlist.ID, trackInput("a"))
	require.NoError(t, err)
	_, _, err = svc.AddSong(ctx, owner, playlist.ID, trackInput("b"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, playlist.ID))
	assert.Equal(t, 0, store.SongCount())

	_, err = svc.ListSongs(ctx, owner, playlist.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.Delete(ctx, owner, playlist.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	svc, store, alice := newPlaylistFixture(t)
	bob := seedUser(store, "bob")
	ctx := context.Background()

	playlist, err := svc.Create(ctx, alice, "Private", nil)
	require.NoError(t, err)
	song, _, err := svc.AddSong(ctx, alice, playlist.ID, trackInput("a"))
	require.NoError(t, err)

	_, err = svc.ListSongs(ctx, bob, playlist.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, _, err = svc.AddSong(ctx, bob, playlist.ID, trackInput("b"))
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.RemoveSong(ctx, bob, playlist.ID, song.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.Delete(ctx, bob, playlist.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	bobs, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	assert.Equal(t, 1, store.SongCount())
}

func TestRemoveSong(t *testing.T) {
	svc, store, owner := newPlaylistFixture(t)
	ctx := context.Background()

	focus, err := svc.Create(ctx, owner, "Focus", nil)
	require.NoError(t, err)
	other, err := svc.Create(ctx, owner, "Other", nil)
	require.NoError(t, err)
	song, _, err := svc.AddSong(ctx, owner, focus.ID, trackInput("a"))
	require.NoError(t, err)

	err = svc.RemoveSong(ctx, owner, other.ID, song.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	require.NoError(t, svc.RemoveSong(ctx, owner, focus.ID, song.ID))
	assert.Equal(t, 0, store.SongCount())

	err = svc.RemoveSong(ctx, owner, focus.ID, song.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
