package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/models"
)

type fakeCatalog struct {
	tracks []models.Track
	err    error
	calls  int
	moods  []string
}

func (c *fakeCatalog) SearchByMood(ctx context.Context, mood string) ([]models.Track, error) {
	c.calls++
	c.moods = append(c.moods, mood)
	return c.tracks, c.err
}

type fakeTrackCache struct {
	data   map[string][]models.Track
	getErr error
	setErr error
}

func (c *fakeTrackCache) Get(ctx context.Context, mood string) ([]models.Track, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	tracks, ok := c.data[strings.ToLower(mood)]
	return tracks, ok, nil
}

func (c *fakeTrackCache) Set(ctx context.Context, mood string, tracks []models.Track) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[strings.ToLower(mood)] = tracks
	return nil
}

var sampleTracks = []models.Track{{ID: "1", Name: "Calm", Artist: "Lakey", Audio: "https://a/1.mp3", Genres: []string{}}}

func TestSearchByMoodUsesCache(t *testing.T) {
	catalog := &fakeCatalog{tracks: sampleTracks}
	cache := &fakeTrackCache{data: map[string][]models.Track{}}
	svc := NewMusicService(catalog, cache, zap.NewNop())

	tracks, err := svc.SearchByMood(context.Background(), " happy ")
	require.NoError(t, err)
	assert.Equal(t, sampleTracks, tracks)
	assert.Equal(t, []string{"happy"}, catalog.moods)

	tracks, err = svc.SearchByMood(context.Background(), "HAPPY")
	require.NoError(t, err)
	assert.Equal(t, sampleTracks, tracks)
	assert.Equal(t, 1, catalog.calls)
}

func TestSearchByMoodIgnoresCacheFailures(t *testing.T) {
	catalog := &fakeCatalog{tracks: sampleTracks}
	cache := &fakeTrackCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc := NewMusicService(catalog, cache, zap.NewNop())

	tracks, err := svc.SearchByMood(context.Background(), "happy")
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}

func TestSearchByMoodWithoutCache(t *testing.T) {
	catalog := &fakeCatalog{tracks: sampleTracks}
	svc := NewMusicService(catalog, nil, zap.NewNop())

	_, err := svc.SearchByMood(context.Background(), "happy")
	require.NoError(t, err)
	_, err = svc.SearchByMood(context.Background(), "happy")
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.calls)
}

func TestSearchByMoodErrors(t *testing.T) {
	svc := NewMusicService(&fakeCatalog{err: errors.New("boom")}, nil, zap.NewNop())

	_, err := svc.SearchByMood(context.Background(), "happy")
	assert.True(t, apperrors.Is(err, apperrors.KindUpstream))

	_, err = svc.SearchByMood(context.Background(), "   ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.SearchByMood(context.Background(), strings.Repeat("a", 65))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
