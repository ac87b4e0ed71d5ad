package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/models"
)

const maxMoodLength = 64

// TrackSearcher queries the music catalog
type TrackSearcher interface {
	SearchByMood(ctx context.Context, mood string) ([]models.Track, error)
}

// TrackCache keeps recent search results
type TrackCache interface {
	Get(ctx context.Context, mood string) ([]models.Track, bool, error)
	Set(ctx context.Context, mood string, tracks []models.Track) error
}

// MusicService proxies mood searches to the catalog
type MusicService struct {
	catalog TrackSearcher
	cache   TrackCache
	logger  *zap.Logger
}

// NewMusicService creates a MusicService. cache may be nil.
func NewMusicService(catalog TrackSearcher, cache TrackCache, logger *zap.Logger) *MusicService {
	return &MusicService{catalog: catalog, cache: cache, logger: logger}
}

// SearchByMood returns catalog tracks tagged with mood. Cache failures are
// logged and otherwise ignored.
func (s *MusicService) SearchByMood(ctx context.Context, mood string) ([]models.Track, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return nil, apperrors.Validation("mood is required")
	}
	if utf8.RuneCountInString(mood) > maxMoodLength {
		return nil, apperrors.Validation("mood must be at most %d characters long", maxMoodLength)
	}

	if s.cache != nil {
		tracks, found, err := s.cache.Get(ctx, mood)
		if err != nil {
			s.logger.Warn("music cache read failed", zap.String("mood", mood), zap.Error(err))
		} else if found {
			return tracks, nil
		}
	}

	tracks, err := s.catalog.SearchByMood(ctx, mood)
	if err != nil {
		s.logger.Error("music catalog search failed", zap.String("mood", mood), zap.Error(err))
		return nil, apperrors.Upstream(err, "failed to fetch music from catalog")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, mood, tracks); err != nil {
			s.logger.Warn("music cache write failed", zap.String("mood", mood), zap.Error(err))
		}
	}

	return tracks, nil
}
