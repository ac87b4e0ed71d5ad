package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository"
)

// SongInput is a catalog track to store in a playlist
type SongInput struct {
	SongID     string
	Name       string
	Artist     string
	AudioURL   string
	ImageURL   *string
	LicenseURL *string
}

// PlaylistService manages playlists on behalf of their owner. Playlists
// owned by someone else are reported as not found.
type PlaylistService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewPlaylistService creates a new PlaylistService instance
func NewPlaylistService(store repository.Store, logger *zap.Logger) *PlaylistService {
	return &PlaylistService{store: store, logger: logger, now: time.Now}
}

func (s *PlaylistService) owner(ctx context.Context, ownerID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Auth("account no longer exists")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) (*models.Playlist, error) {
	if _, err := s.owner(ctx, ownerID); err != nil {
		return nil, err
	}

	playlist, err := s.store.Playlists().GetOwned(ctx, playlistID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("playlist not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load playlist")
	}
	return playlist, nil
}

// Create adds a playlist for ownerID
func (s *PlaylistService) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("playlist name is required")
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		description = &trimmed
		if trimmed == "" {
			description = nil
		}
	}

	if _, err := s.owner(ctx, ownerID); err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		ID:          uuid.New(),
		UserID:      ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Playlists().Create(ctx, playlist); err != nil {
		return nil, apperrors.Internal(err, "failed to create playlist")
	}

	s.logger.Info("playlist created",
		zap.String("playlist_id", playlist.ID.String()),
		zap.String("user_id", ownerID.String()),
	)
	return playlist, nil
}

// List returns the caller's playlists, oldest first
func (s *PlaylistService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error) {
	if _, err := s.owner(ctx, ownerID); err != nil {
		return nil, err
	}

	playlists, err := s.store.Playlists().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list playlists")
	}
	return playlists, nil
}

// Delete removes a playlist together with its songs
func (s *PlaylistService) Delete(ctx context.Context, ownerID, playlistID uuid.UUID) error {
	if _, err := s.owner(ctx, ownerID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		return tx.Playlists().Delete(ctx, playlistID, ownerID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("playlist not found")
	}
	if err != nil {
		return apperrors.Internal(err, "failed to delete playlist")
	}

	s.logger.Info("playlist deleted",
		zap.String("playlist_id", playlistID.String()),
		zap.String("user_id", ownerID.String()),
	)
	return nil
}

// AddSong stores a track in the playlist. Adding a song_id the playlist
// already holds returns the existing entry with created set to false.
func (s *PlaylistService) AddSong(ctx context.Context, ownerID, playlistID uuid.UUID, in SongInput) (*models.PlaylistSong, bool, error) {
	in.SongID = strings.TrimSpace(in.SongID)
	in.Name = strings.TrimSpace(in.Name)
	in.Artist = strings.TrimSpace(in.Artist)
	in.AudioURL = strings.TrimSpace(in.AudioURL)
	if in.SongID == "" || in.Name == "" || in.Artist == "" || in.AudioURL == "" {
		return nil, false, apperrors.Validation("song_id, name, artist and audio_url are required")
	}

	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return nil, false, err
	}

	song := &models.PlaylistSong{
		ID:         uuid.New(),
		PlaylistID: playlistID,
		SongID:     in.SongID,
		Name:       in.Name,
		Artist:     in.Artist,
		AudioURL:   in.AudioURL,
		ImageURL:   emptyToNil(in.ImageURL),
		LicenseURL: emptyToNil(in.LicenseURL),
		AddedAt:    s.now().UTC(),
	}

	created, err := s.store.Playlists().AddSong(ctx, song)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.NotFound("playlist not found")
	}
	if err != nil {
		return nil, false, apperrors.Internal(err, "failed to add song")
	}
	return song, created, nil
}

// ListSongs returns the playlist's songs in the order they were added
func (s *PlaylistService) ListSongs(ctx context.Context, ownerID, playlistID uuid.UUID) ([]models.PlaylistSong, error) {
	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return nil, err
	}

	songs, err := s.store.Playlists().ListSongs(ctx, playlistID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list songs")
	}
	return songs, nil
}

// RemoveSong deletes one song entry from the playlist
func (s *PlaylistService) RemoveSong(ctx context.Context, ownerID, playlistID, entryID uuid.UUID) error {
	if _, err := s.ownedPlaylist(ctx, ownerID, playlistID); err != nil {
		return err
	}

	err := s.store.Playlists().RemoveSong(ctx, playlistID, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("song not found in playlist")
	}
	if err != nil {
		return apperrors.Internal(err, "failed to remove song")
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
