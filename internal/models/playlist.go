package models

import (
	"time"

	"github.com/google/uuid"
)

// Playlist is a named song collection owned by exactly one user
type Playlist struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PlaylistSong is a catalog track stored in a playlist.
// SongID is the external catalog id; (PlaylistID, SongID) is unique.
type PlaylistSong struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PlaylistID uuid.UUID `json:"playlist_id" db:"playlist_id"`
	SongID     string    `json:"song_id" db:"song_id"`
	Name       string    `json:"name" db:"name"`
	Artist     string    `json:"artist" db:"artist"`
	AudioURL   string    `json:"audio_url" db:"audio_url"`
	ImageURL   *string   `json:"image_url,omitempty" db:"image_url"`
	LicenseURL *string   `json:"license_url,omitempty" db:"license_url"`
	AddedAt    time.Time `json:"added_at" db:"added_at"`
}
