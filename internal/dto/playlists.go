package dto

import "strings"

// CreatePlaylistRequest represents POST /api/playlists
type CreatePlaylistRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (r *CreatePlaylistRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// PlaylistResponse represents a playlist in API responses
type PlaylistResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	UserID      string  `json:"user_id"`
	CreatedAt   string  `json:"created_at"`
}

// AddSongRequest represents POST /api/playlists/{id}/songs
type AddSongRequest struct {
	SongID     string  `json:"song_id" validate:"required,max=64"`
	Name       string  `json:"name" validate:"required,max=300"`
	Artist     string  `json:"artist" validate:"required,max=300"`
	AudioURL   string  `json:"audio_url" validate:"required,http_url"`
	ImageURL   *string `json:"image_url,omitempty" validate:"omitempty,http_url"`
	LicenseURL *string `json:"license_url,omitempty" validate:"omitempty,http_url"`
}

func (r *AddSongRequest) Normalize() {
	r.SongID = strings.TrimSpace(r.SongID)
	r.Name = strings.TrimSpace(r.Name)
	r.Artist = strings.TrimSpace(r.Artist)
	r.AudioURL = strings.TrimSpace(r.AudioURL)
}

// PlaylistSongResponse represents a playlist entry in API responses
type PlaylistSongResponse struct {
	ID         string  `json:"id"`
	PlaylistID string  `json:"playlist_id"`
	SongID     string  `json:"song_id"`
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	AudioURL   string  `json:"audio_url"`
	ImageURL   *string `json:"image_url"`
	LicenseURL *string `json:"license_url"`
	AddedAt    string  `json:"added_at"`
}

// AddSongResponse wraps the stored entry for both new and repeated adds
type AddSongResponse struct {
	Message string               `json:"message"`
	Song    PlaylistSongResponse `json:"song"`
}
