package handlers

import (
	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/utils"
)

func toUserResponse(user *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:            user.ID.String(),
		FullName:      user.FullName,
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		IsPremium:     user.IsPremium,
		CreatedAt:     utils.FormatTimestamp(user.CreatedAt),
	}
	if user.DateOfBirth != nil {
		dob := utils.FormatDate(*user.DateOfBirth)
		resp.DateOfBirth = &dob
	}
	return resp
}

func toPlaylistResponse(p *models.Playlist) dto.PlaylistResponse {
	return dto.PlaylistResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		UserID:      p.UserID.String(),
		CreatedAt:   utils.FormatTimestamp(p.CreatedAt),
	}
}

func toSongResponse(s *models.PlaylistSong) dto.PlaylistSongResponse {
	return dto.PlaylistSongResponse{
		ID:         s.ID.String(),
		PlaylistID: s.PlaylistID.String(),
		SongID:     s.SongID,
		Name:       s.Name,
		Artist:     s.Artist,
		AudioURL:   s.AudioURL,
		ImageURL:   s.ImageURL,
		LicenseURL: s.LicenseURL,
		AddedAt:    utils.FormatTimestamp(s.AddedAt),
	}
}

func toTrackResponse(t models.Track) dto.TrackResponse {
	genres := t.Genres
	if genres == nil {
		genres = []string{}
	}
	return dto.TrackResponse{
		ID:          t.ID,
		Name:        t.Name,
		Artist:      t.Artist,
		Audio:       t.Audio,
		Image:       t.Image,
		License:     t.License,
		Duration:    t.Duration,
		Album:       t.Album,
		ReleaseDate: t.ReleaseDate,
		Waveform:    t.Waveform,
		Genres:      genres,
	}
}
