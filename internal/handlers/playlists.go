package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

// PlaylistsHandler serves the signed-in user's playlists
type PlaylistsHandler struct {
	playlists *services.PlaylistService
	logger    *zap.Logger
}

// NewPlaylistsHandler creates a new PlaylistsHandler instance
func NewPlaylistsHandler(playlists *services.PlaylistService, logger *zap.Logger) *PlaylistsHandler {
	return &PlaylistsHandler{playlists: playlists, logger: logger}
}

// CreatePlaylist creates a playlist
// @Summary Create playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePlaylistRequest true "Playlist"
// @Success 201 {object} dto.PlaylistResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/playlists [post]
func (h *PlaylistsHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req dto.CreatePlaylistRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	playlist, err := h.playlists.Create(r.Context(), claims.ID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toPlaylistResponse(playlist))
}

// ListPlaylists lists the caller's playlists
// @Summary List playlists
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PlaylistResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/playlists [get]
func (h *PlaylistsHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	playlists, err := h.playlists.List(r.Context(), claims.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]dto.PlaylistResponse, 0, len(playlists))
	for i := range playlists {
		resp = append(resp, toPlaylistResponse(&playlists[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// DeletePlaylist deletes a playlist and its songs
// @Summary Delete playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param id path string true "Playlist ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid playlist id"
// @Failure 404 {object} dto.ErrorResponse "Playlist not found"
// @Router /api/playlists/{id} [delete]
func (h *PlaylistsHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathUUID(w, r, "id", "playlist")
	if !ok {
		return
	}

	if err := h.playlists.Delete(r.Context(), claims.ID, playlistID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Playlist deleted"})
}

// AddSong stores a catalog track in a playlist
// @Summary Add song to playlist
// @Description Adding a song_id the playlist already holds returns 200 with the existing entry
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Playlist ID"
// @Param request body dto.AddSongRequest true "Song"
// @Success 201 {object} dto.AddSongResponse "Song added"
// @Success 200 {object} dto.AddSongResponse "Song already in playlist"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Playlist not found"
// @Router /api/playlists/{id}/songs [post]
func (h *PlaylistsHandler) AddSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathUUID(w, r, "id", "playlist")
	if !ok {
		return
	}

	var req dto.AddSongRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	song, created, err := h.playlists.AddSong(r.Context(), claims.ID, playlistID, services.SongInput{
		SongID:     req.SongID,
		Name:       req.Name,
		Artist:     req.Artist,
		AudioURL:   req.AudioURL,
		ImageURL:   req.ImageURL,
		LicenseURL: req.LicenseURL,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if !created {
		utils.WriteJSONResponse(w, http.StatusOK, dto.AddSongResponse{
			Message: "Song already in playlist",
			Song:    toSongResponse(song),
		})
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, dto.AddSongResponse{
		Message: "Song added to playlist",
		Song:    toSongResponse(song),
	})
}

// ListSongs lists the songs of a playlist
// @Summary List playlist songs
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param id path string true "Playlist ID"
// @Success 200 {array} dto.PlaylistSongResponse
// @Failure 404 {object} dto.ErrorResponse "Playlist not found"
// @Router /api/playlists/{id}/songs [get]
func (h *PlaylistsHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathUUID(w, r, "id", "playlist")
	if !ok {
		return
	}

	songs, err := h.playlists.ListSongs(r.Context(), claims.ID, playlistID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]dto.PlaylistSongResponse, 0, len(songs))
	for i := range songs {
		resp = append(resp, toSongResponse(&songs[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// RemoveSong removes one entry from a playlist
// @Summary Remove song from playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param id path string true "Playlist ID"
// @Param song_id path string true "Playlist entry ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Playlist or song not found"
// @Router /api/playlists/{id}/songs/{song_id} [delete]
func (h *PlaylistsHandler) RemoveSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathUUID(w, r, "id", "playlist")
	if !ok {
		return
	}
	entryID, ok := pathUUID(w, r, "song_id", "song")
	if !ok {
		return
	}

	if err := h.playlists.RemoveSong(r.Context(), claims.ID, playlistID, entryID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Song removed from playlist"})
}
