package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

// MusicHandler proxies catalog searches
type MusicHandler struct {
	music  *services.MusicService
	logger *zap.Logger
}

// NewMusicHandler creates a new MusicHandler instance
func NewMusicHandler(music *services.MusicService, logger *zap.Logger) *MusicHandler {
	return &MusicHandler{music: music, logger: logger}
}

// GetMusicByMood searches the catalog by mood tag
// @Summary Search music by mood
// @Tags music
// @Produce json
// @Param mood path string true "Mood tag, e.g. happy"
// @Success 200 {array} dto.TrackResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid mood"
// @Failure 500 {object} dto.ErrorResponse "Catalog unavailable"
// @Router /api/music/mood/{mood} [get]
func (h *MusicHandler) GetMusicByMood(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.music.SearchByMood(r.Context(), r.PathValue("mood"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]dto.TrackResponse, 0, len(tracks))
	for _, track := range tracks {
		resp = append(resp, toTrackResponse(track))
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}
