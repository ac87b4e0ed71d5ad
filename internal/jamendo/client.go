// Package jamendo is a small client for the Jamendo v3 tracks API.
package jamendo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/models"
)

// ErrNotConfigured is returned when no client id is set
var ErrNotConfigured = errors.New("jamendo client id not configured")

const maxResponseBody = 4 << 20

// StatusError is returned for unsuccessful catalog responses
type StatusError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("jamendo: http %d, status %q: %s", e.HTTPStatus, e.Status, e.Message)
	}
	return fmt.Sprintf("jamendo: http %d, status %q", e.HTTPStatus, e.Status)
}

type responseHeaders struct {
	Status       string `json:"status"`
	Code         int    `json:"code"`
	ErrorMessage string `json:"error_message"`
	ResultsCount int    `json:"results_count"`
}

type tracksResponse struct {
	Headers responseHeaders   `json:"headers"`
	Results []json.RawMessage `json:"results"`
}

type rawTrack struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Duration     int        `json:"duration"`
	ArtistName   string     `json:"artist_name"`
	AlbumName    string     `json:"album_name"`
	AlbumImage   string     `json:"album_image"`
	Image        string     `json:"image"`
	Audio        string     `json:"audio"`
	LicenseCCURL string     `json:"license_ccurl"`
	ReleaseDate  string     `json:"releasedate"`
	Waveform     string     `json:"waveform"`
	MusicInfo    *musicInfo `json:"musicinfo"`
}

type musicInfo struct {
	Tags struct {
		Genres []string `json:"genres"`
	} `json:"tags"`
}

// Client queries the catalog. Requests share a token bucket limiter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	limit      int
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient builds a client from cfg; timeout bounds every request
func NewClient(cfg *config.JamendoConfig, timeout time.Duration, logger *zap.Logger) *Client {
	limit := cfg.ResultLimit
	if limit <= 0 {
		limit = 20
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		limit:      limit,
		limiter:    limiter,
		logger:     logger,
	}
}

// SearchByMood returns tracks whose tags fuzzily match mood. Records that
// fail to decode or lack an id, a name or an audio url are skipped.
func (c *Client) SearchByMood(ctx context.Context, mood string) ([]models.Track, error) {
	if c.clientID == "" {
		return nil, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("jamendo: rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("client_id", c.clientID)
	query.Set("format", "json")
	query.Set("limit", strconv.Itoa(c.limit))
	query.Set("fuzzytags", mood)
	query.Set("include", "musicinfo")
	query.Set("audioformat", "mp32")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tracks?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jamendo: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jamendo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil, &StatusError{HTTPStatus: resp.StatusCode}
	}

	var payload tracksResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("jamendo: decode response: %w", err)
	}
	if payload.Headers.Status != "success" {
		return nil, &StatusError{
			HTTPStatus: resp.StatusCode,
			Status:     payload.Headers.Status,
			Message:    payload.Headers.ErrorMessage,
		}
	}

	tracks := make([]models.Track, 0, len(payload.Results))
	for i, record := range payload.Results {
		var raw rawTrack
		if err := json.Unmarshal(record, &raw); err != nil {
			c.logger.Warn("skipping malformed jamendo track",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		track, ok := raw.toTrack()
		if !ok {
			c.logger.Warn("skipping incomplete jamendo track",
				zap.Int("index", i),
				zap.String("track_id", raw.ID),
			)
			continue
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

func (t rawTrack) toTrack() (models.Track, bool) {
	if t.ID == "" || t.Name == "" || t.Audio == "" {
		return models.Track{}, false
	}

	image := t.AlbumImage
	if image == "" {
		image = t.Image
	}

	genres := []string{}
	if t.MusicInfo != nil && t.MusicInfo.Tags.Genres != nil {
		genres = t.MusicInfo.Tags.Genres
	}

	return models.Track{
		ID:          t.ID,
		Name:        t.Name,
		Artist:      t.ArtistName,
		Audio:       t.Audio,
		Image:       image,
		License:     t.LicenseCCURL,
		Duration:    t.Duration,
		Album:       t.AlbumName,
		ReleaseDate: t.ReleaseDate,
		Waveform:    t.Waveform,
		Genres:      genres,
	}, true
}
