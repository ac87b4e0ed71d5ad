package dto

// TrackResponse is the simplified catalog track returned by mood search
type TrackResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artist      string   `json:"artist"`
	Audio       string   `json:"audio"`
	Image       string   `json:"image"`
	License     string   `json:"license"`
	Duration    int      `json:"duration"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"release_date"`
	Waveform    string   `json:"waveform"`
	Genres      []string `json:"genres"`
}
