package models

// Track is a catalog track reduced to what the web client plays and displays
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artist      string   `json:"artist"`
	Audio       string   `json:"audio"`
	Image       string   `json:"image,omitempty"`
	License     string   `json:"license,omitempty"`
	Duration    int      `json:"duration"`
	Album       string   `json:"album,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Waveform    string   `json:"waveform,omitempty"`
	Genres      []string `json:"genres"`
}
