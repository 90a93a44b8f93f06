package models

// TrackMetadata is what a music service reports about a source URL.
type TrackMetadata struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Artwork     string `json:"artwork,omitempty"`
	DurationSec int    `json:"durationSec,omitempty"`
}

// Apply copies non-empty metadata fields onto ts.
func (m *TrackMetadata) Apply(ts *TrackSource) {
	if m == nil || ts == nil {
		return
	}
	if m.Title != "" {
		ts.Title = m.Title
	}
	if m.Artist != "" {
		ts.Artist = m.Artist
	}
	if m.Artwork != "" {
		ts.Artwork = m.Artwork
	}
	if m.DurationSec > 0 {
		ts.DurationSec = m.DurationSec
	}
}

// RelatedItem is a track a music service suggests alongside another one.
//
// MomentCount is filled in locally from saved moments for the item's URL.
type RelatedItem struct {
	ID          string       `json:"id"`
	Service     MusicService `json:"service"`
	Title       string       `json:"title"`
	Artist      string       `json:"artist"`
	Artwork     string       `json:"artwork,omitempty"`
	SourceURL   string       `json:"sourceUrl"`
	MomentCount int          `json:"momentCount,omitempty"`
}
