package models

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/desertthunder/moments/internal/shared"
)

var _ Model = (*TrackSource)(nil)

// TrackSource is a playable URL on a music service with cached metadata.
type TrackSource struct {
	record

	Service          MusicService `json:"service"`
	SourceURL        string       `json:"sourceUrl"`
	Title            string       `json:"title"`
	Artist           string       `json:"artist"`
	Artwork          string       `json:"artwork,omitempty"`
	DurationSec      int          `json:"durationSec,omitempty"` // 0 when unknown
	CanonicalTrackID string       `json:"canonicalTrackId,omitempty"`
}

// Fallback metadata for sources whose lookup failed.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// NewTrackSource creates a [TrackSource] with creation timestamps set to now.
func NewTrackSource(sequence int, service MusicService, sourceURL string) *TrackSource {
	return &TrackSource{
		record:    newRecord(sequence),
		Service:   service,
		SourceURL: sourceURL,
	}
}

// Validate checks that the source URL is absolute and the service is known.
func (t *TrackSource) Validate() error {
	if t.SourceURL == "" {
		return fmt.Errorf("%w: source URL is required", shared.ErrInvalidInput)
	}
	u, err := url.Parse(t.SourceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invalid source URL %q", shared.ErrInvalidInput, t.SourceURL)
	}
	if !t.Service.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrUnsupportedService, t.Service)
	}
	if t.DurationSec < 0 {
		return fmt.Errorf("%w: negative duration", shared.ErrInvalidInput)
	}
	return nil
}

// EnsureCanonicalID fills CanonicalTrackID from artist and title when it is unset and reports whether it changed.
func (t *TrackSource) EnsureCanonicalID() bool {
	if t.CanonicalTrackID != "" {
		return false
	}
	t.CanonicalTrackID = shared.CanonicalID(t.Artist, t.Title)
	return true
}

// MarshalJSON includes the persistent id alongside the exported fields.
func (t *TrackSource) MarshalJSON() ([]byte, error) {
	type alias TrackSource
	return json.Marshal(struct {
		ID string `json:"id"`
		*alias
	}{t.ID(), (*alias)(t)})
}
