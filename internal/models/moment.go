package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/moments/internal/clustering"
	"github.com/desertthunder/moments/internal/shared"
)

var _ Model = (*Moment)(nil)

// Moment is a saved clip of a track between StartSec and EndSec.
type Moment struct {
	record

	Service          MusicService `json:"service"`
	SourceURL        string       `json:"sourceUrl"`
	TrackSourceID    string       `json:"trackSourceId,omitempty"`
	CanonicalTrackID string       `json:"canonicalTrackId,omitempty"`
	StartSec         float64      `json:"startSec"`
	EndSec           float64      `json:"endSec"`
	TrackDurationSec int          `json:"trackDurationSec,omitempty"` // 0 when unknown
	Title            string       `json:"title,omitempty"`
	Artist           string       `json:"artist,omitempty"`
	Note             string       `json:"note,omitempty"`
}

// NewMoment creates a [Moment] with creation timestamps set to now.
func NewMoment(sequence int, service MusicService, sourceURL string, startSec, endSec float64) *Moment {
	return &Moment{
		record:    newRecord(sequence),
		Service:   service,
		SourceURL: sourceURL,
		StartSec:  startSec,
		EndSec:    endSec,
	}
}

// Validate checks the source and timing of the moment.
func (m *Moment) Validate() error {
	if m.SourceURL == "" {
		return fmt.Errorf("%w: source URL is required", shared.ErrInvalidInput)
	}
	if !m.Service.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrUnsupportedService, m.Service)
	}
	if err := shared.ValidateRange(m.StartSec, m.EndSec); err != nil {
		return err
	}
	if m.TrackDurationSec > 0 && m.EndSec > float64(m.TrackDurationSec) {
		return fmt.Errorf("%w: end %s is past track duration %s", shared.ErrInvalidRange,
			shared.FormatSeconds(m.EndSec), shared.FormatDuration(m.TrackDurationSec))
	}
	return nil
}

// Interval projects the moment onto the time axis.
func (m *Moment) Interval() clustering.Interval {
	return clustering.Interval{StartSec: m.StartSec, EndSec: m.EndSec}
}

// DurationSec returns the length of the clip.
func (m *Moment) DurationSec() float64 {
	return m.EndSec - m.StartSec
}

// ClusterKey returns the moment's canonical track id, deriving one from artist and title when unset.
func (m *Moment) ClusterKey() string {
	if m.CanonicalTrackID != "" {
		return m.CanonicalTrackID
	}
	return shared.CanonicalID(m.Artist, m.Title)
}

// ApplySource copies identifying metadata from ts onto the moment without overwriting values already set.
func (m *Moment) ApplySource(ts *TrackSource) {
	if ts == nil {
		return
	}
	m.TrackSourceID = ts.ID()
	if m.CanonicalTrackID == "" {
		m.CanonicalTrackID = ts.CanonicalTrackID
	}
	if m.Title == "" {
		m.Title = ts.Title
	}
	if m.Artist == "" {
		m.Artist = ts.Artist
	}
	if m.TrackDurationSec == 0 {
		m.TrackDurationSec = ts.DurationSec
	}
}

// MarshalJSON includes the persistent id and timestamps alongside the exported fields.
func (m *Moment) MarshalJSON() ([]byte, error) {
	type alias Moment
	return json.Marshal(struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"createdAt"`
		*alias
	}{m.ID(), m.CreatedAt(), (*alias)(m)})
}
