package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/moments/internal/clustering"
	"github.com/desertthunder/moments/internal/shared"
)

func TestMoment(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			moment  *Moment
			wantErr error
		}{
			{
				name:   "valid",
				moment: NewMoment(0, ServiceYouTube, "https://youtu.be/abc", 10, 20),
			},
			{
				name:   "instant",
				moment: NewMoment(0, ServiceYouTube, "https://youtu.be/abc", 10, 10),
			},
			{
				name:    "missing source",
				moment:  NewMoment(0, ServiceYouTube, "", 10, 20),
				wantErr: shared.ErrInvalidInput,
			},
			{
				name:    "start after end",
				moment:  NewMoment(0, ServiceYouTube, "https://youtu.be/abc", 20, 10),
				wantErr: shared.ErrInvalidRange,
			},
			{
				name:    "unknown service",
				moment:  NewMoment(0, MusicService("tidal"), "https://tidal.com/x", 0, 10),
				wantErr: shared.ErrUnsupportedService,
			},
			{
				name: "past track duration",
				moment: func() *Moment {
					m := NewMoment(0, ServiceSpotify, "https://open.spotify.com/track/x", 100, 250)
					m.TrackDurationSec = 200
					return m
				}(),
				wantErr: shared.ErrInvalidRange,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.moment.Validate()
				if tt.wantErr == nil {
					if err != nil {
						t.Errorf("unexpected error: %v", err)
					}
					return
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("Interval", func(t *testing.T) {
		m := NewMoment(0, ServiceYouTube, "https://youtu.be/abc", 12.5, 30)
		if got := m.Interval(); got != (clustering.Interval{StartSec: 12.5, EndSec: 30}) {
			t.Errorf("Interval() = %+v", got)
		}
		if m.DurationSec() != 17.5 {
			t.Errorf("DurationSec() = %v, want 17.5", m.DurationSec())
		}
	})

	t.Run("ClusterKey", func(t *testing.T) {
		m := NewMoment(0, ServiceYouTube, "https://youtu.be/abc", 0, 10)
		m.Artist, m.Title = "The Beatles", "Hey Jude"
		if got, want := m.ClusterKey(), shared.CanonicalID("The Beatles", "Hey Jude"); got != want {
			t.Errorf("ClusterKey() = %s, want %s", got, want)
		}

		m.CanonicalTrackID = "can_explicit"
		if m.ClusterKey() != "can_explicit" {
			t.Errorf("explicit canonical id should win, got %s", m.ClusterKey())
		}
	})

	t.Run("ApplySource", func(t *testing.T) {
		ts := NewTrackSource(1, ServiceYouTube, "https://www.youtube.com/watch?v=abc")
		ts.SetID("ts-1")
		ts.Title, ts.Artist, ts.DurationSec = "Hey Jude", "The Beatles", 431
		ts.EnsureCanonicalID()

		m := NewMoment(0, ServiceYouTube, ts.SourceURL, 0, 10)
		m.Title = "My title"
		m.ApplySource(ts)

		if m.TrackSourceID != "ts-1" {
			t.Errorf("expected track source id ts-1, got %s", m.TrackSourceID)
		}
		if m.Title != "My title" {
			t.Errorf("existing title should be kept, got %s", m.Title)
		}
		if m.Artist != "The Beatles" {
			t.Errorf("expected artist from source, got %s", m.Artist)
		}
		if m.TrackDurationSec != 431 || m.CanonicalTrackID != ts.CanonicalTrackID {
			t.Errorf("expected duration and canonical id from source, got %d %s", m.TrackDurationSec, m.CanonicalTrackID)
		}

		m.ApplySource(nil)
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		m := NewMoment(0, ServiceYouTube, "https://youtu.be/abc", 5, 15)
		m.SetID("moment-1")

		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		out := string(data)
		for _, want := range []string{`"id":"moment-1"`, `"startSec":5`, `"endSec":15`, `"service":"youtube"`} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %s in %s", want, out)
			}
		}
	})
}

func TestTrackSource(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		valid := NewTrackSource(0, ServiceSpotify, "https://open.spotify.com/track/123")
		if err := valid.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		for _, raw := range []string{"", "not a url", "/relative/path"} {
			ts := NewTrackSource(0, ServiceYouTube, raw)
			if err := ts.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %q, got %v", raw, err)
			}
		}

		neg := NewTrackSource(0, ServiceYouTube, "https://youtu.be/abc")
		neg.DurationSec = -1
		if err := neg.Validate(); err == nil {
			t.Error("expected error for negative duration")
		}
	})

	t.Run("EnsureCanonicalID", func(t *testing.T) {
		ts := NewTrackSource(0, ServiceYouTube, "https://youtu.be/abc")
		ts.Artist, ts.Title = "The Beatles", "Hey Jude"

		if !ts.EnsureCanonicalID() {
			t.Fatal("expected canonical id to be set")
		}
		if ts.CanonicalTrackID != shared.CanonicalID("The Beatles", "Hey Jude") {
			t.Errorf("unexpected canonical id %s", ts.CanonicalTrackID)
		}
		if ts.EnsureCanonicalID() {
			t.Error("second call should be a no-op")
		}
	})

	t.Run("MusicService", func(t *testing.T) {
		for _, s := range []MusicService{ServiceYouTube, ServiceSpotify, ServiceAppleMusic, ServiceUnknown, ServiceLegacy} {
			if !s.Valid() {
				t.Errorf("%s should be valid", s)
			}
		}
		if MusicService("").Valid() {
			t.Error("empty service should be invalid")
		}
	})
}
