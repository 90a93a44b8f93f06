package tasks

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/moments/internal/clustering"
	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

// MomentStore is the subset of the moment repository the engine needs.
type MomentStore interface {
	List(criteria map[string]any) ([]*models.Moment, error)
	SetCanonicalIDForSource(trackSourceID, canonicalID string) (int64, error)
	SetTrackDuration(trackSourceID string, durationSec int) (int64, error)
}

// TrackSourceStore is the subset of the track source repository the engine needs.
type TrackSourceStore interface {
	List(criteria map[string]any) ([]*models.TrackSource, error)
	Update(ts *models.TrackSource) error
}

// MetadataLookup resolves source URLs into track metadata (services.Registry or a single service).
type MetadataLookup interface {
	Lookup(ctx context.Context, sourceURL string) (*models.TrackMetadata, error)
}

// GroupBy selects how moments are bucketed into clusters.
type GroupBy string

const (
	ByCanonical GroupBy = "canonical" // Canonical track id, derived from artist and title when unset
	BySource    GroupBy = "source"    // Track source, falling back to the source URL
	ByArtist    GroupBy = "artist"    // Normalized artist name
	ByTrack     GroupBy = "track"     // Title and artist as entered, ignoring case and spacing
)

// ParseGroupBy validates a grouping name. Empty selects [ByCanonical].
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return ByCanonical, nil
	case ByCanonical, BySource, ByArtist, ByTrack:
		return g, nil
	}
	return "", fmt.Errorf("%w: group by %q (want canonical, source, artist or track)", shared.ErrInvalidFlag, s)
}

// key returns the cluster key of m under g.
func (g GroupBy) key(m *models.Moment) string {
	switch g {
	case BySource:
		if m.TrackSourceID != "" {
			return m.TrackSourceID
		}
		return m.SourceURL
	case ByArtist:
		if a := shared.NormalizeArtist(m.Artist); a != "" {
			return a
		}
		return "unknown"
	case ByTrack:
		if strings.TrimSpace(m.Title) == "" && strings.TrimSpace(m.Artist) == "" {
			return m.ClusterKey()
		}
		return shared.NormalizeTrackKey(m.Title, m.Artist)
	default:
		return m.ClusterKey()
	}
}

// ClusterSummary is the computed range of one group of moments.
type ClusterSummary struct {
	Key     string            `json:"key"`
	Title   string            `json:"title,omitempty"`
	Artist  string            `json:"artist,omitempty"`
	Count   int               `json:"count"`
	Result  clustering.Result `json:"ranges"`
	Moments []*models.Moment  `json:"moments,omitempty"`
}

// Label names the cluster for display, preferring "Artist - Title".
func (s *ClusterSummary) Label() string {
	switch {
	case s.Artist != "" && s.Title != "":
		return s.Artist + " - " + s.Title
	case s.Title != "":
		return s.Title
	case s.Artist != "":
		return s.Artist
	}
	return s.Key
}

// SummarizeOpts configures [ClusterEngine.Summarize].
type SummarizeOpts struct {
	By             GroupBy        // Grouping (default: canonical)
	Criteria       map[string]any // Moment filters passed to the store
	MinMoments     int            // Drop clusters smaller than this (default: 1)
	IncludeMoments bool           // Keep member moments on each summary
}

// ClusterEngine computes moment clusters and maintains the track metadata they depend on.
type ClusterEngine struct {
	moments MomentStore
	sources TrackSourceStore
	lookup  MetadataLookup
}

// NewClusterEngine creates a new ClusterEngine. lookup may be nil when no metadata service is configured.
func NewClusterEngine(moments MomentStore, sources TrackSourceStore, lookup MetadataLookup) *ClusterEngine {
	return &ClusterEngine{moments: moments, sources: sources, lookup: lookup}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ClusterEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Summarize loads the moments matching opts.Criteria and computes one [ClusterSummary] per group.
func (e *ClusterEngine) Summarize(ctx context.Context, progress chan<- ProgressUpdate, opts SummarizeOpts) ([]ClusterSummary, error) {
	if e.moments == nil {
		return nil, fmt.Errorf("%w: moment store not initialized", shared.ErrServiceUnavailable)
	}

	moments, err := e.moments.List(opts.Criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to load moments: %w", err)
	}
	e.sendProgress(progress, loadMomentsUpdate(len(moments)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summaries := SummarizeMoments(moments, opts)
	e.sendProgress(progress, groupMomentsUpdate(len(summaries), cmp.Or(opts.By, ByCanonical)))
	for i := range summaries {
		e.sendProgress(progress, computeRangesUpdate(i+1, len(summaries), &summaries[i]))
	}

	return summaries, nil
}

// SummarizeMoments groups moments and computes the ranges of each group.
//
// Summaries are ordered by moment count, largest first, then by key.
// Title and artist come from the first member that has them.
func SummarizeMoments(moments []*models.Moment, opts SummarizeOpts) []ClusterSummary {
	by := cmp.Or(opts.By, ByCanonical)
	minMoments := max(opts.MinMoments, 1)

	groups := make(map[string][]*models.Moment)
	var order []string
	for _, m := range moments {
		if m == nil {
			continue
		}
		k := by.key(m)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], m)
	}

	summaries := make([]ClusterSummary, 0, len(order))
	for _, k := range order {
		members := groups[k]
		if len(members) < minMoments {
			continue
		}

		s := ClusterSummary{
			Key:    k,
			Count:  len(members),
			Result: clustering.Of(members, (*models.Moment).Interval),
		}
		for _, m := range members {
			if s.Title == "" {
				s.Title = m.Title
			}
			if s.Artist == "" {
				s.Artist = m.Artist
			}
		}
		if opts.IncludeMoments {
			s.Moments = members
		}
		summaries = append(summaries, s)
	}

	slices.SortStableFunc(summaries, func(a, b ClusterSummary) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return summaries
}
