package tasks

import (
	"fmt"

	"github.com/desertthunder/moments/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadMoments Phase = iota
	GroupMoments
	ComputeRanges
	BackfillSources
	RefreshSources
)

func (p Phase) String() string {
	switch p {
	case LoadMoments:
		return "load_moments"
	case GroupMoments:
		return "group_moments"
	case ComputeRanges:
		return "compute_ranges"
	case BackfillSources:
		return "backfill_sources"
	case RefreshSources:
		return "refresh_sources"
	default:
		return ""
	}
}

func loadMomentsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadMoments,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d moments", count),
	}
}

func groupMomentsUpdate(groups int, by GroupBy) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GroupMoments,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Grouped into %d clusters by %s", groups, by),
	}
}

func computeRangesUpdate(step, total int, s *ClusterSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeRanges,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d moments)", step, total, s.Label(), s.Count),
		Data:    s,
	}
}

func backfillUpdate(step, total int, ts *models.TrackSource) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BackfillSources,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s → %s", step, total, ts.Artist, ts.Title, ts.CanonicalTrackID),
	}
}

func refreshStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshSources,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Refreshing %d track sources...", total),
	}
}

func refreshCompletedUpdate(step, total int, ts *models.TrackSource) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshSources,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%ds)", step, total, ts.Title, ts.DurationSec),
	}
}

func refreshFailedUpdate(step, total int, ts *models.TrackSource, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshSources,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, ts.SourceURL, err),
	}
}
