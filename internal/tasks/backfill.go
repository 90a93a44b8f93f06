package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/moments/internal/shared"
)

// BackfillResult summarizes a canonical id backfill.
type BackfillResult struct {
	Sources int   `json:"sources"` // Track sources that received a canonical id
	Moments int64 `json:"moments"` // Moments stamped with their source's id
}

// BackfillCanonical assigns canonical track ids to track sources missing one and propagates them to moments.
//
// Moments that already carry a canonical id keep it.
func (e *ClusterEngine) BackfillCanonical(ctx context.Context, progress chan<- ProgressUpdate) (*BackfillResult, error) {
	if e.moments == nil || e.sources == nil {
		return nil, fmt.Errorf("%w: stores not initialized", shared.ErrServiceUnavailable)
	}

	sources, err := e.sources.List(map[string]any{"missing_canonical": true})
	if err != nil {
		return nil, fmt.Errorf("failed to load track sources: %w", err)
	}

	result := &BackfillResult{}
	for i, ts := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ts.EnsureCanonicalID()
		if err := e.sources.Update(ts); err != nil {
			return result, fmt.Errorf("failed to update track source %s: %w", ts.ID(), err)
		}
		result.Sources++

		n, err := e.moments.SetCanonicalIDForSource(ts.ID(), ts.CanonicalTrackID)
		if err != nil {
			return result, fmt.Errorf("failed to update moments of %s: %w", ts.ID(), err)
		}
		result.Moments += n

		e.sendProgress(progress, backfillUpdate(i+1, len(sources), ts))
	}

	return result, nil
}
