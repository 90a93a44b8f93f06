package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
	"golang.org/x/time/rate"
)

// RefreshOpts contains configuration for [ClusterEngine.RefreshDurations].
type RefreshOpts struct {
	Service    models.MusicService // Only refresh sources of this service (default: all)
	Limit      int                 // Maximum sources to refresh (default: all)
	NumWorkers int                 // Concurrent lookups (default: 4, max: 10)
	RateLimit  float64             // Lookups per second (default: 5)
}

// RefreshFailure records a track source whose duration could not be refreshed.
type RefreshFailure struct {
	TrackSourceID string `json:"trackSourceId"`
	SourceURL     string `json:"sourceUrl"`
	Error         error  `json:"-"`
}

// RefreshResult summarizes a duration refresh.
type RefreshResult struct {
	Total    int              `json:"total"`
	Updated  int              `json:"updated"`
	Moments  int64            `json:"moments"` // Moments whose track duration was filled in
	Failures []RefreshFailure `json:"failures,omitempty"`
}

type refreshJob struct {
	source *models.TrackSource
}

type refreshOutcome struct {
	source *models.TrackSource
	meta   *models.TrackMetadata
	err    error
}

// RefreshDurations looks up metadata for track sources without a known duration and stores what it finds.
//
// Lookups run on a worker pool throttled by a shared [rate.Limiter]; results are persisted from the calling
// goroutine so the store sees a single writer. A lookup that fails or reports no duration is recorded as a
// failure and does not stop the run. Placeholder titles and artists are replaced when the lookup has better ones.
func (e *ClusterEngine) RefreshDurations(ctx context.Context, progress chan<- ProgressUpdate, opts RefreshOpts) (*RefreshResult, error) {
	if e.lookup == nil {
		return nil, fmt.Errorf("%w: no metadata service configured", shared.ErrServiceUnavailable)
	}
	if e.moments == nil || e.sources == nil {
		return nil, fmt.Errorf("%w: stores not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	criteria := map[string]any{"missing_duration": true}
	if opts.Service != "" {
		criteria["service"] = string(opts.Service)
	}
	sources, err := e.sources.List(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to load track sources: %w", err)
	}
	if opts.Limit > 0 && len(sources) > opts.Limit {
		sources = sources[:opts.Limit]
	}

	result := &RefreshResult{Total: len(sources)}
	if len(sources) == 0 {
		return result, nil
	}
	e.sendProgress(progress, refreshStartedUpdate(len(sources)))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan refreshJob, len(sources))
	outcomes := make(chan refreshOutcome, len(sources))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.refreshWorker(ctx, &wg, limiter, jobs, outcomes)
	}

	for _, ts := range sources {
		jobs <- refreshJob{source: ts}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for out := range outcomes {
		completed++

		if err := e.applyRefresh(out, result); err != nil {
			result.Failures = append(result.Failures, RefreshFailure{
				TrackSourceID: out.source.ID(),
				SourceURL:     out.source.SourceURL,
				Error:         err,
			})
			e.sendProgress(progress, refreshFailedUpdate(completed, len(sources), out.source, err))
			continue
		}

		result.Updated++
		e.sendProgress(progress, refreshCompletedUpdate(completed, len(sources), out.source))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// refreshWorker performs rate-limited lookups for jobs until the channel closes or ctx is done.
func (e *ClusterEngine) refreshWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan refreshJob,
	outcomes chan<- refreshOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			outcomes <- refreshOutcome{source: job.source, err: err}
			continue
		}

		meta, err := e.lookup.Lookup(ctx, job.source.SourceURL)
		outcomes <- refreshOutcome{source: job.source, meta: meta, err: err}
	}
}

func (e *ClusterEngine) applyRefresh(out refreshOutcome, result *RefreshResult) error {
	if out.err != nil {
		return out.err
	}
	if out.meta == nil || out.meta.DurationSec <= 0 {
		return fmt.Errorf("%w: no duration reported", shared.ErrTrackNotFound)
	}

	ts := out.source
	ts.DurationSec = out.meta.DurationSec
	if (ts.Title == "" || ts.Title == models.UnknownTitle) && out.meta.Title != "" {
		ts.Title = out.meta.Title
	}
	if (ts.Artist == "" || ts.Artist == models.UnknownArtist) && out.meta.Artist != "" {
		ts.Artist = out.meta.Artist
	}
	if ts.Artwork == "" {
		ts.Artwork = out.meta.Artwork
	}

	if err := e.sources.Update(ts); err != nil {
		return fmt.Errorf("failed to update track source: %w", err)
	}

	n, err := e.moments.SetTrackDuration(ts.ID(), ts.DurationSec)
	if err != nil {
		return fmt.Errorf("failed to update moments: %w", err)
	}
	result.Moments += n
	return nil
}
