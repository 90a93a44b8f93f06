package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
	"github.com/desertthunder/moments/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TracksBackfill assigns canonical track ids to track sources missing one and stamps them on their moments.
func (r *Runner) TracksBackfill(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDB(); err != nil {
		return err
	}

	r.logger.Info("backfilling canonical track ids")

	progress, stop := r.watchProgress(log.InfoLevel)
	result, err := r.engine.BackfillCanonical(ctx, progress)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("✓ Backfilled %d track sources and %d moments\n", result.Sources, result.Moments)
	return nil
}

// TracksRefresh looks up track sources without a known duration and stores what the metadata services return.
//
// Flags left at zero fall back to the [refresh] section of the config.
func (r *Runner) TracksRefresh(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.RefreshOpts{
		Limit:      int(cmd.Int("limit")),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = r.config.Refresh.Workers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = r.config.Refresh.RateLimit
	}
	if s := cmd.String("service"); s != "" {
		opts.Service = models.MusicService(strings.ToLower(s))
		if !opts.Service.Valid() {
			return fmt.Errorf("%w: unknown service %q", shared.ErrInvalidFlag, s)
		}
	}

	if err := r.ensureDB(); err != nil {
		return err
	}

	r.logger.Info("refreshing track durations", "workers", opts.NumWorkers, "rate", opts.RateLimit)

	progress, stop := r.watchProgress(log.InfoLevel)
	result, err := r.engine.RefreshDurations(ctx, progress, opts)
	stop()
	if err != nil {
		return err
	}

	r.writePlainHeader("Refresh Complete")
	r.writePlain("Updated: %d/%d track sources\n", result.Updated, result.Total)
	r.writePlain("Moments updated: %d\n", result.Moments)

	if len(result.Failures) > 0 {
		r.writePlain("\nFailed to refresh %d track sources:\n", len(result.Failures))
		for _, f := range result.Failures {
			r.writePlain("  ✗ %s: %v\n", f.SourceURL, f.Error)
		}
	}
	return nil
}

// TracksRelated asks the metadata service of --url for related tracks and counts the moments saved for each.
func (r *Runner) TracksRelated(ctx context.Context, cmd *cli.Command) error {
	sourceURL := strings.TrimSpace(cmd.String("url"))
	if sourceURL == "" {
		return fmt.Errorf("%w: --url", shared.ErrMissingArgument)
	}

	if err := r.ensureDB(); err != nil {
		return err
	}

	items, err := r.registry.Related(ctx, sourceURL, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to fetch related tracks: %w", err)
	}

	for i := range items {
		n, err := r.countMoments(items[i].SourceURL)
		if err != nil {
			return err
		}
		items[i].MomentCount = n
	}
	r.logger.Debug("related tracks", "url", sourceURL, "count", len(items))

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	if len(items) == 0 {
		r.writePlain("No related tracks found\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Related to %s", sourceURL))
	for _, item := range items {
		r.writePlain("%s - %s", item.Artist, item.Title)
		if item.MomentCount > 0 {
			r.writePlain(" (%d moments)", item.MomentCount)
		}
		r.writePlain("\n  %s\n", item.SourceURL)
	}
	return nil
}

// countMoments returns the number of live moments saved for sourceURL.
func (r *Runner) countMoments(sourceURL string) (int, error) {
	ts, err := r.sources.GetBySourceURL(sourceURL)
	if errors.Is(err, shared.ErrTrackSourceNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to look up track source: %w", err)
	}

	moments, err := r.moments.List(map[string]any{"track_source_id": ts.ID()})
	if err != nil {
		return 0, fmt.Errorf("failed to count moments: %w", err)
	}
	return len(moments), nil
}
