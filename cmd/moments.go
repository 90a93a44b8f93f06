package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/services"
	"github.com/desertthunder/moments/internal/shared"
	"github.com/urfave/cli/v3"
)

// MomentsAdd saves a moment, creating the track source for its URL on first use.
func (r *Runner) MomentsAdd(ctx context.Context, cmd *cli.Command) error {
	sourceURL := strings.TrimSpace(cmd.String("url"))
	if sourceURL == "" {
		return fmt.Errorf("%w: --url", shared.ErrMissingArgument)
	}

	start, err := shared.ParseTimestamp(cmd.String("start"))
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := shared.ParseTimestamp(cmd.String("end"))
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if err := shared.ValidateRange(start, end); err != nil {
		return err
	}

	service := services.DetectService(sourceURL)
	if service == models.ServiceUnknown {
		r.logger.Warn("unrecognized source URL, saving without metadata lookup", "url", sourceURL)
	}

	if err := r.ensureDB(); err != nil {
		return err
	}

	provided := &models.TrackMetadata{Title: cmd.String("title"), Artist: cmd.String("artist")}
	ts, created, err := r.sources.FindOrCreate(ctx, service, sourceURL, provided, r.lookupFunc())
	if err != nil {
		return fmt.Errorf("failed to resolve track source: %w", err)
	}
	if created {
		r.logger.Info("created track source", "id", ts.ID(), "title", ts.Title, "artist", ts.Artist)
	}

	moment := models.NewMoment(0, service, sourceURL, start, end)
	moment.Note = cmd.String("note")
	moment.ApplySource(ts)

	if err := r.moments.Create(moment); err != nil {
		return fmt.Errorf("failed to save moment: %w", err)
	}
	r.logger.Info("saved moment", "id", moment.ID(), "start", start, "end", end)

	if cmd.Bool("json") {
		return r.writeJSON(moment, true)
	}

	r.writePlain("✓ Saved moment %s\n", moment.ID())
	r.writePlain("%s - %s  %s-%s\n", moment.Artist, moment.Title,
		shared.FormatSeconds(moment.StartSec), shared.FormatSeconds(moment.EndSec))
	return nil
}

// MomentsList prints saved moments, optionally filtered by service, canonical track id or artist.
func (r *Runner) MomentsList(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{}

	if s := cmd.String("service"); s != "" {
		service := models.MusicService(strings.ToLower(s))
		if !service.Valid() {
			return fmt.Errorf("%w: unknown service %q", shared.ErrInvalidFlag, s)
		}
		criteria["service"] = string(service)
	}
	if c := cmd.String("canonical"); c != "" {
		criteria["canonical_track_id"] = c
	}
	if a := cmd.String("artist"); a != "" {
		criteria["artist"] = a
	}

	if err := r.ensureDB(); err != nil {
		return err
	}

	moments, err := r.moments.List(criteria)
	if err != nil {
		return err
	}
	if moments == nil {
		moments = []*models.Moment{}
	}

	if cmd.Bool("json") {
		return r.writeJSON(moments, cmd.Bool("pretty"))
	}

	if len(moments) == 0 {
		r.writePlain("No moments found.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Moments (%d)", len(moments)))
	for _, m := range moments {
		r.writePlain("%s  %-8s %s-%s  %s - %s\n", m.ID(), m.Service,
			shared.FormatSeconds(m.StartSec), shared.FormatSeconds(m.EndSec), m.Artist, m.Title)
		if m.Note != "" {
			r.writePlain("    %s\n", m.Note)
		}
	}
	return nil
}

// MomentsDelete soft-deletes a moment by id.
func (r *Runner) MomentsDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.String("id"))
	if id == "" {
		return fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}

	if err := r.ensureDB(); err != nil {
		return err
	}

	if err := r.moments.Delete(id); err != nil {
		return fmt.Errorf("failed to delete moment %s: %w", id, err)
	}

	r.logger.Info("deleted moment", "id", id)
	r.writePlain("✓ Deleted moment %s\n", id)
	return nil
}
