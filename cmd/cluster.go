package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moments/internal/formatter"
	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/services"
	"github.com/desertthunder/moments/internal/shared"
	"github.com/desertthunder/moments/internal/tasks"
	"github.com/desertthunder/moments/internal/ui"
	"github.com/urfave/cli/v3"
)

// momentRecord is one entry of a moments JSON file passed with --file.
//
// Only startSec and endSec are required.
type momentRecord struct {
	StartSec         float64 `json:"startSec"`
	EndSec           float64 `json:"endSec"`
	Service          string  `json:"service"`
	SourceURL        string  `json:"sourceUrl"`
	TrackSourceID    string  `json:"trackSourceId"`
	CanonicalTrackID string  `json:"canonicalTrackId"`
	TrackDurationSec int     `json:"trackDurationSec"`
	Title            string  `json:"title"`
	Artist           string  `json:"artist"`
	Note             string  `json:"note"`
}

func (rec momentRecord) moment(sequence int) *models.Moment {
	service := models.MusicService(rec.Service)
	if service == "" {
		service = services.DetectService(rec.SourceURL)
	}

	m := models.NewMoment(sequence, service, rec.SourceURL, rec.StartSec, rec.EndSec)
	m.TrackSourceID = rec.TrackSourceID
	m.CanonicalTrackID = rec.CanonicalTrackID
	m.TrackDurationSec = rec.TrackDurationSec
	m.Title = rec.Title
	m.Artist = rec.Artist
	m.Note = rec.Note
	return m
}

// loadMomentsFile reads a JSON array of moment records.
func loadMomentsFile(path string) ([]*models.Moment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read moments file: %w", err)
	}

	var records []momentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse moments file %s: %v", shared.ErrInvalidInput, path, err)
	}

	moments := make([]*models.Moment, len(records))
	for i, rec := range records {
		moments[i] = rec.moment(i + 1)
	}
	return moments, nil
}

// filterMoments applies the service and artist criteria used by the database query to in-memory moments.
func filterMoments(moments []*models.Moment, criteria map[string]any) []*models.Moment {
	service, _ := criteria["service"].(string)
	artist, _ := criteria["artist"].(string)
	if service == "" && artist == "" {
		return moments
	}

	kept := make([]*models.Moment, 0, len(moments))
	for _, m := range moments {
		if service != "" && string(m.Service) != service {
			continue
		}
		if artist != "" && !strings.EqualFold(m.Artist, artist) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// Cluster computes the total and core ranges of each group of moments and renders them.
//
// Moments come from the database unless --file names a JSON file of moment records.
func (r *Runner) Cluster(ctx context.Context, cmd *cli.Command) error {
	by, err := tasks.ParseGroupBy(cmd.String("by"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if s := cmd.String("service"); s != "" {
		service := models.MusicService(strings.ToLower(s))
		if !service.Valid() {
			return fmt.Errorf("%w: unknown service %q", shared.ErrInvalidFlag, s)
		}
		criteria["service"] = string(service)
	}
	if a := cmd.String("artist"); a != "" {
		criteria["artist"] = a
	}

	outputPath := cmd.String("output")
	opts := tasks.SummarizeOpts{
		By:             by,
		Criteria:       criteria,
		MinMoments:     int(cmd.Int("min")),
		IncludeMoments: format == formatter.FormatText && outputPath == "",
	}

	var summaries []tasks.ClusterSummary
	if path := cmd.String("file"); path != "" {
		moments, err := loadMomentsFile(path)
		if err != nil {
			return err
		}
		for _, m := range moments {
			if err := shared.ValidateRange(m.StartSec, m.EndSec); err != nil {
				r.logger.Warn("malformed moment in file", "sequence", m.Sequence(), "error", err)
			}
		}
		summaries = tasks.SummarizeMoments(filterMoments(moments, criteria), opts)
		r.logger.Debug("clustered moments from file", "path", path, "moments", len(moments), "clusters", len(summaries))
	} else {
		if err := r.ensureDB(); err != nil {
			return err
		}

		progress, stop := r.watchProgress(log.DebugLevel)
		summaries, err = r.engine.Summarize(ctx, progress, opts)
		stop()
		if err != nil {
			return err
		}
	}

	if outputPath != "" {
		written, err := formatter.WriteExport(summaries, format, outputPath)
		if err != nil {
			return err
		}
		r.logger.Info("exported clusters", "path", written, "format", format, "clusters", len(summaries))
		r.writePlain("✓ Exported %d clusters to %s\n", len(summaries), written)
		return nil
	}

	if format != formatter.FormatText {
		return formatter.Write(r.output, summaries, format)
	}

	return r.renderClusters(summaries, int(cmd.Int("width")))
}

// renderClusters prints each summary with a timeline scaled to the longest known track duration of its moments.
func (r *Runner) renderClusters(summaries []tasks.ClusterSummary, width int) error {
	if len(summaries) == 0 {
		return r.writePlain("No moments found.\n")
	}

	for i, s := range summaries {
		trackDuration := 0
		for _, m := range s.Moments {
			trackDuration = max(trackDuration, m.TrackDurationSec)
		}

		if i > 0 {
			r.writePlain("\n")
		}
		if err := r.writePlain("%s\n", ui.RenderCluster(s, width, trackDuration)); err != nil {
			return err
		}
	}
	return nil
}
