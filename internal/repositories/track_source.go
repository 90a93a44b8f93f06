package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

var _ models.Repository[*models.TrackSource] = (*TrackSourceRepository)(nil)

const trackSourceColumns = `id, sequence, service, source_url, title, artist, artwork, duration_sec, canonical_track_id,
	created_at, updated_at, deleted_at`

// LookupFunc fetches metadata for a source URL from its music service.
type LookupFunc func(ctx context.Context, sourceURL string) (*models.TrackMetadata, error)

// TrackSourceRepository implements models.Repository[*models.TrackSource].
//
// Source URLs are unique, so a URL maps to at most one live track source.
type TrackSourceRepository struct {
	db *sql.DB
}

// NewTrackSourceRepository creates a new TrackSourceRepository with the given database connection
func NewTrackSourceRepository(db *sql.DB) *TrackSourceRepository {
	return &TrackSourceRepository{db: db}
}

// Create validates and inserts a new [models.TrackSource] with generated ID and sequence
func (r *TrackSourceRepository) Create(ts *models.TrackSource) error {
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "track_sources")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	ts.SetID(shared.GenerateID())
	ts.SetSequence(sequence)

	query := `
		INSERT INTO track_sources (id, sequence, service, source_url, title, artist, artwork, duration_sec,
			canonical_track_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		ts.ID(),
		sequence,
		string(ts.Service),
		ts.SourceURL,
		ts.Title,
		ts.Artist,
		ts.Artwork,
		nullInt(ts.DurationSec),
		nullString(ts.CanonicalTrackID),
		ts.CreatedAt(),
		ts.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track source: %w", err)
	}

	return nil
}

// Get retrieves a track source by ID, excluding soft-deleted rows
func (r *TrackSourceRepository) Get(id string) (*models.TrackSource, error) {
	query := `SELECT ` + trackSourceColumns + ` FROM track_sources WHERE id = ? AND deleted_at IS NULL`

	ts, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackSourceNotFound, id)
	}
	return ts, err
}

// GetBySourceURL retrieves the live track source for a URL
func (r *TrackSourceRepository) GetBySourceURL(sourceURL string) (*models.TrackSource, error) {
	query := `SELECT ` + trackSourceColumns + ` FROM track_sources WHERE source_url = ? AND deleted_at IS NULL`

	ts, err := r.scan(r.db.QueryRow(query, sourceURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackSourceNotFound, sourceURL)
	}
	return ts, err
}

// Update modifies an existing track source in the database
func (r *TrackSourceRepository) Update(ts *models.TrackSource) error {
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	ts.SetUpdatedAt(now)

	query := `
		UPDATE track_sources
		SET title = ?, artist = ?, artwork = ?, duration_sec = ?, canonical_track_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		ts.Title,
		ts.Artist,
		ts.Artwork,
		nullInt(ts.DurationSec),
		nullString(ts.CanonicalTrackID),
		now,
		ts.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track source: %w", err)
	}

	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrTrackSourceNotFound, ts.ID()))
}

// Delete soft-deletes a track source by ID.
//
// The source URL is released so the same URL can be registered again.
func (r *TrackSourceRepository) Delete(id string) error {
	query := `
		UPDATE track_sources
		SET deleted_at = ?, source_url = source_url || '#deleted-' || id
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track source: %w", err)
	}

	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrTrackSourceNotFound, id))
}

// List retrieves all track sources matching the given criteria, excluding soft-deleted rows.
//
// Supported criteria: "service", "canonical_track_id", "missing_canonical" (bool) and "missing_duration" (bool).
func (r *TrackSourceRepository) List(criteria map[string]any) ([]*models.TrackSource, error) {
	query := `SELECT ` + trackSourceColumns + ` FROM track_sources WHERE deleted_at IS NULL`
	args := []any{}

	if service, ok := criteria["service"].(string); ok && service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}

	if canonical, ok := criteria["canonical_track_id"].(string); ok && canonical != "" {
		query += " AND canonical_track_id = ?"
		args = append(args, canonical)
	}

	if missing, ok := criteria["missing_canonical"].(bool); ok && missing {
		query += " AND canonical_track_id IS NULL"
	}

	if missing, ok := criteria["missing_duration"].(bool); ok && missing {
		query += " AND (duration_sec IS NULL OR duration_sec <= 0)"
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.TrackSource
	for rows.Next() {
		ts, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sources, nil
}

// FindOrCreate returns the track source registered for sourceURL, creating it when absent.
//
// An existing source is returned untouched. Otherwise provided seeds the metadata and a successful lookup
// replaces it; a failed lookup is not fatal. Missing titles and artists fall back to
// [models.UnknownTitle] and [models.UnknownArtist]. The boolean reports whether a row was created.
func (r *TrackSourceRepository) FindOrCreate(
	ctx context.Context, service models.MusicService, sourceURL string, provided *models.TrackMetadata, lookup LookupFunc,
) (*models.TrackSource, bool, error) {
	existing, err := r.GetBySourceURL(sourceURL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrTrackSourceNotFound) {
		return nil, false, err
	}

	ts := models.NewTrackSource(0, service, sourceURL)
	provided.Apply(ts)

	if lookup != nil {
		meta, err := lookup(ctx, sourceURL)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		if err == nil {
			meta.Apply(ts)
		}
	}

	if ts.Title == "" {
		ts.Title = models.UnknownTitle
	}
	if ts.Artist == "" {
		ts.Artist = models.UnknownArtist
	}

	if err := r.Create(ts); err != nil {
		return nil, false, err
	}
	return ts, true, nil
}

func (r *TrackSourceRepository) scan(row scanner) (*models.TrackSource, error) {
	var (
		id          string
		sequence    int
		service     string
		sourceURL   string
		title       string
		artist      string
		artwork     string
		duration    sql.NullInt64
		canonicalID sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &service, &sourceURL, &title, &artist, &artwork, &duration, &canonicalID,
		&createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track source: %w", err)
	}

	ts := models.NewTrackSource(sequence, models.MusicService(service), sourceURL)
	ts.SetID(id)
	ts.Title = title
	ts.Artist = artist
	ts.Artwork = artwork
	ts.DurationSec = int(duration.Int64)
	ts.CanonicalTrackID = canonicalID.String
	ts.SetCreatedAt(createdAt)
	ts.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		ts.SetDeletedAt(&deletedAt.Time)
	}

	return ts, nil
}
