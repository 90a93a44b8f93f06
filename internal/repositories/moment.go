package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

var _ models.Repository[*models.Moment] = (*MomentRepository)(nil)

const momentColumns = `id, sequence, service, source_url, track_source_id, canonical_track_id, start_sec, end_sec,
	track_duration_sec, title, artist, note, created_at, updated_at, deleted_at`

// MomentRepository implements models.Repository[*models.Moment].
type MomentRepository struct {
	db *sql.DB
}

// NewMomentRepository creates a new MomentRepository with the given database connection
func NewMomentRepository(db *sql.DB) *MomentRepository {
	return &MomentRepository{db: db}
}

// Create validates and inserts a new [models.Moment] with generated ID and sequence
func (r *MomentRepository) Create(moment *models.Moment) error {
	if err := moment.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "moments")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	moment.SetID(shared.GenerateID())
	moment.SetSequence(sequence)

	query := `
		INSERT INTO moments (id, sequence, service, source_url, track_source_id, canonical_track_id, start_sec, end_sec,
			track_duration_sec, title, artist, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		moment.ID(),
		sequence,
		string(moment.Service),
		moment.SourceURL,
		nullString(moment.TrackSourceID),
		nullString(moment.CanonicalTrackID),
		moment.StartSec,
		moment.EndSec,
		nullInt(moment.TrackDurationSec),
		moment.Title,
		moment.Artist,
		moment.Note,
		moment.CreatedAt(),
		moment.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert moment: %w", err)
	}

	return nil
}

// Get retrieves a moment by ID, excluding soft-deleted moments
func (r *MomentRepository) Get(id string) (*models.Moment, error) {
	query := `SELECT ` + momentColumns + ` FROM moments WHERE id = ? AND deleted_at IS NULL`

	moment, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrMomentNotFound, id)
	}
	return moment, err
}

// Update modifies an existing moment in the database
func (r *MomentRepository) Update(moment *models.Moment) error {
	if err := moment.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	moment.SetUpdatedAt(now)

	query := `
		UPDATE moments
		SET service = ?, source_url = ?, track_source_id = ?, canonical_track_id = ?, start_sec = ?, end_sec = ?,
			track_duration_sec = ?, title = ?, artist = ?, note = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(moment.Service),
		moment.SourceURL,
		nullString(moment.TrackSourceID),
		nullString(moment.CanonicalTrackID),
		moment.StartSec,
		moment.EndSec,
		nullInt(moment.TrackDurationSec),
		moment.Title,
		moment.Artist,
		moment.Note,
		now,
		moment.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update moment: %w", err)
	}

	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrMomentNotFound, moment.ID()))
}

// Delete soft-deletes a moment by ID
func (r *MomentRepository) Delete(id string) error {
	query := `UPDATE moments SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete moment: %w", err)
	}

	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrMomentNotFound, id))
}

// List retrieves all moments matching the given criteria, excluding soft-deleted moments.
//
// Supported criteria: "service", "canonical_track_id", "track_source_id", "artist" (case-insensitive)
// and "missing_canonical" (bool).
func (r *MomentRepository) List(criteria map[string]any) ([]*models.Moment, error) {
	query := `SELECT ` + momentColumns + ` FROM moments WHERE deleted_at IS NULL`
	args := []any{}

	if service, ok := criteria["service"].(string); ok && service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}

	if canonical, ok := criteria["canonical_track_id"].(string); ok && canonical != "" {
		query += " AND canonical_track_id = ?"
		args = append(args, canonical)
	}

	if sourceID, ok := criteria["track_source_id"].(string); ok && sourceID != "" {
		query += " AND track_source_id = ?"
		args = append(args, sourceID)
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND LOWER(artist) = LOWER(?)"
		args = append(args, artist)
	}

	if missing, ok := criteria["missing_canonical"].(bool); ok && missing {
		query += " AND canonical_track_id IS NULL"
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query moments: %w", err)
	}
	defer rows.Close()

	var moments []*models.Moment
	for rows.Next() {
		moment, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		moments = append(moments, moment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return moments, nil
}

// SetCanonicalIDForSource stamps canonicalID on live moments of a track source that have none yet.
// It returns the number of moments changed.
func (r *MomentRepository) SetCanonicalIDForSource(trackSourceID, canonicalID string) (int64, error) {
	query := `
		UPDATE moments
		SET canonical_track_id = ?, updated_at = ?
		WHERE track_source_id = ? AND deleted_at IS NULL AND canonical_track_id IS NULL
	`

	result, err := r.db.Exec(query, canonicalID, time.Now(), trackSourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to set canonical id: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// SetTrackDuration records a known track duration on every live moment of a track source.
func (r *MomentRepository) SetTrackDuration(trackSourceID string, durationSec int) (int64, error) {
	query := `
		UPDATE moments
		SET track_duration_sec = ?, updated_at = ?
		WHERE track_source_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, nullInt(durationSec), time.Now(), trackSourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to set track duration: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

func (r *MomentRepository) scan(row scanner) (*models.Moment, error) {
	var (
		id            string
		sequence      int
		service       string
		sourceURL     string
		trackSourceID sql.NullString
		canonicalID   sql.NullString
		startSec      float64
		endSec        float64
		trackDuration sql.NullInt64
		title         string
		artist        string
		note          string
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(&id, &sequence, &service, &sourceURL, &trackSourceID, &canonicalID, &startSec, &endSec,
		&trackDuration, &title, &artist, &note, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan moment: %w", err)
	}

	moment := models.NewMoment(sequence, models.MusicService(service), sourceURL, startSec, endSec)
	moment.SetID(id)
	moment.TrackSourceID = trackSourceID.String
	moment.CanonicalTrackID = canonicalID.String
	moment.TrackDurationSec = int(trackDuration.Int64)
	moment.Title = title
	moment.Artist = artist
	moment.Note = note
	moment.SetCreatedAt(createdAt)
	moment.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		moment.SetDeletedAt(&deletedAt.Time)
	}

	return moment, nil
}
