package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createSource(t *testing.T, repo *TrackSourceRepository, url, artist, title string) *models.TrackSource {
	t.Helper()

	ts := models.NewTrackSource(0, models.ServiceYouTube, url)
	ts.Artist, ts.Title = artist, title
	if err := repo.Create(ts); err != nil {
		t.Fatalf("failed to create track source: %v", err)
	}
	return ts
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "moments")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "nope"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestMomentRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMomentRepository(db)
		moment := models.NewMoment(0, models.ServiceYouTube, "https://youtu.be/abc", 10, 20)

		if err := repo.Create(moment); err != nil {
			t.Fatalf("failed to create moment: %v", err)
		}

		if moment.ID() == "" {
			t.Error("moment ID should be set after creation")
		}
		if moment.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", moment.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sources := NewTrackSourceRepository(db)
		ts := createSource(t, sources, "https://youtu.be/abc", "The Beatles", "Hey Jude")

		repo := NewMomentRepository(db)
		moment := models.NewMoment(0, models.ServiceYouTube, ts.SourceURL, 12.5, 30.25)
		moment.ApplySource(ts)
		moment.Note = "the na-na-na part"

		if err := repo.Create(moment); err != nil {
			t.Fatalf("failed to create moment: %v", err)
		}

		retrieved, err := repo.Get(moment.ID())
		if err != nil {
			t.Fatalf("failed to get moment: %v", err)
		}

		if retrieved.StartSec != 12.5 || retrieved.EndSec != 30.25 {
			t.Errorf("expected 12.5-30.25, got %v-%v", retrieved.StartSec, retrieved.EndSec)
		}
		if retrieved.TrackSourceID != ts.ID() {
			t.Errorf("expected track source %s, got %s", ts.ID(), retrieved.TrackSourceID)
		}
		if retrieved.Artist != "The Beatles" || retrieved.Note != "the na-na-na part" {
			t.Errorf("unexpected metadata: %+v", retrieved)
		}
		if retrieved.CanonicalTrackID != "" {
			t.Errorf("expected no canonical id, got %s", retrieved.CanonicalTrackID)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMomentRepository(db)
		moment := models.NewMoment(0, models.ServiceYouTube, "https://youtu.be/abc", 10, 20)
		if err := repo.Create(moment); err != nil {
			t.Fatalf("failed to create moment: %v", err)
		}

		moment.EndSec = 25
		moment.Note = "longer"
		if err := repo.Update(moment); err != nil {
			t.Fatalf("failed to update moment: %v", err)
		}

		retrieved, err := repo.Get(moment.ID())
		if err != nil {
			t.Fatalf("failed to get moment: %v", err)
		}
		if retrieved.EndSec != 25 || retrieved.Note != "longer" {
			t.Errorf("update not persisted: %+v", retrieved)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMomentRepository(db)
		moment := models.NewMoment(0, models.ServiceYouTube, "https://youtu.be/abc", 10, 20)
		if err := repo.Create(moment); err != nil {
			t.Fatalf("failed to create moment: %v", err)
		}

		if err := repo.Delete(moment.ID()); err != nil {
			t.Fatalf("failed to delete moment: %v", err)
		}

		if _, err := repo.Get(moment.ID()); !errors.Is(err, shared.ErrMomentNotFound) {
			t.Errorf("expected ErrMomentNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sources := NewTrackSourceRepository(db)
		jude := createSource(t, sources, "https://youtu.be/jude", "The Beatles", "Hey Jude")
		jude.EnsureCanonicalID()
		if err := sources.Update(jude); err != nil {
			t.Fatalf("failed to update track source: %v", err)
		}

		repo := NewMomentRepository(db)
		moments := []*models.Moment{
			models.NewMoment(0, models.ServiceYouTube, jude.SourceURL, 0, 10),
			models.NewMoment(0, models.ServiceYouTube, jude.SourceURL, 5, 15),
			models.NewMoment(0, models.ServiceSpotify, "https://open.spotify.com/track/1", 0, 30),
		}
		moments[0].ApplySource(jude)
		moments[1].ApplySource(jude)
		moments[2].Artist = "Queen"

		for _, m := range moments {
			if err := repo.Create(m); err != nil {
				t.Fatalf("failed to create moment: %v", err)
			}
		}

		tc := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{"all", map[string]any{}, 3},
			{"nil criteria", nil, 3},
			{"service", map[string]any{"service": "spotify"}, 1},
			{"canonical", map[string]any{"canonical_track_id": jude.CanonicalTrackID}, 2},
			{"track source", map[string]any{"track_source_id": jude.ID()}, 2},
			{"artist ignores case", map[string]any{"artist": "queen"}, 1},
			{"missing canonical", map[string]any{"missing_canonical": true}, 1},
			{"no match", map[string]any{"service": "apple-music"}, 0},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list moments: %v", err)
				}
				if len(got) != tt.want {
					t.Errorf("expected %d moments, got %d", tt.want, len(got))
				}
			})
		}

		all, _ := repo.List(nil)
		for i := 1; i < len(all); i++ {
			if all[i-1].Sequence() >= all[i].Sequence() {
				t.Error("expected moments ordered by sequence")
			}
		}
	})

	t.Run("SetCanonicalIDForSource", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sources := NewTrackSourceRepository(db)
		ts := createSource(t, sources, "https://youtu.be/abc", "Artist", "Title")

		repo := NewMomentRepository(db)
		plain := models.NewMoment(0, models.ServiceYouTube, ts.SourceURL, 0, 10)
		plain.ApplySource(ts)
		stamped := models.NewMoment(0, models.ServiceYouTube, ts.SourceURL, 0, 10)
		stamped.ApplySource(ts)
		stamped.CanonicalTrackID = "can_existing"

		for _, m := range []*models.Moment{plain, stamped} {
			if err := repo.Create(m); err != nil {
				t.Fatalf("failed to create moment: %v", err)
			}
		}

		n, err := repo.SetCanonicalIDForSource(ts.ID(), "can_new")
		if err != nil {
			t.Fatalf("SetCanonicalIDForSource failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 moment changed, got %d", n)
		}

		got, _ := repo.Get(stamped.ID())
		if got.CanonicalTrackID != "can_existing" {
			t.Errorf("existing canonical id overwritten: %s", got.CanonicalTrackID)
		}
		got, _ = repo.Get(plain.ID())
		if got.CanonicalTrackID != "can_new" {
			t.Errorf("expected can_new, got %s", got.CanonicalTrackID)
		}
	})

	t.Run("SetTrackDuration", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sources := NewTrackSourceRepository(db)
		ts := createSource(t, sources, "https://youtu.be/abc", "Artist", "Title")

		repo := NewMomentRepository(db)
		m := models.NewMoment(0, models.ServiceYouTube, ts.SourceURL, 0, 10)
		m.ApplySource(ts)
		if err := repo.Create(m); err != nil {
			t.Fatalf("failed to create moment: %v", err)
		}

		if n, err := repo.SetTrackDuration(ts.ID(), 245); err != nil || n != 1 {
			t.Fatalf("SetTrackDuration = %d, %v", n, err)
		}

		got, _ := repo.Get(m.ID())
		if got.TrackDurationSec != 245 {
			t.Errorf("expected duration 245, got %d", got.TrackDurationSec)
		}
	})
}

func TestTrackSourceRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		ts := models.NewTrackSource(0, models.ServiceSpotify, "https://open.spotify.com/track/123")
		ts.Title, ts.Artist, ts.Artwork, ts.DurationSec = "Song", "Band", "https://i.scdn.co/image/1", 201

		if err := repo.Create(ts); err != nil {
			t.Fatalf("failed to create track source: %v", err)
		}

		retrieved, err := repo.Get(ts.ID())
		if err != nil {
			t.Fatalf("failed to get track source: %v", err)
		}
		if retrieved.Title != "Song" || retrieved.DurationSec != 201 || retrieved.Artwork != ts.Artwork {
			t.Errorf("unexpected track source: %+v", retrieved)
		}
		if retrieved.Service != models.ServiceSpotify {
			t.Errorf("expected spotify, got %s", retrieved.Service)
		}
	})

	t.Run("GetBySourceURL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		ts := createSource(t, repo, "https://youtu.be/abc", "Artist", "Title")

		retrieved, err := repo.GetBySourceURL("https://youtu.be/abc")
		if err != nil {
			t.Fatalf("failed to get track source by url: %v", err)
		}
		if retrieved.ID() != ts.ID() {
			t.Errorf("expected %s, got %s", ts.ID(), retrieved.ID())
		}
	})

	t.Run("Delete releases URL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		ts := createSource(t, repo, "https://youtu.be/abc", "Artist", "Title")

		if err := repo.Delete(ts.ID()); err != nil {
			t.Fatalf("failed to delete track source: %v", err)
		}
		if _, err := repo.GetBySourceURL("https://youtu.be/abc"); !errors.Is(err, shared.ErrTrackSourceNotFound) {
			t.Errorf("expected ErrTrackSourceNotFound, got %v", err)
		}

		again := createSource(t, repo, "https://youtu.be/abc", "Artist", "Title")
		if again.ID() == ts.ID() {
			t.Error("expected a new track source")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		a := createSource(t, repo, "https://youtu.be/a", "A", "One")
		createSource(t, repo, "https://youtu.be/b", "B", "Two")

		a.DurationSec = 180
		a.EnsureCanonicalID()
		if err := repo.Update(a); err != nil {
			t.Fatalf("failed to update track source: %v", err)
		}

		tc := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{"all", nil, 2},
			{"service", map[string]any{"service": "youtube"}, 2},
			{"canonical", map[string]any{"canonical_track_id": a.CanonicalTrackID}, 1},
			{"missing canonical", map[string]any{"missing_canonical": true}, 1},
			{"missing duration", map[string]any{"missing_duration": true}, 1},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list track sources: %v", err)
				}
				if len(got) != tt.want {
					t.Errorf("expected %d track sources, got %d", tt.want, len(got))
				}
			})
		}
	})
}

func TestTrackSourceRepository_FindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns existing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		ts := createSource(t, repo, "https://youtu.be/abc", "Artist", "Title")

		called := false
		lookup := func(context.Context, string) (*models.TrackMetadata, error) {
			called = true
			return nil, nil
		}

		got, created, err := repo.FindOrCreate(ctx, models.ServiceYouTube, ts.SourceURL, nil, lookup)
		if err != nil {
			t.Fatalf("FindOrCreate failed: %v", err)
		}
		if created || got.ID() != ts.ID() {
			t.Errorf("expected existing source %s, got %s (created=%v)", ts.ID(), got.ID(), created)
		}
		if called {
			t.Error("lookup should not run for an existing source")
		}
	})

	t.Run("lookup overrides provided metadata", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		provided := &models.TrackMetadata{Title: "typed title", Artist: "typed artist"}
		lookup := func(_ context.Context, url string) (*models.TrackMetadata, error) {
			return &models.TrackMetadata{Title: "Real Title", Artist: "Real Channel", DurationSec: 212}, nil
		}

		got, created, err := repo.FindOrCreate(ctx, models.ServiceYouTube, "https://youtu.be/new", provided, lookup)
		if err != nil {
			t.Fatalf("FindOrCreate failed: %v", err)
		}
		if !created {
			t.Error("expected a new source")
		}
		if got.Title != "Real Title" || got.Artist != "Real Channel" || got.DurationSec != 212 {
			t.Errorf("unexpected metadata: %+v", got)
		}
	})

	t.Run("failed lookup falls back", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		provided := &models.TrackMetadata{Title: "typed title"}
		lookup := func(context.Context, string) (*models.TrackMetadata, error) {
			return nil, shared.ErrServiceUnavailable
		}

		got, _, err := repo.FindOrCreate(ctx, models.ServiceYouTube, "https://youtu.be/new", provided, lookup)
		if err != nil {
			t.Fatalf("FindOrCreate failed: %v", err)
		}
		if got.Title != "typed title" {
			t.Errorf("expected provided title, got %s", got.Title)
		}
		if got.Artist != models.UnknownArtist {
			t.Errorf("expected %s, got %s", models.UnknownArtist, got.Artist)
		}
	})

	t.Run("no lookup", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		got, created, err := repo.FindOrCreate(ctx, models.ServiceUnknown, "https://example.com/song.mp3", nil, nil)
		if err != nil {
			t.Fatalf("FindOrCreate failed: %v", err)
		}
		if !created || got.Title != models.UnknownTitle {
			t.Errorf("unexpected result: %+v created=%v", got, created)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackSourceRepository(db)
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		lookup := func(context.Context, string) (*models.TrackMetadata, error) {
			cancel()
			return nil, context.Canceled
		}

		if _, _, err := repo.FindOrCreate(cctx, models.ServiceYouTube, "https://youtu.be/x", nil, lookup); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
