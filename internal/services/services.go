package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

// MetadataService looks up track metadata for source URLs on one music service.
type MetadataService interface {
	// Name returns the name of the service (e.g., "YouTube", "Spotify")
	Name() string

	// Lookup resolves a source URL into track metadata.
	Lookup(ctx context.Context, sourceURL string) (*models.TrackMetadata, error)
}

// RelatedService is implemented by services that can suggest tracks related to a source URL.
type RelatedService interface {
	// Related returns at most limit suggestions; limit <= 0 uses the service default.
	Related(ctx context.Context, sourceURL string, limit int) ([]models.RelatedItem, error)
}

var (
	_ MetadataService = (*YouTubeService)(nil)
	_ MetadataService = (*SpotifyService)(nil)
	_ RelatedService  = (*YouTubeService)(nil)
	_ RelatedService  = (*SpotifyService)(nil)
)

var isoDuration = regexp.MustCompile(`PT(\d+H)?(\d+M)?(\d+S)?`)

// ParseISODuration converts an ISO 8601 duration such as "PT1H2M3S" into seconds.
// Strings without a time part yield 0.
func ParseISODuration(d string) int {
	m := isoDuration.FindStringSubmatch(d)
	if m == nil {
		return 0
	}

	unit := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s[:len(s)-1])
		return n
	}
	return unit(m[1])*3600 + unit(m[2])*60 + unit(m[3])
}

// ExtractYouTubeID returns the video id of a YouTube watch, share, embed or shorts URL.
func ExtractYouTubeID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid YouTube URL %q", shared.ErrInvalidInput, raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}

	if id == "" {
		return "", fmt.Errorf("%w: no video id in %q", shared.ErrInvalidInput, raw)
	}
	return id, nil
}

// ExtractSpotifyID returns the track id of an open.spotify.com track URL or a spotify:track: URI.
func ExtractSpotifyID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "spotify:track:"); ok && rest != "" {
		return rest, nil
	}

	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Hostname()), "spotify.com") {
		return "", fmt.Errorf("%w: invalid Spotify URL %q", shared.ErrInvalidInput, raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "track" && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: no track id in %q", shared.ErrInvalidInput, raw)
}

// DetectService infers the music service a source URL belongs to.
func DetectService(raw string) models.MusicService {
	if strings.HasPrefix(raw, "spotify:") {
		return models.ServiceSpotify
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return models.ServiceUnknown
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be", strings.HasSuffix(host, "youtube.com"):
		return models.ServiceYouTube
	case strings.HasSuffix(host, "spotify.com"):
		return models.ServiceSpotify
	case strings.HasSuffix(host, "music.apple.com"):
		return models.ServiceAppleMusic
	}
	return models.ServiceUnknown
}

// Registry dispatches lookups to the configured service for each URL.
type Registry struct {
	services map[models.MusicService]MetadataService
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{services: make(map[models.MusicService]MetadataService)}
}

// Register adds or replaces the service used for s.
func (r *Registry) Register(s models.MusicService, svc MetadataService) {
	r.services[s] = svc
}

// Has reports whether a service is registered for s.
func (r *Registry) Has(s models.MusicService) bool {
	_, ok := r.services[s]
	return ok
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	return len(r.services)
}

// Lookup resolves sourceURL with the service detected from it.
func (r *Registry) Lookup(ctx context.Context, sourceURL string) (*models.TrackMetadata, error) {
	kind := DetectService(sourceURL)
	svc, ok := r.services[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedService, kind)
	}
	return svc.Lookup(ctx, sourceURL)
}

// Related asks the service detected from sourceURL for related tracks.
func (r *Registry) Related(ctx context.Context, sourceURL string, limit int) ([]models.RelatedItem, error) {
	kind := DetectService(sourceURL)
	svc, ok := r.services[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedService, kind)
	}
	rs, ok := svc.(RelatedService)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no related tracks", shared.ErrUnsupportedService, svc.Name())
	}
	return rs.Related(ctx, sourceURL, limit)
}
