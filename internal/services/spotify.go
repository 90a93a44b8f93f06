// Spotify Web API implementation of [MetadataService]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/get-track
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
	spotifyRelated  = 10
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// ArtistNames joins the track's artist names with ", ".
func (t *SpotifyTrack) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// SpotifyService implements [MetadataService] for Spotify.
// App tokens come from the client-credentials flow; no user authorization is involved.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify service from client credentials.
//
// client is used for both token and API requests; nil uses [http.DefaultClient].
func NewSpotifyService(cfg shared.SpotifyConfig, client *http.Client) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
	return &SpotifyService{baseURL: baseURL, httpClient: cc.Client(ctx)}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// get decodes the JSON response of an API path into dst. A 404 wraps notFound.
func (s *SpotifyService) get(ctx context.Context, path string, dst any, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return notFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	notFound := fmt.Errorf("%w: spotify track %s", shared.ErrTrackNotFound, trackID)
	if err := s.get(ctx, "/tracks/"+url.PathEscape(trackID), &track, notFound); err != nil {
		return nil, err
	}
	return &track, nil
}

// ArtistTopTracks retrieves an artist's most popular tracks in the US market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID string) ([]SpotifyTrack, error) {
	var body struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	notFound := fmt.Errorf("%w: spotify artist %s", shared.ErrTrackNotFound, artistID)
	if err := s.get(ctx, "/artists/"+url.PathEscape(artistID)+"/top-tracks?market=US", &body, notFound); err != nil {
		return nil, err
	}
	return body.Tracks, nil
}

// Related returns the top tracks of the first artist of the track at sourceURL, excluding that track.
//
// Spotify's recommendations endpoint is closed to new apps, so top tracks are the only seed-based source.
func (s *SpotifyService) Related(ctx context.Context, sourceURL string, limit int) ([]models.RelatedItem, error) {
	id, err := ExtractSpotifyID(sourceURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = spotifyRelated
	}

	track, err := s.Track(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(track.Artists) == 0 {
		return []models.RelatedItem{}, nil
	}

	tracks, err := s.ArtistTopTracks(ctx, track.Artists[0].ID)
	if err != nil {
		return nil, err
	}

	items := make([]models.RelatedItem, 0, min(len(tracks), limit))
	for _, t := range tracks {
		if t.ID == "" || t.ID == id {
			continue
		}
		item := models.RelatedItem{
			ID:        t.ID,
			Service:   models.ServiceSpotify,
			Title:     t.Name,
			Artist:    t.ArtistNames(),
			SourceURL: "https://open.spotify.com/track/" + t.ID,
		}
		if len(t.Album.Images) > 0 {
			item.Artwork = t.Album.Images[0].URL
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// Lookup resolves a Spotify track URL into track metadata.
func (s *SpotifyService) Lookup(ctx context.Context, sourceURL string) (*models.TrackMetadata, error) {
	id, err := ExtractSpotifyID(sourceURL)
	if err != nil {
		return nil, err
	}

	track, err := s.Track(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := &models.TrackMetadata{
		Title:       track.Name,
		Artist:      track.ArtistNames(),
		DurationSec: track.DurationMS / 1000,
	}
	if len(track.Album.Images) > 0 {
		meta.Artwork = track.Album.Images[0].URL
	}
	return meta, nil
}
