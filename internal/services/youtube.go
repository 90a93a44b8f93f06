// YouTube Data API v3 implementation of [MetadataService]
//
// Response types based on https://developers.google.com/youtube/v3/docs/videos
// and https://developers.google.com/youtube/v3/docs/search
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

const (
	defaultYTBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultYTRelated = 8
)

// YouTubeThumbnail is a single thumbnail rendition.
type YouTubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// YouTubeThumbnails holds the renditions YouTube may return for a video.
type YouTubeThumbnails struct {
	Default *YouTubeThumbnail `json:"default"`
	Medium  *YouTubeThumbnail `json:"medium"`
	High    *YouTubeThumbnail `json:"high"`
	MaxRes  *YouTubeThumbnail `json:"maxres"`
}

// Best returns the largest available thumbnail URL.
func (t YouTubeThumbnails) Best() string {
	for _, th := range []*YouTubeThumbnail{t.MaxRes, t.High, t.Medium, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return ""
}

// YouTubeVideo is an item of a videos.list response.
type YouTubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string            `json:"title"`
		ChannelTitle string            `json:"channelTitle"`
		Description  string            `json:"description"`
		Thumbnails   YouTubeThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"` // ISO 8601, e.g. PT4M13S
	} `json:"contentDetails"`
}

type youTubeVideoList struct {
	Items []YouTubeVideo `json:"items"`
}

// YouTubeSearchResult is an item of a search.list response.
type YouTubeSearchResult struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string            `json:"title"`
		ChannelTitle string            `json:"channelTitle"`
		Thumbnails   YouTubeThumbnails `json:"thumbnails"`
	} `json:"snippet"`
}

type youTubeSearchList struct {
	Items []YouTubeSearchResult `json:"items"`
}

// YouTubeService implements [MetadataService] using the YouTube Data API.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeService creates a YouTube service from the configured API key.
// A nil client uses [http.DefaultClient] and an empty base URL uses the public API.
func NewYouTubeService(cfg shared.YouTubeConfig, client *http.Client) (*YouTubeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: youtube api_key", shared.ErrMissingCredentials)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &YouTubeService{apiKey: cfg.APIKey, baseURL: baseURL, httpClient: client}, nil
}

func (s *YouTubeService) Name() string {
	return "YouTube"
}

// get decodes the JSON response of a Data API endpoint into dst.
func (s *YouTubeService) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	params.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: youtube status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Video fetches snippet and content details for a video id.
func (s *YouTubeService) Video(ctx context.Context, videoID string) (*YouTubeVideo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", videoID)

	var list youTubeVideoList
	if err := s.get(ctx, "videos", params, &list); err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("%w: youtube video %s", shared.ErrTrackNotFound, videoID)
	}

	return &list.Items[0], nil
}

// Search returns up to maxResults videos matching query.
func (s *YouTubeService) Search(ctx context.Context, query string, maxResults int) ([]YouTubeSearchResult, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))

	var list youTubeSearchList
	if err := s.get(ctx, "search", params, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// Related searches for videos like the one at sourceURL.
//
// The API no longer offers related-video queries, so the search uses the channel and title of the video.
func (s *YouTubeService) Related(ctx context.Context, sourceURL string, limit int) ([]models.RelatedItem, error) {
	id, err := ExtractYouTubeID(sourceURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultYTRelated
	}

	video, err := s.Video(ctx, id)
	if err != nil {
		return nil, err
	}

	results, err := s.Search(ctx, video.Snippet.ChannelTitle+" "+video.Snippet.Title, limit+1)
	if err != nil {
		return nil, err
	}

	items := make([]models.RelatedItem, 0, len(results))
	for _, r := range results {
		if r.ID.VideoID == "" || r.ID.VideoID == id {
			continue
		}
		items = append(items, models.RelatedItem{
			ID:        r.ID.VideoID,
			Service:   models.ServiceYouTube,
			Title:     r.Snippet.Title,
			Artist:    r.Snippet.ChannelTitle,
			Artwork:   r.Snippet.Thumbnails.Best(),
			SourceURL: "https://www.youtube.com/watch?v=" + r.ID.VideoID,
		})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// Lookup resolves a YouTube URL into track metadata. The channel title is used as the artist.
func (s *YouTubeService) Lookup(ctx context.Context, sourceURL string) (*models.TrackMetadata, error) {
	id, err := ExtractYouTubeID(sourceURL)
	if err != nil {
		return nil, err
	}

	video, err := s.Video(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.TrackMetadata{
		Title:       video.Snippet.Title,
		Artist:      video.Snippet.ChannelTitle,
		Artwork:     video.Snippet.Thumbnails.Best(),
		DurationSec: ParseISODuration(video.ContentDetails.Duration),
	}, nil
}
