package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
	th "github.com/desertthunder/moments/internal/testing"
)

const videoResponse = `{
	"items": [{
		"id": "dQw4w9WgXcQ",
		"snippet": {
			"title": "Never Gonna Give You Up",
			"channelTitle": "Rick Astley",
			"thumbnails": {
				"default": {"url": "https://i.ytimg.com/default.jpg"},
				"medium": {"url": "https://i.ytimg.com/medium.jpg"},
				"high": {"url": "https://i.ytimg.com/high.jpg"}
			}
		},
		"contentDetails": {"duration": "PT3M33S"}
	}]
}`

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("requires api key", func(t *testing.T) {
			if _, err := NewYouTubeService(shared.YouTubeConfig{}, nil); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("uses default URL", func(t *testing.T) {
			svc, err := NewYouTubeService(shared.YouTubeConfig{APIKey: "key"}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
			if svc.Name() != "YouTube" {
				t.Errorf("expected name to be 'YouTube', got %s", svc.Name())
			}
		})
	})

	t.Run("Lookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/videos" {
				t.Errorf("expected path /videos, got %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("id") != "dQw4w9WgXcQ" || q.Get("key") != "test-key" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			if q.Get("part") != "snippet,contentDetails" {
				t.Errorf("unexpected part: %s", q.Get("part"))
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(videoResponse))
		}))
		defer server.Close()

		svc, _ := NewYouTubeService(shared.YouTubeConfig{APIKey: "test-key", BaseURL: server.URL + "/"}, server.Client())

		meta, err := svc.Lookup(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if meta.Title != "Never Gonna Give You Up" {
			t.Errorf("unexpected title %s", meta.Title)
		}
		if meta.Artist != "Rick Astley" {
			t.Errorf("expected channel title as artist, got %s", meta.Artist)
		}
		if meta.DurationSec != 213 {
			t.Errorf("expected 213 seconds, got %d", meta.DurationSec)
		}
		if meta.Artwork != "https://i.ytimg.com/high.jpg" {
			t.Errorf("expected high thumbnail, got %s", meta.Artwork)
		}
	})

	t.Run("Lookup errors", func(t *testing.T) {
		tc := []struct {
			name    string
			status  int
			body    string
			url     string
			wantErr error
		}{
			{"no items", http.StatusOK, `{"items": []}`, "https://youtu.be/missing", shared.ErrTrackNotFound},
			{"quota exceeded", http.StatusForbidden, `{}`, "https://youtu.be/abc", shared.ErrAPIRequest},
			{"not a video url", http.StatusOK, `{}`, "https://www.youtube.com/feed", shared.ErrInvalidInput},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				svc, _ := NewYouTubeService(shared.YouTubeConfig{APIKey: "k", BaseURL: server.URL}, server.Client())
				if _, err := svc.Lookup(context.Background(), tt.url); !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})
}

const searchResponse = `{
	"items": [
		{"id": {"videoId": "dQw4w9WgXcQ"}, "snippet": {"title": "Never Gonna Give You Up", "channelTitle": "Rick Astley"}},
		{"id": {"videoId": "yPYZpwSpKmA"}, "snippet": {"title": "Together Forever", "channelTitle": "Rick Astley", "thumbnails": {"high": {"url": "https://i.ytimg.com/tf.jpg"}}}},
		{"id": {}, "snippet": {"title": "A channel result"}},
		{"id": {"videoId": "AC3Ejf7vPEY"}, "snippet": {"title": "Cry for Help", "channelTitle": "Rick Astley"}}
	]
}`

func TestYouTubeRelated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/videos":
			w.Write([]byte(videoResponse))
		case "/search":
			if q.Get("q") != "Rick Astley Never Gonna Give You Up" {
				t.Errorf("expected channel and title query, got %q", q.Get("q"))
			}
			if q.Get("type") != "video" || q.Get("part") != "snippet" || q.Get("key") != "k" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(searchResponse))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc, _ := NewYouTubeService(shared.YouTubeConfig{APIKey: "k", BaseURL: server.URL}, server.Client())

	t.Run("skips the seed video and non-video results", func(t *testing.T) {
		items, err := svc.Related(context.Background(), "https://youtu.be/dQw4w9WgXcQ", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].ID != "yPYZpwSpKmA" || items[0].Service != models.ServiceYouTube || items[0].Artist != "Rick Astley" {
			t.Errorf("unexpected first item %+v", items[0])
		}
		if items[0].SourceURL != "https://www.youtube.com/watch?v=yPYZpwSpKmA" || items[0].Artwork != "https://i.ytimg.com/tf.jpg" {
			t.Errorf("unexpected url or artwork %+v", items[0])
		}
	})

	t.Run("limit", func(t *testing.T) {
		items, err := svc.Related(context.Background(), "https://youtu.be/dQw4w9WgXcQ", 1)
		if err != nil || len(items) != 1 || items[0].ID != "yPYZpwSpKmA" {
			t.Errorf("expected only the first suggestion, got %+v, %v", items, err)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := svc.Related(context.Background(), "https://www.youtube.com/feed", 0); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestYouTubeThumbnails(t *testing.T) {
	thumbs := YouTubeThumbnails{
		Default: &YouTubeThumbnail{URL: "d"},
		Medium:  &YouTubeThumbnail{URL: "m"},
		High:    &YouTubeThumbnail{URL: "h"},
		MaxRes:  &YouTubeThumbnail{URL: "x"},
	}
	if thumbs.Best() != "x" {
		t.Errorf("expected maxres, got %s", thumbs.Best())
	}

	thumbs.MaxRes, thumbs.High = nil, nil
	if thumbs.Best() != "m" {
		t.Errorf("expected medium, got %s", thumbs.Best())
	}

	if (YouTubeThumbnails{}).Best() != "" {
		t.Error("expected empty string without thumbnails")
	}
}

func TestYouTubeServiceTransport(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("connection refused"))}
		svc, _ := NewYouTubeService(shared.YouTubeConfig{APIKey: "k"}, client)

		if _, err := svc.Lookup(context.Background(), "https://youtu.be/abc"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("unreadable body", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &th.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: th.NewMockRoundTripper(resp, nil)}
		svc, _ := NewYouTubeService(shared.YouTubeConfig{APIKey: "k"}, client)

		_, err := svc.Lookup(context.Background(), "https://youtu.be/abc")
		if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}
