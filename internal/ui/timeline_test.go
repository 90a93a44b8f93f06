package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/desertthunder/moments/internal/clustering"
	"github.com/desertthunder/moments/internal/tasks"
)

func TestTimeline(t *testing.T) {
	tc := []struct {
		name    string
		width   int
		result  clustering.Result
		axisEnd float64
		want    string
	}{
		{
			name:    "core inside total on full axis",
			width:   10,
			result:  clustering.Result{Total: clustering.Range{Start: 0, End: 100}, Core: clustering.Range{Start: 40, End: 50}, Depth: 2},
			axisEnd: 100,
			want:    "────█─────",
		},
		{
			name:    "ranges on longer track",
			width:   20,
			result:  clustering.Result{Total: clustering.Range{Start: 50, End: 100}, Core: clustering.Range{Start: 60, End: 80}, Depth: 2},
			axisEnd: 200,
			want:    "·····─██──··········",
		},
		{
			name:    "axis defaults to total end",
			width:   4,
			result:  clustering.Result{Total: clustering.Range{Start: 0, End: 40}, Core: clustering.Range{Start: 0, End: 40}, Depth: 1},
			axisEnd: 0,
			want:    "████",
		},
		{
			name:  "empty result",
			width: 5,
			want:  "·····",
		},
		{
			name:    "zero width range still visible",
			width:   10,
			result:  clustering.Result{Total: clustering.Range{Start: 50, End: 50}, Core: clustering.Range{Start: 50, End: 50}},
			axisEnd: 100,
			want:    "·····█····",
		},
		{
			name:    "range past axis is clamped",
			width:   5,
			result:  clustering.Result{Total: clustering.Range{Start: 90, End: 150}, Core: clustering.Range{Start: 90, End: 150}},
			axisEnd: 100,
			want:    "····█",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Timeline(tt.width, tt.result, tt.axisEnd)
			if got != tt.want {
				t.Errorf("Timeline() = %q, want %q", got, tt.want)
			}
			if n := utf8.RuneCountInString(got); n != tt.width {
				t.Errorf("expected %d cells, got %d", tt.width, n)
			}
		})
	}

	if Timeline(0, clustering.Result{}, 10) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderCluster(t *testing.T) {
	s := tasks.ClusterSummary{
		Key:    "can_x",
		Artist: "The Beatles",
		Title:  "Hey Jude",
		Count:  3,
		Result: clustering.Result{
			Total: clustering.Range{Start: 180, End: 260},
			Core:  clustering.Range{Start: 200, End: 215},
			Depth: 3,
		},
	}

	out := RenderCluster(s, 30, 431)
	for _, want := range []string{"The Beatles - Hey Jude", "(3 moments)", "total 3:00-4:20", "core 3:20-3:35", "3 overlapping"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(strings.Split(out, "\n")) != 3 {
		t.Errorf("expected 3 lines, got:\n%s", out)
	}
}

func TestPalette(t *testing.T) {
	p := Styles()
	for _, s := range []string{p.Title("t"), p.OK("ok"), p.Err("e"), p.Warn("w"), p.Help("h")} {
		if s == "" {
			t.Error("styled output should not be empty")
		}
	}
	if !strings.Contains(p.As("fg", "#FFFFFF"), "fg") || !strings.Contains(p.On("bg", "#000000"), "bg") {
		t.Error("painter should keep the text")
	}
}
