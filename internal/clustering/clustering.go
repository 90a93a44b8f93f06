// package clustering summarizes groups of overlapping moments into a covering range and a "heat" range.
package clustering

import (
	"math"
	"slices"
)

// Interval is a clip on the time axis, in seconds.
//
// StartSec <= EndSec is assumed but not enforced.
type Interval struct {
	StartSec float64 `json:"startSec"`
	EndSec   float64 `json:"endSec"`
}

// Range is a closed interval on the time axis, in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the width of the range.
func (r Range) Duration() float64 {
	return r.End - r.Start
}

// Contains reports whether o lies entirely within r.
func (r Range) Contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Result holds the ranges computed for a cluster.
type Result struct {
	Total Range `json:"totalRange"` // Union bounding box of all intervals
	Core  Range `json:"coreRange"`  // Densest sub-range, or Total when nothing overlaps
	Depth int   `json:"depth"`      // Maximum overlap depth found
}

type eventKind int

const (
	endEvent eventKind = iota
	startEvent
)

type event struct {
	time float64
	kind eventKind
}

// compareEvents orders events by time, placing end events before start events at the same instant.
//
// Clips that merely touch (A.end == B.start) therefore never register as overlapping.
func compareEvents(a, b event) int {
	switch {
	case a.time < b.time:
		return -1
	case a.time > b.time:
		return 1
	}
	switch {
	case a.kind == endEvent && b.kind == startEvent:
		return -1
	case a.kind == startEvent && b.kind == endEvent:
		return 1
	}
	return 0
}

// CalculateRanges computes the total range and the max-overlap core range of intervals.
//
// The core range is found with a sweep line over start/end events. Among segments of equal depth the longest wins.
// When no two intervals genuinely overlap the core range is the total range.
// An empty input yields zero ranges. The input slice is not modified.
func CalculateRanges(intervals []Interval) Result {
	if len(intervals) == 0 {
		return Result{}
	}

	minStart, maxEnd := math.Inf(1), math.Inf(-1)
	for _, iv := range intervals {
		if iv.StartSec < minStart {
			minStart = iv.StartSec
		}
		if iv.EndSec > maxEnd {
			maxEnd = iv.EndSec
		}
	}
	total := Range{Start: minStart, End: maxEnd}

	events := make([]event, 0, len(intervals)*2)
	for _, iv := range intervals {
		events = append(events, event{time: iv.StartSec, kind: startEvent}, event{time: iv.EndSec, kind: endEvent})
	}
	slices.SortFunc(events, compareEvents)

	var (
		current, maxDepth int
		best              = Range{Start: minStart, End: maxEnd}
		bestDuration      float64
	)

	for i := 0; i < len(events)-1; i++ {
		ev := events[i]
		if ev.kind == startEvent {
			current++
		} else {
			current--
		}

		next := events[i+1].time
		duration := next - ev.time
		if !(duration > 0) {
			continue
		}

		if current > maxDepth || (current == maxDepth && duration > bestDuration) {
			maxDepth = current
			best = Range{Start: ev.time, End: next}
			bestDuration = duration
		}
	}

	if maxDepth <= 1 {
		return Result{Total: total, Core: total, Depth: maxDepth}
	}

	return Result{Total: total, Core: best, Depth: maxDepth}
}

// Of computes ranges for any slice of values that can be projected onto an [Interval].
func Of[T any](items []T, fn func(T) Interval) Result {
	intervals := make([]Interval, len(items))
	for i, it := range items {
		intervals[i] = fn(it)
	}
	return CalculateRanges(intervals)
}
