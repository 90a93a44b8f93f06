package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/moments/internal/clustering"
	"github.com/desertthunder/moments/internal/shared"
	"github.com/desertthunder/moments/internal/tasks"
)

// Timeline cells.
const (
	CellAxis  = '·'
	CellTotal = '─'
	CellCore  = '█'
)

// Timeline draws r on a bar of width cells spanning [0, axisEnd] seconds.
//
// Cells touched by the core range use [CellCore], the rest of the total range [CellTotal]
// and the remaining axis [CellAxis]. A non-positive axisEnd falls back to the end of the total range.
// Every non-empty range occupies at least one cell.
func Timeline(width int, r clustering.Result, axisEnd float64) string {
	if width <= 0 {
		return ""
	}
	if !(axisEnd > 0) {
		axisEnd = r.Total.End
	}

	cells := []rune(strings.Repeat(string(CellAxis), width))
	if !(axisEnd > 0) {
		return string(cells)
	}

	paint := func(rg clustering.Range, c rune) {
		from, to := cellSpan(width, rg, axisEnd)
		for i := from; i < to; i++ {
			cells[i] = c
		}
	}
	paint(r.Total, CellTotal)
	paint(r.Core, CellCore)

	return string(cells)
}

func cellSpan(width int, rg clustering.Range, axisEnd float64) (int, int) {
	if math.IsNaN(rg.Start) || math.IsNaN(rg.End) || rg.End < rg.Start {
		return 0, 0
	}

	scale := float64(width) / axisEnd
	from := int(math.Floor(rg.Start * scale))
	to := int(math.Ceil(rg.End * scale))

	from = min(max(from, 0), width-1)
	to = min(max(to, from+1), width)
	return from, to
}

// RenderCluster formats one cluster summary as a label line followed by a styled timeline and its timestamps.
func RenderCluster(s tasks.ClusterSummary, width int, trackDurationSec int) string {
	bar := Timeline(width, s.Result, float64(trackDurationSec))
	bar = strings.ReplaceAll(bar, string(CellCore), styles.OK(string(CellCore)))

	var b strings.Builder
	b.WriteString(styles.Title(s.Label()))
	b.WriteString(styles.Help(fmt.Sprintf(" (%d moments)", s.Count)))
	b.WriteString("\n")
	b.WriteString(bar)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("total %s-%s  core %s-%s",
		shared.FormatSeconds(s.Result.Total.Start), shared.FormatSeconds(s.Result.Total.End),
		shared.FormatSeconds(s.Result.Core.Start), shared.FormatSeconds(s.Result.Core.End)))
	if s.Result.Depth > 1 {
		b.WriteString(styles.Help(fmt.Sprintf("  %d overlapping", s.Result.Depth)))
	}
	return b.String()
}
