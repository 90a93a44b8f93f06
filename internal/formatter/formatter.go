// package formatter exports moment cluster summaries to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/moments/internal/clustering"
	"github.com/desertthunder/moments/internal/shared"
	"github.com/desertthunder/moments/internal/tasks"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name. Empty selects [FormatText]; "txt" and "md" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: format %q (want text, csv, markdown or json)", shared.ErrInvalidFlag, s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func span(r clustering.Range) string {
	return shared.FormatSeconds(r.Start) + "-" + shared.FormatSeconds(r.End)
}

// ExportToCSV converts summaries to CSV with columns:
// Key, Artist, Title, Moments, Total Start, Total End, Core Start, Core End, Depth
func ExportToCSV(summaries []tasks.ClusterSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Key", "Artist", "Title", "Moments", "Total Start", "Total End", "Core Start", "Core End", "Depth"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range summaries {
		record := []string{
			s.Key,
			s.Artist,
			s.Title,
			strconv.Itoa(s.Count),
			seconds(s.Result.Total.Start),
			seconds(s.Result.Total.End),
			seconds(s.Result.Core.Start),
			seconds(s.Result.Core.End),
			strconv.Itoa(s.Result.Depth),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts summaries to a Markdown table
func ExportToMarkdown(summaries []tasks.ClusterSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Moment Clusters\n\n")
	buf.WriteString(fmt.Sprintf("**Clusters**: %d\n\n", len(summaries)))

	if len(summaries) == 0 {
		buf.WriteString("_No moments found._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Track | Moments | Total | Core | Depth |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for i, s := range summaries {
		label := strings.ReplaceAll(s.Label(), "|", `\|`)
		buf.WriteString(fmt.Sprintf("| %d | %s | %d | %s | %s | %d |\n",
			i+1, label, s.Count, span(s.Result.Total), span(s.Result.Core), s.Result.Depth))
	}

	return buf.Bytes(), nil
}

// ExportToText converts summaries to plain text format
func ExportToText(summaries []tasks.ClusterSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Clusters: %d\n\n", len(summaries)))

	for i, s := range summaries {
		buf.WriteString(fmt.Sprintf("%d. %s (%d moments)\n", i+1, s.Label(), s.Count))
		buf.WriteString(fmt.Sprintf("   total %s  core %s  depth %d\n", span(s.Result.Total), span(s.Result.Core), s.Result.Depth))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts summaries to indented JSON
func ExportToJSON(summaries []tasks.ClusterSummary) ([]byte, error) {
	if summaries == nil {
		summaries = []tasks.ClusterSummary{}
	}
	return shared.MarshalJSON(summaries, true)
}

// Render converts summaries to the given format.
func Render(summaries []tasks.ClusterSummary, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(summaries)
	case FormatMarkdown:
		return ExportToMarkdown(summaries)
	case FormatJSON:
		return ExportToJSON(summaries)
	case FormatText, "":
		return ExportToText(summaries)
	}
	return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
}

// Write renders summaries and writes them to w.
func Write(w io.Writer, summaries []tasks.ClusterSummary, format Format) error {
	data, err := Render(summaries, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExport renders summaries to a file and returns its path.
//
// Defaults to clusters{ext} in the working directory. Parent directories are created as needed.
func WriteExport(summaries []tasks.ClusterSummary, format Format, path string) (string, error) {
	if path == "" {
		path = "clusters" + format.Extension()
	}

	data, err := Render(summaries, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
