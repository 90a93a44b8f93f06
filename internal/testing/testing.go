// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/moments/internal/models"
	"github.com/desertthunder/moments/internal/shared"
)

// MockMetadataService is a test double for services.MetadataService.
//
// Lookups return the metadata registered for a URL, the registered error, or Default.
// It is safe for concurrent use.
type MockMetadataService struct {
	Default *models.TrackMetadata
	Err     error

	mu      sync.Mutex
	results map[string]*models.TrackMetadata
	related map[string][]models.RelatedItem
	errs    map[string]error
	calls   []string
}

func NewMockMetadataService() *MockMetadataService {
	return &MockMetadataService{
		results: make(map[string]*models.TrackMetadata),
		related: make(map[string][]models.RelatedItem),
		errs:    make(map[string]error),
	}
}

// Set registers the metadata returned for sourceURL.
func (m *MockMetadataService) Set(sourceURL string, meta *models.TrackMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[sourceURL] = meta
}

// SetRelated registers the suggestions returned for sourceURL.
func (m *MockMetadataService) SetRelated(sourceURL string, items []models.RelatedItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.related[sourceURL] = items
}

// Fail registers the error returned for sourceURL.
func (m *MockMetadataService) Fail(sourceURL string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[sourceURL] = err
}

// Calls returns the URLs looked up so far.
func (m *MockMetadataService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockMetadataService) Name() string { return "mock" }

func (m *MockMetadataService) Lookup(ctx context.Context, sourceURL string) (*models.TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sourceURL)

	if err, ok := m.errs[sourceURL]; ok {
		return nil, err
	}
	if meta, ok := m.results[sourceURL]; ok {
		return meta, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Default, nil
}

// Related returns the suggestions registered for sourceURL, truncated to limit when positive.
func (m *MockMetadataService) Related(ctx context.Context, sourceURL string, limit int) ([]models.RelatedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sourceURL)

	if err, ok := m.errs[sourceURL]; ok {
		return nil, err
	}
	items := append([]models.RelatedItem(nil), m.related[sourceURL]...)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// NewTestDB opens an in-memory database with all migrations applied and closes it when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
