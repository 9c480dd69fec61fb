package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxBodyBytes caps a single hourly document.
const maxBodyBytes = 32 << 20

// HourLabel returns the two-digit resource name for an hour index.
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d", hour)
}

// HTTPSource fetches hourly snapshot documents from <baseURL>/<HH>.json.
// It implements pipeline.SnapshotSource.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSource creates a snapshot source. The timeout bounds each hourly fetch.
func NewHTTPSource(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchHour retrieves the rows of one hourly document. Any non-2xx status,
// transport error, or body that is not a JSON array is an error.
func (s *HTTPSource) FetchHour(ctx context.Context, hour int) ([]json.RawMessage, error) {
	u := fmt.Sprintf("%s/%s.json", s.baseURL, HourLabel(hour))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s request: %w", HourLabel(hour), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("snapshot %s: status %d", HourLabel(hour), resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s read body: %w", HourLabel(hour), err)
	}

	rows, err := decodeRows(hour, body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("snapshot fetched", "hour", hour, "rows", len(rows))
	return rows, nil
}

// DirSource reads hourly documents named <HH>.json from a local directory.
// It implements pipeline.SnapshotSource and backs offline validation.
type DirSource struct {
	dir string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) FetchHour(ctx context.Context, hour int) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(filepath.Join(s.dir, HourLabel(hour)+".json"))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", HourLabel(hour), err)
	}
	return decodeRows(hour, body)
}

func decodeRows(hour int, body []byte) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("snapshot %s decode: %w", HourLabel(hour), err)
	}
	if rows == nil {
		return nil, fmt.Errorf("snapshot %s decode: body is not an array", HourLabel(hour))
	}
	return rows, nil
}
