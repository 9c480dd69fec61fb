package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/couchcryptid/balloon-drift-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// SnapshotSource reads the raw rows of one hourly snapshot.
type SnapshotSource interface {
	FetchHour(ctx context.Context, hour int) ([]json.RawMessage, error)
}

// Fetcher ingests a window of hourly snapshots.
type Fetcher struct {
	source  SnapshotSource
	hours   int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFetcher creates a Fetcher reading hours 0..hours-1 from source.
func NewFetcher(source SnapshotSource, hours int, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		source:  source,
		hours:   hours,
		logger:  logger,
		metrics: metrics,
	}
}

type hourResult struct {
	rows []json.RawMessage
	ok   bool
}

// FetchWindow fetches every hour concurrently and normalizes the rows of the
// hours that succeeded. A failed hour is logged and contributes nothing; it
// never fails the window. Rows are merged in ascending hour order once all
// fetches have settled, so first-seen id order is deterministic.
func (f *Fetcher) FetchWindow(ctx context.Context, now time.Time) (*domain.Grouped, domain.IngestStats) {
	results := make([]hourResult, f.hours)

	var g errgroup.Group
	for hour := range f.hours {
		g.Go(func() error {
			rows, err := f.source.FetchHour(ctx, hour)
			if err != nil {
				f.logger.Warn("hour fetch failed", "hour", hour, "error", err)
				f.metrics.HourFetches.WithLabelValues("error").Inc()
				return nil
			}
			f.metrics.HourFetches.WithLabelValues("success").Inc()
			results[hour] = hourResult{rows: rows, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	grouped := domain.NewGrouped()
	var stats domain.IngestStats
	for hour, res := range results {
		if !res.ok {
			continue
		}
		stats.RawRows += len(res.rows)
		for i, raw := range res.rows {
			obs, ok := domain.NormalizeRow(domain.DecodeRow(raw), hour, i, now)
			if !ok {
				continue
			}
			grouped.Add(obs)
			stats.KeptRows++
		}
	}
	stats.ObjectCount = grouped.Len()

	f.metrics.RowsRaw.Add(float64(stats.RawRows))
	f.metrics.RowsKept.Add(float64(stats.KeptRows))
	return grouped, stats
}
