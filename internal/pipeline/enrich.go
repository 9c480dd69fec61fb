package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Enricher attaches wind and risk to a bounded subset of trajectories.
type Enricher struct {
	provider domain.WindProvider
	logger   *slog.Logger
}

// NewEnricher creates an Enricher. Pass a nil provider to disable wind lookups.
func NewEnricher(provider domain.WindProvider, logger *slog.Logger) *Enricher {
	return &Enricher{provider: provider, logger: logger}
}

// Enrich processes the first subsetSize trajectories in batches of batchSize.
// Lookups within a batch run concurrently and the batch is fully awaited
// before the next one starts. Every processed trajectory gets a result, even
// when its lookup failed.
func (e *Enricher) Enrich(ctx context.Context, trajs []domain.Trajectory, subsetSize, batchSize int) map[string]domain.WindResult {
	results := make(map[string]domain.WindResult)
	if e.provider == nil || subsetSize <= 0 {
		return results
	}
	batchSize = max(batchSize, 1)
	subset := trajs[:min(subsetSize, len(trajs))]

	var mu sync.Mutex
	for start := 0; start < len(subset); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		batch := subset[start:min(start+batchSize, len(subset))]

		var g errgroup.Group
		for _, traj := range batch {
			g.Go(func() error {
				res := domain.EnrichWithWind(ctx, traj, e.provider, e.logger)
				mu.Lock()
				results[traj.ID] = res
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}
	return results
}
