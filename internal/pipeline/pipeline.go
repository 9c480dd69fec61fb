package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/couchcryptid/balloon-drift-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SnapshotLoader writes a published snapshot to an external destination.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Options tune one pipeline instance.
type Options struct {
	RefreshInterval time.Duration
	SubsetSize      int
	BatchSize       int
}

// Pipeline runs ingestion cycles and publishes their results to State.
type Pipeline struct {
	fetcher  *Fetcher
	enricher *Enricher
	loader   SnapshotLoader
	state    *State
	opts     Options
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
	trigger  chan struct{}
}

// New creates a Pipeline. loader may be nil to disable the snapshot sink and
// clock may be nil to use the real clock.
func New(f *Fetcher, e *Enricher, loader SnapshotLoader, opts Options, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher:  f,
		enricher: e,
		loader:   loader,
		state:    &State{},
		opts:     opts,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		trigger:  make(chan struct{}, 1),
	}
}

// CheckReadiness returns nil once the first cycle has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no snapshot has been published yet")
	}
	return nil
}

// Current returns the latest published snapshot, or nil before the first cycle.
func (p *Pipeline) Current() *domain.Snapshot {
	return p.state.Current()
}

// Trigger requests an on-demand cycle. Requests made while one is already
// pending are coalesced; Trigger reports whether the request was queued.
func (p *Pipeline) Trigger() bool {
	select {
	case p.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run executes one cycle immediately and then one per refresh interval or
// trigger until the context is cancelled. Cycles never overlap.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"refresh_interval", p.opts.RefreshInterval,
		"hours", p.fetcher.hours,
		"wind_subset", p.opts.SubsetSize,
		"wind_batch", p.opts.BatchSize,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.runCycle(ctx, "scheduled")

	ticker := p.clock.NewTicker(p.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.runCycle(ctx, "scheduled")
		case <-p.trigger:
			p.runCycle(ctx, "manual")
		}
	}
}

func (p *Pipeline) runCycle(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	start := p.clock.Now()
	snap := p.RunCycle(ctx)
	p.metrics.Cycles.WithLabelValues(trigger).Inc()
	p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())
	p.logger.Info("cycle complete",
		"cycle_id", snap.CycleID,
		"trigger", trigger,
		"raw_rows", snap.Stats.RawRows,
		"kept_rows", snap.Stats.KeptRows,
		"objects", snap.Stats.ObjectCount,
	)
}

// RunCycle fetches the snapshot window, builds and publishes trajectories,
// enriches the leading subset with wind and publishes again with the merged
// results. The final snapshot is handed to the loader, if any. Upstream
// failures degrade the result but never abort the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) domain.Snapshot {
	now := p.clock.Now()
	cycleID := uuid.NewString()

	grouped, stats := p.fetcher.FetchWindow(ctx, now)
	trajs := domain.AssembleTrajectories(grouped, now)

	p.state.Publish(domain.Snapshot{
		CycleID:      cycleID,
		BuiltAt:      now.UTC(),
		Stats:        stats,
		Trajectories: trajs,
	})
	p.ready.Store(true)
	p.metrics.Objects.Set(float64(stats.ObjectCount))

	results := p.enricher.Enrich(ctx, trajs, p.opts.SubsetSize, p.opts.BatchSize)
	snap := p.state.ApplyWind(results)

	if p.loader != nil {
		if err := p.loader.LoadSnapshot(ctx, *snap); err != nil {
			p.logger.Error("snapshot sink failed", "cycle_id", cycleID, "error", err)
			p.metrics.SinkErrors.Inc()
		}
	}
	return *snap
}
