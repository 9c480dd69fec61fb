package domain

import (
	"context"
	"log/slog"
)

// WindProvider looks up upper-air wind at a coordinate.
type WindProvider interface {
	Wind(ctx context.Context, lat, lon float64) (WindSample, error)
}

// EnrichWithWind looks up wind at the trajectory's latest point and scores
// its risk. A nil provider, an empty trajectory or a failed lookup yields an
// empty wind sample; the failure is logged and never returned (graceful
// degradation). Risk is still scored from drift alone in that case.
func EnrichWithWind(ctx context.Context, traj Trajectory, provider WindProvider, logger *slog.Logger) WindResult {
	latest, ok := traj.Latest()
	if !ok || provider == nil {
		return WindResult{}
	}

	sample, err := provider.Wind(ctx, latest.Lat, latest.Lon)
	if err != nil {
		logger.Warn("wind lookup failed",
			"object_id", traj.ID,
			"lat", latest.Lat,
			"lon", latest.Lon,
			"error", err,
		)
		sample = WindSample{}
	}

	return WindResult{
		WindSample: sample,
		Risk:       ComputeRisk(traj.DriftKmh, traj.HeadingDeg, sample),
	}
}

// MergeWind returns a copy of trajs with enrichment results applied by id.
// Trajectories without a result keep whatever wind and risk they had.
func MergeWind(trajs []Trajectory, results map[string]WindResult) []Trajectory {
	out := make([]Trajectory, len(trajs))
	copy(out, trajs)
	for i := range out {
		r, ok := results[out[i].ID]
		if !ok {
			continue
		}
		out[i].WindSample = r.WindSample
		out[i].Risk = r.Risk
	}
	return out
}
