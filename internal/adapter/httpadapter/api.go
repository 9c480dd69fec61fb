package httpadapter

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// defaultWindowHours is the lookback used by /api/window without parameters.
const defaultWindowHours = 24

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type windowResponse struct {
	CycleID      string                      `json:"cycle_id"`
	BuiltAt      time.Time                   `json:"built_at"`
	Cutoff       int64                       `json:"cutoff"`
	Trajectories []domain.WindowedTrajectory `json:"trajectories"`
}

func (s *Server) handleTrajectories(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	traj, found := snap.Find(r.PathValue("id"))
	if !found {
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "unknown object id"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, traj)
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	cutoff, err := parseCutoff(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	snap, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, windowResponse{
		CycleID:      snap.CycleID,
		BuiltAt:      snap.BuiltAt,
		Cutoff:       cutoff,
		Trajectories: domain.ProjectAll(snap.Trajectories, cutoff),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trajectories.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write(domain.ExportHeader)
	for _, row := range domain.ExportRows(snap.Trajectories, ids) {
		_ = cw.Write(row.Record())
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn("csv export failed", "cycle_id", snap.CycleID, "error", err)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	queued := s.svc.Trigger()
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]bool{"queued": queued})
}

// current writes a 503 and returns false when no snapshot is published yet.
func (s *Server) current(w http.ResponseWriter) (*domain.Snapshot, bool) {
	snap := s.svc.Current()
	if snap == nil {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "not_ready", Message: "no snapshot published yet"})
		return nil, false
	}
	return snap, true
}

// parseCutoff reads an explicit unix cutoff or a lookback in hours relative
// to now. Without either the lookback defaults to defaultWindowHours.
func parseCutoff(r *http.Request) (int64, error) {
	q := r.URL.Query()
	if c := q.Get("cutoff"); c != "" {
		cutoff, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return 0, errInvalidParam("cutoff")
		}
		return cutoff, nil
	}

	hours := defaultWindowHours
	if h := q.Get("hours"); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil || n <= 0 {
			return 0, errInvalidParam("hours")
		}
		hours = n
	}
	return domain.Now().Unix() - int64(hours)*3600, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e)
}
