package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Handler forwards requests under a path prefix to an upstream base URL and
// copies back the status, content type and body. Responses are never cached
// and are readable from any origin.
type Handler struct {
	prefix     string
	upstream   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHandler creates a relay mapping <prefix><path> to <upstream><path>.
// upstream should end with a slash.
func NewHandler(prefix, upstream string, timeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		prefix:   prefix,
		upstream: upstream,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := h.upstream + strings.TrimPrefix(r.URL.Path, h.prefix)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		h.fail(w, target, err)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.fail(w, target, err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Warn("relay body copy failed", "target", target, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, target string, err error) {
	h.logger.Warn("relay upstream fetch failed", "target", target, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(errorBody{Error: "upstream_fetch_failed", Message: err.Error()})
}
