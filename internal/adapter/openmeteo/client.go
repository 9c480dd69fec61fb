package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/couchcryptid/balloon-drift-service/internal/observability"
)

// Hourly series requested from the forecast API.
const (
	seriesSpeed700 = "wind_speed_700hPa"
	seriesDir700   = "wind_direction_700hPa"
	seriesSpeed500 = "wind_speed_500hPa"
	seriesDir500   = "wind_direction_500hPa"
)

// Client implements domain.WindProvider using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo wind client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Wind returns the most recent hourly wind at 700 and 500 hPa for a coordinate.
// Missing or empty series leave the matching field nil. Non-200 responses,
// including rate limiting, are errors.
func (c *Client) Wind(ctx context.Context, lat, lon float64) (domain.WindSample, error) {
	params := url.Values{
		"latitude":       {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":      {strconv.FormatFloat(lon, 'f', 4, 64)},
		"hourly":         {seriesSpeed700 + "," + seriesDir700 + "," + seriesSpeed500 + "," + seriesDir500},
		"past_hours":     {"1"},
		"forecast_hours": {"1"},
		"timezone":       {"UTC"},
	}

	start := time.Now()
	sample, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WindAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.WindRequests.WithLabelValues("error").Inc()
		c.logger.Debug("open-meteo request failed", "lat", lat, "lon", lon, "error", err)
	case sample.IsEmpty():
		c.metrics.WindRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.WindRequests.WithLabelValues("success").Inc()
	}
	return sample, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WindSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WindSample{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WindSample{}, fmt.Errorf("wind request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.WindSample{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var forecast response
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return domain.WindSample{}, fmt.Errorf("decode response: %w", err)
	}

	h := forecast.Hourly
	return domain.WindSample{
		Wind700: last(h.Speed700),
		Dir700:  last(h.Dir700),
		Wind500: last(h.Speed500),
		Dir500:  last(h.Dir500),
	}, nil
}

// last returns the final entry of a series, or nil when the series is empty.
func last(series []*float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	return series[len(series)-1]
}

// Open-Meteo API response types.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time     []string   `json:"time"`
	Speed700 []*float64 `json:"wind_speed_700hPa"`
	Dir700   []*float64 `json:"wind_direction_700hPa"`
	Speed500 []*float64 `json:"wind_speed_500hPa"`
	Dir500   []*float64 `json:"wind_direction_500hPa"`
}
