package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/heatwise/wetbulb-etl/internal/config"
	"github.com/heatwise/wetbulb-etl/internal/domain"
	"github.com/heatwise/wetbulb-etl/internal/observability"
)

// Client looks up station metadata from the registry HTTP API.
// It implements domain.StationDirectory.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// stationResponse is the registry API's station representation.
type stationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation_m"`
}

// NewClient creates a registry client. The circuit breaker opens after
// consecutive failures so a down registry degrades enrichment instead of
// adding a timeout to every reading.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "station-registry",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("registry circuit breaker state change",
				"from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    cfg.RegistryURL,
		token:      cfg.RegistryToken,
		httpClient: &http.Client{Timeout: cfg.RegistryTimeout},
		breaker:    breaker,
		logger:     logger,
		metrics:    metrics,
	}
}

// Lookup fetches metadata for a station by ID. An unknown station returns a
// zero StationInfo and no error; transport and server failures return an error.
func (c *Client) Lookup(ctx context.Context, stationID string) (domain.StationInfo, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, stationID)
	})
	if err != nil {
		c.metrics.RegistryRequests.WithLabelValues("error").Inc()
		return domain.StationInfo{}, err
	}

	info := result.(domain.StationInfo)
	if info.Name == "" {
		c.metrics.RegistryRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.RegistryRequests.WithLabelValues("success").Inc()
	}
	return info, nil
}

func (c *Client) fetch(ctx context.Context, stationID string) (domain.StationInfo, error) {
	endpoint := fmt.Sprintf("%s/v1/stations/%s", c.baseURL, url.PathEscape(stationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.StationInfo{}, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RegistryAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.StationInfo{}, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.StationInfo{}, nil
	case resp.StatusCode != http.StatusOK:
		return domain.StationInfo{}, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var station stationResponse
	if err := json.NewDecoder(resp.Body).Decode(&station); err != nil {
		return domain.StationInfo{}, fmt.Errorf("decode registry response: %w", err)
	}

	return domain.StationInfo{
		Name:      station.Name,
		Lat:       station.Lat,
		Lon:       station.Lon,
		Elevation: station.Elevation,
	}, nil
}
