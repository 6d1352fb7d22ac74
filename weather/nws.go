package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davidvonthenen/a2a-simple/internal/httputil"
)

// National Weather Service API defaults.
const (
	DefaultNWSBaseURL = "https://api.weather.gov"
	nwsUserAgent      = "weather-agent"

	// weather.gov occasionally stalls when the upstream service is busy, so
	// the request timeout is generous.
	nwsRequestTimeout = 120 * time.Second
)

// NWSClientOptions configures NewNWSClient.
type NWSClientOptions struct {
	// BaseURL overrides the weather.gov API root, mainly for tests.
	BaseURL string
	// HTTPClient overrides the default 120s-timeout pooled client.
	HTTPClient *http.Client
}

// NWSClient fetches GeoJSON payloads from the National Weather Service API.
// Responses stay schemaless maps; the tools layer formats them.
type NWSClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNWSClient builds a weather.gov API client.
func NewNWSClient(optFns ...func(o *NWSClientOptions)) *NWSClient {
	opts := NWSClientOptions{
		BaseURL: DefaultNWSBaseURL,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   nwsRequestTimeout,
			Transport: httputil.NewPooledTransport(httputil.DefaultConnectTimeout, httputil.DefaultResponseTimeout),
		}
	}

	return &NWSClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// ActiveAlerts fetches the active alerts feed for a two-letter state code.
func (c *NWSClient) ActiveAlerts(ctx context.Context, state string) (map[string]any, error) {
	return c.getJSON(ctx, c.baseURL+"/alerts/active/area/"+state)
}

// Gridpoint resolves coordinates to NWS gridpoint metadata, including the
// forecast endpoint for the containing grid cell.
func (c *NWSClient) Gridpoint(ctx context.Context, latitude, longitude float64) (map[string]any, error) {
	return c.getJSON(ctx, fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, latitude, longitude))
}

// ForecastAt fetches a forecast document from the absolute URL a gridpoint
// response advertises.
func (c *NWSClient) ForecastAt(ctx context.Context, url string) (map[string]any, error) {
	return c.getJSON(ctx, url)
}

func (c *NWSClient) getJSON(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", nwsUserAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	return payload, nil
}
