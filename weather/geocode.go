package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/davidvonthenen/a2a-simple/internal/httputil"
)

// Nominatim defaults. Geocoding is quick compared to forecast retrieval, so
// its timeout is much tighter.
const (
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	geocodeTimeout          = 10 * time.Second
)

// ErrBadGeocodeResponse reports a geocoding response that decoded but did not
// carry usable coordinates.
var ErrBadGeocodeResponse = errors.New("geocode response missing coordinates")

// GeocoderOptions configures NewGeocoder.
type GeocoderOptions struct {
	// BaseURL overrides the Nominatim root, mainly for tests.
	BaseURL string
	// HTTPClient overrides the default pooled client.
	HTTPClient *http.Client
}

// Geocoder resolves free-form place queries to coordinates using the
// OpenStreetMap Nominatim search API.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewGeocoder builds a Nominatim client.
func NewGeocoder(optFns ...func(o *GeocoderOptions)) *Geocoder {
	opts := GeocoderOptions{
		BaseURL: DefaultNominatimBaseURL,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   geocodeTimeout,
			Transport: httputil.NewPooledTransport(httputil.DefaultConnectTimeout, httputil.DefaultResponseTimeout),
		}
	}

	return &Geocoder{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// Geocode resolves a place query to coordinates. found is false when the
// service answered but knows no such place.
func (g *Geocoder) Geocode(ctx context.Context, query string) (latitude, longitude float64, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", nwsUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocode %q: unexpected status %d", query, resp.StatusCode)
	}

	var places []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, false, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(places) == 0 {
		return 0, 0, false, nil
	}

	latitude, latErr := strconv.ParseFloat(places[0].Lat, 64)
	longitude, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false, fmt.Errorf("geocode %q: %w", query, ErrBadGeocodeResponse)
	}

	return latitude, longitude, true, nil
}
