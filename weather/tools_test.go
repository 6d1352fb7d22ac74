package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvonthenen/a2a-simple/tool"
)

func newFakeNWS(t *testing.T, handler http.HandlerFunc) *NWSClient {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewNWSClient(func(o *NWSClientOptions) {
		o.BaseURL = ts.URL
		o.HTTPClient = ts.Client()
	})
}

func newFakeGeocoder(t *testing.T, handler http.HandlerFunc) *Geocoder {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewGeocoder(func(o *GeocoderOptions) {
		o.BaseURL = ts.URL
		o.HTTPClient = ts.Client()
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/geo+json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestAlertsReport(t *testing.T) {
	client := newFakeNWS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/active/area/CA", r.URL.Path)
		assert.Equal(t, "weather-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))

		writeJSON(t, w, map[string]any{
			"features": []any{
				map[string]any{"properties": map[string]any{
					"event":       "Heat Advisory",
					"areaDesc":    "Los Angeles County",
					"severity":    "Moderate",
					"certainty":   "Likely",
					"urgency":     "Expected",
					"effective":   "2025-07-01T10:00:00-07:00",
					"expires":     "2025-07-02T20:00:00-07:00",
					"description": "Hot conditions expected.\n",
					"instruction": "Drink plenty of fluids.",
				}},
				map[string]any{"properties": map[string]any{}},
			},
		})
	})

	got := alertsReport(context.Background(), client, "ca")

	want := "Event: Heat Advisory\n" +
		"Area: Los Angeles County\n" +
		"Severity: Moderate\n" +
		"Certainty: Likely\n" +
		"Urgency: Expected\n" +
		"Effective: 2025-07-01T10:00:00-07:00\n" +
		"Expires: 2025-07-02T20:00:00-07:00\n" +
		"Description: Hot conditions expected.\n" +
		"Instructions: Drink plenty of fluids." +
		"\n---\n" +
		"Event: Unknown Event\n" +
		"Area: N/A\n" +
		"Severity: N/A\n" +
		"Certainty: N/A\n" +
		"Urgency: N/A\n" +
		"Effective: N/A\n" +
		"Expires: N/A\n" +
		"Description: No description provided.\n" +
		"Instructions: No instructions provided."

	assert.Equal(t, want, got)
}

func TestAlertsReport_InvalidState(t *testing.T) {
	client := NewNWSClient()

	for _, state := range []string{"", "C", "CAL", "C1", "1A"} {
		got := alertsReport(context.Background(), client, state)
		assert.Equal(t, "Invalid input. Please provide a two-letter US state code (e.g., CA).", got, "state %q", state)
	}
}

func TestAlertsReport_NoAlerts(t *testing.T) {
	client := newFakeNWS(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"features": []any{}})
	})

	got := alertsReport(context.Background(), client, "CA")
	assert.Equal(t, "No active weather alerts found for CA.", got)
}

func TestAlertsReport_UpstreamError(t *testing.T) {
	client := newFakeNWS(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})

	got := alertsReport(context.Background(), client, "CA")
	assert.Equal(t, "Failed to retrieve weather alerts for CA.", got)
}

func TestForecastByCity(t *testing.T) {
	var nws *NWSClient

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/points/34.0500,-118.2400", r.URL.Path)
		writeJSON(t, w, map[string]any{
			"properties": map[string]any{"forecast": server.URL + "/gridpoints/LOX/forecast"},
		})
	})
	mux.HandleFunc("/gridpoints/LOX/forecast", func(w http.ResponseWriter, r *http.Request) {
		periods := []any{}
		for i := 0; i < 7; i++ {
			periods = append(periods, map[string]any{
				"name":             "Tonight",
				"temperature":      68,
				"temperatureUnit":  "F",
				"windSpeed":        "5 mph",
				"windDirection":    "SW",
				"shortForecast":    "Clear",
				"detailedForecast": "Clear skies overnight. ",
			})
		}
		writeJSON(t, w, map[string]any{"properties": map[string]any{"periods": periods}})
	})

	nws = NewNWSClient(func(o *NWSClientOptions) {
		o.BaseURL = server.URL
		o.HTTPClient = server.Client()
	})

	geocoder := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Los Angeles, CA, USA", r.URL.Query().Get("q"))
		writeJSON(t, w, []any{map[string]any{"lat": "34.05", "lon": "-118.24"}})
	})

	got := cityForecastReport(context.Background(), nws, geocoder, "Los Angeles", "ca")

	period := "Tonight:\n" +
		"  Temperature: 68°F\n" +
		"  Wind: 5 mph SW\n" +
		"  Short Forecast: Clear\n" +
		"  Detailed Forecast: Clear skies overnight."

	want := period + "\n---\n" + period + "\n---\n" + period + "\n---\n" + period + "\n---\n" + period

	assert.Equal(t, want, got, "only the first five periods should be reported")
}

func TestForecastByCity_Validation(t *testing.T) {
	nws := NewNWSClient()
	geocoder := NewGeocoder()

	got := cityForecastReport(context.Background(), nws, geocoder, "", "CA")
	assert.Equal(t, "Invalid city name provided.", got)

	got = cityForecastReport(context.Background(), nws, geocoder, "Los Angeles", "California")
	assert.Equal(t, "Invalid state code. Please provide the two-letter US state abbreviation (e.g., CA).", got)
}

func TestForecastByCity_NotFound(t *testing.T) {
	nws := NewNWSClient()
	geocoder := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []any{})
	})

	got := cityForecastReport(context.Background(), nws, geocoder, "Atlantis", "CA")
	assert.Equal(t, "Could not find coordinates for 'Atlantis, CA'. Please check the spelling or try a nearby city.", got)
}

func TestForecastByCity_ServiceError(t *testing.T) {
	nws := NewNWSClient()
	geocoder := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	got := cityForecastReport(context.Background(), nws, geocoder, "Los Angeles", "CA")
	assert.Equal(t, "Could not get coordinates for 'Los Angeles, CA': The location service returned an error.", got)
}

func TestForecastByCity_Timeout(t *testing.T) {
	nws := NewNWSClient()
	geocoder := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []any{map[string]any{"lat": "34.05", "lon": "-118.24"}})
	})

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	got := cityForecastReport(ctx, nws, geocoder, "Los Angeles", "CA")
	assert.Equal(t, "Could not get coordinates for 'Los Angeles, CA': The location service timed out.", got)
}

func TestForecastByCity_BadCoordinates(t *testing.T) {
	nws := NewNWSClient()
	geocoder := newFakeGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []any{map[string]any{"lat": "not-a-number", "lon": "-118.24"}})
	})

	got := cityForecastReport(context.Background(), nws, geocoder, "Los Angeles", "CA")
	assert.Equal(t, "An unexpected error occurred while finding coordinates for 'Los Angeles, CA'.", got)
}

func TestForecastReport_EdgeCases(t *testing.T) {
	t.Run("out of range coordinates", func(t *testing.T) {
		got := forecastReport(context.Background(), NewNWSClient(), 91, 0)
		assert.Equal(t, "Invalid latitude or longitude provided. Latitude must be between -90 and 90, Longitude between -180 and 180.", got)
	})

	t.Run("gridpoint failure", func(t *testing.T) {
		client := newFakeNWS(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "oops", http.StatusBadGateway)
		})

		got := forecastReport(context.Background(), client, 34.05, -118.24)
		assert.Equal(t, "Unable to retrieve NWS gridpoint information for 34.0500,-118.2400.", got)
	})

	t.Run("missing forecast endpoint", func(t *testing.T) {
		client := newFakeNWS(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"properties": map[string]any{}})
		})

		got := forecastReport(context.Background(), client, 34.05, -118.24)
		assert.Equal(t, "Could not find the NWS forecast endpoint for 34.0500,-118.2400.", got)
	})

	t.Run("no periods", func(t *testing.T) {
		var server *httptest.Server

		mux := http.NewServeMux()
		server = httptest.NewServer(mux)
		t.Cleanup(server.Close)

		mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{
				"properties": map[string]any{"forecast": server.URL + "/gridpoints/LOX/forecast"},
			})
		})
		mux.HandleFunc("/gridpoints/LOX/forecast", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"properties": map[string]any{"periods": []any{}}})
		})

		client := NewNWSClient(func(o *NWSClientOptions) {
			o.BaseURL = server.URL
			o.HTTPClient = server.Client()
		})

		got := forecastReport(context.Background(), client, 34.05, -118.24)
		assert.Equal(t, "No forecast periods found for this location from NWS.", got)
	})
}

func TestAlertsTool(t *testing.T) {
	client := newFakeNWS(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"features": []any{}})
	})

	alerts := NewAlertsTool(client)
	assert.Equal(t, AlertsToolName, alerts.Name())

	result, err := alerts.Call(context.Background(), map[string]any{"state": "CA"})
	require.NoError(t, err)
	assert.Equal(t, "No active weather alerts found for CA.", result)

	// Schema validation rejects a missing argument before the report runs.
	_, err = alerts.Call(context.Background(), map[string]any{})
	require.Error(t, err)

	var toolErr *tool.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	// A malformed value is a report, not an error.
	result, err = alerts.Call(context.Background(), map[string]any{"state": "California"})
	require.NoError(t, err)
	assert.Equal(t, "Invalid input. Please provide a two-letter US state code (e.g., CA).", result)
}

func TestCard(t *testing.T) {
	card := Card("http://0.0.0.0:10001")

	assert.Equal(t, "Weather Agent", card.Name)
	assert.Equal(t, "Helps with weather", card.Description)
	assert.Equal(t, "http://0.0.0.0:10001", card.URL)
	assert.Equal(t, "1.0.0", card.Version)
	assert.True(t, card.Capabilities.Streaming)
	assert.False(t, card.Capabilities.PushNotifications)
	assert.Equal(t, []string{"text"}, card.DefaultInputModes)
	assert.Equal(t, []string{"text"}, card.DefaultOutputModes)

	require.Len(t, card.Skills, 1)
	assert.Equal(t, "weather_search", card.Skills[0].ID)
	assert.Equal(t, "Search weather", card.Skills[0].Name)
	assert.Equal(t, "Helps with weather in city, or states", card.Skills[0].Description)
	assert.Equal(t, []string{"weather"}, card.Skills[0].Tags)
	assert.Equal(t, []string{"weather in LA, CA"}, card.Skills[0].Examples)
}
