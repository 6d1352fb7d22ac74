package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode"

	"github.com/davidvonthenen/a2a-simple/tool"
)

// Tool names the weather agent exposes to the model.
const (
	AlertsToolName   = "get_weather_alerts"
	ForecastToolName = "get_forecast_by_city"
)

// NewAlertsTool wraps active-alert lookup as a callable function. Input
// problems and upstream failures come back as report text so the model can
// relay them instead of the turn failing.
func NewAlertsTool(client *NWSClient, optFns ...func(o *tool.Options)) *tool.FunctionTool {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"state": map[string]any{
				"type":        "string",
				"description": "Two-letter US state code, e.g. CA",
			},
		},
		"required": []string{"state"},
	}

	return tool.NewFunctionTool(
		AlertsToolName,
		"Get active National Weather Service alerts for a US state.",
		schema,
		func(ctx context.Context, args map[string]any) (any, error) {
			state, _ := args["state"].(string)
			return alertsReport(ctx, client, state), nil
		},
		optFns...,
	)
}

// NewForecastTool wraps city forecast lookup (geocode, gridpoint, forecast)
// as a callable function.
func NewForecastTool(client *NWSClient, geocoder *Geocoder, optFns ...func(o *tool.Options)) *tool.FunctionTool {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "City name, e.g. San Francisco",
			},
			"state": map[string]any{
				"type":        "string",
				"description": "Two-letter US state code, e.g. CA",
			},
		},
		"required": []string{"city", "state"},
	}

	return tool.NewFunctionTool(
		ForecastToolName,
		"Get the National Weather Service forecast for a US city.",
		schema,
		func(ctx context.Context, args map[string]any) (any, error) {
			city, _ := args["city"].(string)
			state, _ := args["state"].(string)
			return cityForecastReport(ctx, client, geocoder, city, state), nil
		},
		optFns...,
	)
}

// alertsReport builds the alert summary for a state.
func alertsReport(ctx context.Context, client *NWSClient, state string) string {
	if !isStateCode(state) {
		return "Invalid input. Please provide a two-letter US state code (e.g., CA)."
	}

	code := strings.ToUpper(state)

	data, err := client.ActiveAlerts(ctx, code)
	if err != nil {
		return fmt.Sprintf("Failed to retrieve weather alerts for %s.", code)
	}

	features, _ := data["features"].([]any)
	if len(features) == 0 {
		return fmt.Sprintf("No active weather alerts found for %s.", code)
	}

	alerts := make([]string, 0, len(features))
	for _, f := range features {
		feature, _ := f.(map[string]any)
		alerts = append(alerts, formatAlert(feature))
	}

	return strings.Join(alerts, "\n---\n")
}

// forecastReport builds the period summary for coordinates.
func forecastReport(ctx context.Context, client *NWSClient, latitude, longitude float64) string {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return "Invalid latitude or longitude provided. Latitude must be between -90 and 90, Longitude between -180 and 180."
	}

	points, err := client.Gridpoint(ctx, latitude, longitude)
	if err != nil {
		return fmt.Sprintf("Unable to retrieve NWS gridpoint information for %.4f,%.4f.", latitude, longitude)
	}

	props, ok := points["properties"].(map[string]any)
	if !ok {
		return fmt.Sprintf("Unable to retrieve NWS gridpoint information for %.4f,%.4f.", latitude, longitude)
	}

	forecastURL, _ := props["forecast"].(string)
	if forecastURL == "" {
		return fmt.Sprintf("Could not find the NWS forecast endpoint for %.4f,%.4f.", latitude, longitude)
	}

	forecast, err := client.ForecastAt(ctx, forecastURL)
	if err != nil {
		return "Failed to retrieve detailed forecast data from NWS."
	}

	fprops, ok := forecast["properties"].(map[string]any)
	if !ok {
		return "Failed to retrieve detailed forecast data from NWS."
	}

	periods, _ := fprops["periods"].([]any)
	if len(periods) == 0 {
		return "No forecast periods found for this location from NWS."
	}

	if len(periods) > 5 {
		periods = periods[:5]
	}

	formatted := make([]string, 0, len(periods))
	for _, p := range periods {
		period, _ := p.(map[string]any)
		formatted = append(formatted, formatForecastPeriod(period))
	}

	return strings.Join(formatted, "\n---\n")
}

// cityForecastReport geocodes a city/state pair and builds its forecast
// summary.
func cityForecastReport(ctx context.Context, client *NWSClient, geocoder *Geocoder, city, state string) string {
	if city == "" {
		return "Invalid city name provided."
	}
	if !isStateCode(state) {
		return "Invalid state code. Please provide the two-letter US state abbreviation (e.g., CA)."
	}

	place := fmt.Sprintf("%s, %s", strings.TrimSpace(city), strings.ToUpper(strings.TrimSpace(state)))

	latitude, longitude, found, err := geocoder.Geocode(ctx, place+", USA")
	if err != nil {
		switch {
		case isTimeout(err):
			return fmt.Sprintf("Could not get coordinates for '%s': The location service timed out.", place)
		case errors.Is(err, ErrBadGeocodeResponse):
			return fmt.Sprintf("An unexpected error occurred while finding coordinates for '%s'.", place)
		default:
			return fmt.Sprintf("Could not get coordinates for '%s': The location service returned an error.", place)
		}
	}

	if !found {
		return fmt.Sprintf("Could not find coordinates for '%s'. Please check the spelling or try a nearby city.", place)
	}

	return forecastReport(ctx, client, latitude, longitude)
}

// formatAlert renders one alert feature.
func formatAlert(feature map[string]any) string {
	props, _ := feature["properties"].(map[string]any)

	return fmt.Sprintf(
		"Event: %s\nArea: %s\nSeverity: %s\nCertainty: %s\nUrgency: %s\nEffective: %s\nExpires: %s\nDescription: %s\nInstructions: %s",
		propString(props, "event", "Unknown Event"),
		propString(props, "areaDesc", "N/A"),
		propString(props, "severity", "N/A"),
		propString(props, "certainty", "N/A"),
		propString(props, "urgency", "N/A"),
		propString(props, "effective", "N/A"),
		propString(props, "expires", "N/A"),
		strings.TrimSpace(propString(props, "description", "No description provided.")),
		strings.TrimSpace(propString(props, "instruction", "No instructions provided.")),
	)
}

// formatForecastPeriod renders one forecast period.
func formatForecastPeriod(period map[string]any) string {
	return fmt.Sprintf(
		"%s:\n  Temperature: %s°%s\n  Wind: %s %s\n  Short Forecast: %s\n  Detailed Forecast: %s",
		propString(period, "name", "Unknown Period"),
		propString(period, "temperature", "N/A"),
		propString(period, "temperatureUnit", "F"),
		propString(period, "windSpeed", "N/A"),
		propString(period, "windDirection", "N/A"),
		propString(period, "shortForecast", "N/A"),
		strings.TrimSpace(propString(period, "detailedForecast", "No detailed forecast provided.")),
	)
}

// propString stringifies a property, falling back when it is absent or null.
func propString(props map[string]any, key, fallback string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return fallback
	}

	return fmt.Sprintf("%v", v)
}

func isStateCode(state string) bool {
	if len(state) != 2 {
		return false
	}

	for _, r := range state {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
