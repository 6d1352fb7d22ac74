// Package weather assembles the weather leaf agent: its instruction, agent
// card and the optional live weather.gov tools (active alerts and city
// forecasts via Nominatim geocoding). The binary in cmd/weather-agent wires
// these onto the shared leaf-agent runtime.
package weather
