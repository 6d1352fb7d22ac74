// Package config loads the environment-driven settings shared by the three
// service binaries. Load captures a snapshot; nothing re-reads the
// environment afterwards. Listen hosts and ports are command-line flags, not
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Provider names accepted by MODEL_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Model name defaults applied when neither a per-service nor the shared
// override is set.
const (
	DefaultOpenAIModel       = "gpt-5-mini"
	DefaultOpenAIRouterModel = "gpt-5-nano"
	DefaultAnthropicModel    = "claude-sonnet-4-20250514"
)

// Default remote agent addresses used by host discovery.
const (
	DefaultWeatherAgentURL = "http://localhost:10001"
	DefaultAirbnbAgentURL  = "http://localhost:10002"
)

// Config is an immutable snapshot of the process environment.
type Config struct {
	// Provider selects the hosted model backend: ProviderOpenAI (default) or
	// ProviderAnthropic.
	Provider string

	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Resolved model names, per-service env over shared env over default.
	WeatherModel string
	AirbnbModel  string
	RouterModel  string

	// AppURL overrides the advertised card URL of a leaf agent. Empty means
	// derive it from the listen address.
	AppURL string

	// Remote agent addresses the host resolves at startup.
	WeatherAgentURL string
	AirbnbAgentURL  string

	// WeatherTools enables the live NWS tools on the weather agent.
	WeatherTools bool
}

// Load reads the environment into a Config snapshot.
func Load() *Config {
	provider := strings.ToLower(getenv("MODEL_PROVIDER", ProviderOpenAI))

	cfg := &Config{
		Provider:        provider,
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AppURL:          os.Getenv("APP_URL"),
		WeatherAgentURL: getenv("WEA_AGENT_URL", DefaultWeatherAgentURL),
		AirbnbAgentURL:  getenv("AIR_AGENT_URL", DefaultAirbnbAgentURL),
		WeatherTools:    os.Getenv("WEATHER_TOOLS") == "true",
	}

	switch provider {
	case ProviderAnthropic:
		cfg.WeatherModel = firstEnv(DefaultAnthropicModel, "ANTHROPIC_WEATHER_MODEL", "ANTHROPIC_MODEL")
		cfg.AirbnbModel = firstEnv(DefaultAnthropicModel, "ANTHROPIC_AIRBNB_MODEL", "ANTHROPIC_MODEL")
		cfg.RouterModel = firstEnv(DefaultAnthropicModel, "ANTHROPIC_ROUTER_MODEL", "ANTHROPIC_MODEL")
	default:
		cfg.WeatherModel = firstEnv(DefaultOpenAIModel, "OPENAI_WEATHER_MODEL", "OPENAI_MODEL")
		cfg.AirbnbModel = firstEnv(DefaultOpenAIModel, "OPENAI_AIRBNB_MODEL", "OPENAI_MODEL")
		cfg.RouterModel = firstEnv(DefaultOpenAIRouterModel, "OPENAI_ROUTER_MODEL", "OPENAI_MODEL")
	}

	return cfg
}

// Validate reports whether the snapshot can serve requests. A missing API key
// for the selected provider is the only fatal condition; binaries check this
// once at startup.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when MODEL_PROVIDER=%s", c.Provider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when MODEL_PROVIDER=%s", c.Provider)
		}
	default:
		return fmt.Errorf("unsupported MODEL_PROVIDER %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderAnthropic)
	}

	return nil
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}

	return c.OpenAIAPIKey
}

// getenv returns the variable's value, or fallback when unset or empty.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// firstEnv returns the first non-empty variable among keys, or fallback.
func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	return fallback
}
