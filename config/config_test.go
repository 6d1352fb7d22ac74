package config

import (
	"testing"
)

func clearModelEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"MODEL_PROVIDER",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"OPENAI_MODEL", "OPENAI_WEATHER_MODEL", "OPENAI_AIRBNB_MODEL", "OPENAI_ROUTER_MODEL",
		"ANTHROPIC_MODEL", "ANTHROPIC_WEATHER_MODEL", "ANTHROPIC_AIRBNB_MODEL", "ANTHROPIC_ROUTER_MODEL",
		"APP_URL", "WEA_AGENT_URL", "AIR_AGENT_URL", "WEATHER_TOOLS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearModelEnv(t)

	cfg := Load()

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderOpenAI)
	}
	if cfg.WeatherModel != DefaultOpenAIModel {
		t.Errorf("WeatherModel = %q, want %q", cfg.WeatherModel, DefaultOpenAIModel)
	}
	if cfg.AirbnbModel != DefaultOpenAIModel {
		t.Errorf("AirbnbModel = %q, want %q", cfg.AirbnbModel, DefaultOpenAIModel)
	}
	if cfg.RouterModel != DefaultOpenAIRouterModel {
		t.Errorf("RouterModel = %q, want %q", cfg.RouterModel, DefaultOpenAIRouterModel)
	}
	if cfg.WeatherAgentURL != DefaultWeatherAgentURL {
		t.Errorf("WeatherAgentURL = %q, want %q", cfg.WeatherAgentURL, DefaultWeatherAgentURL)
	}
	if cfg.AirbnbAgentURL != DefaultAirbnbAgentURL {
		t.Errorf("AirbnbAgentURL = %q, want %q", cfg.AirbnbAgentURL, DefaultAirbnbAgentURL)
	}
	if cfg.WeatherTools {
		t.Error("WeatherTools should default to false")
	}
}

func TestLoadModelPrecedence(t *testing.T) {
	clearModelEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-shared")
	t.Setenv("OPENAI_WEATHER_MODEL", "gpt-weather")

	cfg := Load()

	if cfg.WeatherModel != "gpt-weather" {
		t.Errorf("WeatherModel = %q, want per-service override", cfg.WeatherModel)
	}
	if cfg.AirbnbModel != "gpt-shared" {
		t.Errorf("AirbnbModel = %q, want shared override", cfg.AirbnbModel)
	}
	if cfg.RouterModel != "gpt-shared" {
		t.Errorf("RouterModel = %q, want shared override", cfg.RouterModel)
	}
}

func TestLoadAnthropicProvider(t *testing.T) {
	clearModelEnv(t)
	t.Setenv("MODEL_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg := Load()

	if cfg.Provider != ProviderAnthropic {
		t.Fatalf("Provider = %q, want %q", cfg.Provider, ProviderAnthropic)
	}
	if cfg.WeatherModel != DefaultAnthropicModel {
		t.Errorf("WeatherModel = %q, want %q", cfg.WeatherModel, DefaultAnthropicModel)
	}
	if cfg.APIKey() != "sk-ant-test" {
		t.Errorf("APIKey() = %q, want selected provider key", cfg.APIKey())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateMissingKey(t *testing.T) {
	clearModelEnv(t)

	cfg := Load()

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should fail without OPENAI_API_KEY")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")

	if err := Load().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil with key set", err)
	}
}

func TestValidateUnknownProvider(t *testing.T) {
	clearModelEnv(t)
	t.Setenv("MODEL_PROVIDER", "cohere")

	if err := Load().Validate(); err == nil {
		t.Fatal("Validate() should reject unknown providers")
	}
}

func TestWeatherToolsGate(t *testing.T) {
	clearModelEnv(t)
	t.Setenv("WEATHER_TOOLS", "true")

	if !Load().WeatherTools {
		t.Error("WEATHER_TOOLS=true should enable tools")
	}

	t.Setenv("WEATHER_TOOLS", "yes")

	if Load().WeatherTools {
		t.Error("only the literal \"true\" enables tools")
	}
}
