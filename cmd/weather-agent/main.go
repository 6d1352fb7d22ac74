package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/davidvonthenen/a2a-simple/a2asrv"
	"github.com/davidvonthenen/a2a-simple/agent"
	"github.com/davidvonthenen/a2a-simple/config"
	"github.com/davidvonthenen/a2a-simple/logging"
	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/model/anthropic"
	"github.com/davidvonthenen/a2a-simple/model/openai"
	"github.com/davidvonthenen/a2a-simple/session"
	"github.com/davidvonthenen/a2a-simple/tool"
	"github.com/davidvonthenen/a2a-simple/weather"
)

func main() {
	listenHost := pflag.String("host", "0.0.0.0", "listen host")
	listenPort := pflag.Int("port", 10001, "listen port")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn or error")
	pflag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "text"
	}
	logger := logging.New(&logging.Config{Level: logging.ParseLevel(*logLevel), Format: format})

	temperature := weather.Temperature
	llm := buildModel(cfg, cfg.WeatherModel, &temperature, logger)

	var tools []tool.Tool
	if cfg.WeatherTools {
		nws := weather.NewNWSClient()
		tools = []tool.Tool{
			weather.NewAlertsTool(nws),
			weather.NewForecastTool(nws, weather.NewGeocoder()),
		}
	}

	chatAgent := weather.NewAgent(llm, session.NewInMemoryStore(), func(o *weather.Options) {
		o.Tools = tools
		o.Logger = logger
	})

	executor := agent.NewExecutor(chatAgent, func(o *agent.ExecutorOptions) {
		o.Logger = logger
	})

	cardURL := cfg.AppURL
	if cardURL == "" {
		cardURL = fmt.Sprintf("http://%s:%d", *listenHost, *listenPort)
	}

	addr := fmt.Sprintf("%s:%d", *listenHost, *listenPort)
	srv := a2asrv.NewServer(addr, weather.Card(cardURL), executor, func(o *a2asrv.ServerOptions) {
		o.Logger = logger
	})

	logger.Info(
		"weather.starting",
		"provider", cfg.Provider,
		"model", cfg.WeatherModel,
		"tools_enabled", cfg.WeatherTools,
		"card_url", cardURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("weather.shutdown")
	case err := <-errCh:
		if err != nil {
			logger.Error("weather.server.failed", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("weather.shutdown.failed", "error", err.Error())
	}

	logger.Info("weather.stopped")
}

// buildModel constructs the configured provider model wrapped in a circuit
// breaker so a flapping upstream fails fast instead of queueing requests.
func buildModel(cfg *config.Config, name string, temperature *float64, logger logging.Logger) model.Model {
	var llm model.Model

	switch cfg.Provider {
	case config.ProviderAnthropic:
		llm = anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = name
			o.APIKey = cfg.APIKey()
			o.Temperature = temperature
		})
	default:
		llm = openai.NewModel(func(o *openai.Options) {
			o.Model = name
			o.APIKey = cfg.APIKey()
			o.Temperature = temperature
		})
	}

	return model.NewCircuitBreakerModel(llm, func(o *model.CircuitBreakerOptions) {
		o.Logger = logger
	})
}
