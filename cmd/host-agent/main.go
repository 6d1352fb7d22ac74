package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/davidvonthenen/a2a-simple/config"
	"github.com/davidvonthenen/a2a-simple/host"
	"github.com/davidvonthenen/a2a-simple/logging"
	"github.com/davidvonthenen/a2a-simple/model"
	"github.com/davidvonthenen/a2a-simple/model/anthropic"
	"github.com/davidvonthenen/a2a-simple/model/openai"
)

func main() {
	listenHost := pflag.String("host", "127.0.0.1", "listen host")
	listenPort := pflag.Int("port", 11000, "listen port")
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

	// The router keeps the provider's default sampling; pinning a temperature
	// hurts some planner models.
	llm := buildModel(cfg, cfg.RouterModel, nil, logger)

	routingAgent := host.NewRoutingAgent(llm, func(o *host.RoutingAgentOptions) {
		o.Logger = logger
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(
		"host.starting",
		"provider", cfg.Provider,
		"model", cfg.RouterModel,
		"remotes", fmt.Sprintf("%s, %s", cfg.AirbnbAgentURL, cfg.WeatherAgentURL),
	)

	routingAgent.Discover(ctx, cfg.AirbnbAgentURL, cfg.WeatherAgentURL)

	addr := fmt.Sprintf("%s:%d", *listenHost, *listenPort)
	srv := host.NewServer(addr, routingAgent, func(o *host.ServerOptions) {
		o.Logger = logger
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("host.shutdown")
	case err := <-errCh:
		if err != nil {
			logger.Error("host.server.failed", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("host.shutdown.failed", "error", err.Error())
	}

	logger.Info("host.stopped")
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
