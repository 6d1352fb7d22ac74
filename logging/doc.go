// Package logging provides a minimal logging interface shared by the agent
// services and their libraries.
//
// The Logger interface defines the standard structured logging methods
// (Debug, Info, Warn, Error) that the protocol layer, model adapters and
// agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.New(&logging.Config{Level: logging.LevelInfo, Format: "json"})
//	handler := a2asrv.NewHandler(executor, store, a2asrv.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
