// Package session houses conversation history storage for agents. The Store
// interface keeps per-context transcripts of model turns so that follow-up
// requests within the same context see prior exchanges.
//
// Add additional backends (Redis, Postgres, etc.) in sub-packages without
// changing any calling code - only the wiring layer needs to decide which
// implementation to instantiate.
package session
