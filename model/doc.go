// Package model defines the provider-agnostic abstractions for talking to
// hosted chat models.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool / function call representation (ToolDefinition, parts)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so agents remain decoupled from vendor SDKs. CircuitBreakerModel
// wraps any provider with fail-fast protection against repeated upstream
// failures.
package model
