// Package observability provides structured logging and Prometheus metrics
// for the posgate SDK.
//
// The Logger wraps log/slog with a JSON handler and field chaining. Metrics
// covers the SDK's hot paths: permission resolution (labelled by decision
// source, so degraded/fallback mode is visible to operators), cache
// effectiveness, session lifecycle transitions, and outbound HTTP calls.
package observability
