// Minos is a contract review backend that routes review rules to a
// semantic judge and a deterministic rule engine.
//
// It exposes an HTTP API for running review batches, providing:
//   - Rule classification between semantic and deterministic review
//   - Concurrent judge execution with independent timeouts
//   - Ordered progress streaming over Server-Sent Events
//   - Fallback resolution when a judge is unavailable
//   - Idempotent result persistence with soft deletion
//
// Usage:
//
//	# Start server with default configuration
//	minos run
//
//	# Start with custom configuration file
//	minos run --config /path/to/config.yaml
//
//	# Validate configuration without starting
//	minos validate --config /path/to/config.yaml
//
//	# Show version information
//	minos version
package main

func main() {
	Execute()
}
