// Package logging provides structured logging for the review service
// on top of log/slog.
//
// New builds a Logger from configuration (level, format, source
// annotation) and installs it as the process default so that packages
// using slog.Default() pick it up. Context helpers carry the request,
// session, and contract identifiers through the pipeline so every log
// line of one review can be correlated:
//
//	ctx = logging.WithSession(ctx, sessionID)
//	logger.InfoContext(ctx, "review started", "rules", len(rules))
package logging
