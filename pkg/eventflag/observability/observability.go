// Package observability provides production-grade observability features
// for eventflag: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds eventflag context to a logger.
// Returns a new logger with flag and waiter_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "shutdown", 3)
//	enriched.Debug("waiting") // includes flag, waiter_id
func EnrichLogger(logger *slog.Logger, flagName string, waiterID uint64) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("flag", flagName),
		slog.Uint64("waiter_id", waiterID),
	)
}

// LogWaitStart logs entry into a bounded wait.
func LogWaitStart(logger *slog.Logger, flagName string, requested time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("bounded wait starting",
		slog.String("flag", flagName),
		slog.Duration("requested", requested),
	)
}

// LogWaitComplete logs completion of a bounded wait, including how far the
// actual sleep over- or undershot the requested timeout.
func LogWaitComplete(logger *slog.Logger, flagName string, requested, elapsed time.Duration, signaled bool) {
	if logger == nil {
		return
	}
	logger.Debug("bounded wait complete",
		slog.String("flag", flagName),
		slog.Duration("requested", requested),
		slog.Duration("elapsed", elapsed),
		slog.Duration("overshoot", elapsed-requested),
		slog.Bool("signaled", signaled),
	)
}

// LogSet logs a flag being raised and how many waiters were notified.
func LogSet(logger *slog.Logger, flagName string, notified int) {
	if logger == nil {
		return
	}
	logger.Debug("flag set",
		slog.String("flag", flagName),
		slog.Int("notified", notified),
	)
}

// LogClear logs a flag being reset.
func LogClear(logger *slog.Logger, flagName string) {
	if logger == nil {
		return
	}
	logger.Debug("flag cleared",
		slog.String("flag", flagName),
	)
}

// LogProbeError logs a probe store failure (non-fatal).
func LogProbeError(logger *slog.Logger, flagName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("probe record failed",
		slog.String("flag", flagName),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
