package eventflag

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/eventflag/pkg/eventflag/config"
	"github.com/randalmurphal/eventflag/pkg/eventflag/observability"
	"github.com/randalmurphal/eventflag/pkg/eventflag/probe"
)

// flagConfig holds configuration for a Flag.
type flagConfig struct {
	name    string
	poll    time.Duration
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	sink    probe.Recorder
}

// defaultFlagConfig returns the default flag configuration.
func defaultFlagConfig() flagConfig {
	return flagConfig{
		name:    "flag",
		poll:    DefaultPollInterval,
		metrics: observability.NoopMetrics{},
	}
}

// Option configures a Flag.
type Option func(*flagConfig)

// WithName sets the flag name used in logs, metrics, and probe records.
// Default: "flag"
func WithName(name string) Option {
	return func(c *flagConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithPollInterval sets the sleep slice for waits.
// Default: DefaultPollInterval
//
// Shorter slices tighten timeout overshoot at the cost of more wakeups.
// Non-positive values are ignored.
//
// Example:
//
//	flag := eventflag.New(eventflag.WithPollInterval(20 * time.Millisecond))
func WithPollInterval(d time.Duration) Option {
	return func(c *flagConfig) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithLogger sets the logger for wait/set diagnostics.
// A nil logger (the default) disables logging entirely.
func WithLogger(logger *slog.Logger) Option {
	return func(c *flagConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *flagConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithProbe sets the diagnostic probe sink.
// A nil sink (the default) disables probing entirely; this is a valid
// permanent state, not an error.
func WithProbe(sink probe.Recorder) Option {
	return func(c *flagConfig) {
		c.sink = sink
	}
}

// FromConfig builds flag options from a loaded settings document.
// Keys absent from the document keep their defaults.
//
// Example:
//
//	cfg, _ := config.FromFile("eventflag.yaml")
//	flag := eventflag.New(eventflag.FromConfig(cfg)...)
func FromConfig(cfg config.Config) []Option {
	return []Option{
		WithName(cfg.String(config.KeyName, "flag")),
		WithPollInterval(cfg.Duration(config.KeyPollInterval, DefaultPollInterval)),
	}
}
