// Package config loads flag tuning from yaml or json documents.
//
// A document is a flat map with a small recognized schema:
//
//	name: shutdown        # flag name used in logs and probe records
//	poll_interval: 100ms  # sleep slice for bounded waits
//
// Loaders reject unknown keys so typos surface at load time instead of
// silently falling back to defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Recognized document keys.
const (
	// KeyName is the flag name.
	KeyName = "name"

	// KeyPollInterval is the sleep slice for bounded waits.
	KeyPollInterval = "poll_interval"
)

// Sentinel errors for document loading.
var (
	// ErrUnknownKey indicates a document key outside the schema.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrUnknownFormat indicates a file extension without a decoder.
	ErrUnknownFormat = errors.New("unsupported config format")
)

// Config is a decoded settings document.
type Config struct {
	values map[string]any
}

// New wraps raw values in a Config. Nil is treated as an empty document.
// New does not validate; loaders do.
func New(values map[string]any) Config {
	if values == nil {
		values = map[string]any{}
	}
	return Config{values: values}
}

// Validate checks every key in the document against the recognized schema.
func (c Config) Validate() error {
	for key := range c.values {
		switch key {
		case KeyName, KeyPollInterval:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
	}
	return nil
}

// String returns the string under key, or fallback when the key is
// missing or holds another type.
func (c Config) String(key, fallback string) string {
	if s, ok := c.values[key].(string); ok {
		return s
	}
	return fallback
}

// Duration returns the duration under key, or fallback when the key is
// missing or unparseable.
//
// Strings go through time.ParseDuration. Bare numbers are read as
// milliseconds, the natural scale for poll slices.
func (c Config) Duration(key string, fallback time.Duration) time.Duration {
	switch v := c.values[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	case time.Duration:
		return v
	}
	return fallback
}
