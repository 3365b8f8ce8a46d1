package engine

import "time"

// Options represents configuration options for the Engine.
type Options struct {
	// MaxInFlight bounds the commands submitted but not yet completed.
	MaxInFlight int64
	// RetryDelay is the pause after a failed read before reading again.
	RetryDelay time.Duration
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		MaxInFlight: 64,
		RetryDelay:  time.Second,
	}
}
