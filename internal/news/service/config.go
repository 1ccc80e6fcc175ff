package service

import "time"

// Config holds configuration for the news service.
type Config struct {
	// EventBuffer is the size of the internal event channel.
	EventBuffer int
	// ExternalEventBuffer is the size of the external events channel.
	ExternalEventBuffer int
	// DropExternalEvents determines whether external event channel drops on overflow.
	DropExternalEvents bool
	// FetchTimeout bounds a single backend query.
	FetchTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		EventBuffer:         64,
		ExternalEventBuffer: 64,
		DropExternalEvents:  true,
		FetchTimeout:        15 * time.Second,
	}
}
