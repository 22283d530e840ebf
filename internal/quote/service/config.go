package service

import "time"

// Config holds configuration for the quote service.
type Config struct {
	// Interval is the delay between the end of one poll and the start of the next.
	Interval time.Duration
	// TapeSize is the capacity of the quote ring buffer.
	TapeSize int
	// EventBuffer is the size of the external events channel.
	EventBuffer int
	// DropEvents determines whether the external event channel drops on overflow.
	DropEvents bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Second,
		TapeSize:    600,
		EventBuffer: 64,
		DropEvents:  true,
	}
}
