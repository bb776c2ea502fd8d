// internal/pipeline/angle-resolution/config.go
package angleresolution

import "time"

type Config struct {
	// PollInterval is the wait between message fetches. Zero means poll
	// back to back (used by tests).
	PollInterval time.Duration
	// MaxPollAttempts bounds the total number of fetches per branch.
	MaxPollAttempts int
}

// DefaultConfig polls every 2 seconds for up to 2 minutes.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:    2 * time.Second,
		MaxPollAttempts: 60,
	}
}
