package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	JoinDeadline      time.Duration // Wall-clock deadline for one join run
	JoinBackoff       time.Duration // Fixed sleep between join attempts
	LockAcquire       time.Duration // Timeout for the host-local rotation lock
	AWSCall           time.Duration // Per-call timeout for record/secret store requests
	RetryMaxAttempts  int           // Maximum number of retry attempts for transient errors
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - SWARMBOOT_JOIN_DEADLINE (default: 300s)
//   - SWARMBOOT_JOIN_BACKOFF (default: 10s)
//   - SWARMBOOT_LOCK_TIMEOUT (default: 30s)
//   - SWARMBOOT_AWS_TIMEOUT (default: 15s)
//   - SWARMBOOT_RETRY_MAX_ATTEMPTS (default: 3)
//   - SWARMBOOT_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		JoinDeadline:      parseDuration("SWARMBOOT_JOIN_DEADLINE", 300*time.Second),
		JoinBackoff:       parseDuration("SWARMBOOT_JOIN_BACKOFF", 10*time.Second),
		LockAcquire:       parseDuration("SWARMBOOT_LOCK_TIMEOUT", 30*time.Second),
		AWSCall:           parseDuration("SWARMBOOT_AWS_TIMEOUT", 15*time.Second),
		RetryMaxAttempts:  parseInt("SWARMBOOT_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("SWARMBOOT_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return n
}
