// Package status reads and writes the companion status artifact the
// recurring components leave behind: the last outcome and when it
// happened, for operator inspection separate from the process exit code.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Outcomes recorded by the recurring components.
const (
	// Valid: certificate run found the bundle healthy, no action taken.
	Valid = "valid"
	// Rotated: certificate run replaced and propagated the bundle.
	Rotated = "rotated"
	// Failed: a run aborted partway; details name the failed step.
	Failed = "failed"
	// Joined: join run attached this node to the cluster.
	Joined = "joined"
	// Member: join run found the node already in the cluster.
	Member = "member"
	// Timeout: join run hit its deadline without converging.
	Timeout = "timeout"
)

// Status is one recorded run outcome.
type Status struct {
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Write records a run outcome, replacing the file atomically so a
// concurrent reader never observes a partial document.
func Write(path, outcome, detail string) error {
	s := Status{
		Outcome:   outcome,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace status file: %w", err)
	}
	return nil
}

// Read loads the last recorded status.
func Read(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode status file: %w", err)
	}
	return &s, nil
}
