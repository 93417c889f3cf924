package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/imamik/swarmboot/internal/join"
	"github.com/imamik/swarmboot/internal/status"
)

// JoinOptions holds options for the join command.
type JoinOptions struct {
	ConfigPath string
}

// Join runs one pass of the join daemon and records the outcome in the
// join status file. A node that is already in the cluster reports
// "member"; a successful join reports "joined"; a deadline without a
// joinable record reports "timeout" and returns the error so the
// scheduler retries on its own cadence.
func Join(ctx context.Context, opts JoinOptions) error {
	cfg, timeouts, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	store, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}

	daemon := join.New(cfg, timeouts, rt, store)
	runErr := daemon.Run(ctx)

	outcome, detail := status.Member, ""
	switch {
	case runErr == nil && daemon.Joined():
		outcome = status.Joined
	case errors.Is(runErr, join.ErrDeadlineExceeded):
		outcome, detail = status.Timeout, runErr.Error()
	case runErr != nil:
		outcome, detail = status.Failed, runErr.Error()
	}

	if writeErr := status.Write(cfg.JoinStatusFile(), outcome, detail); writeErr != nil {
		log.Printf("Warning: failed to write join status: %v", writeErr)
	}

	if runErr != nil {
		return fmt.Errorf("join failed: %w", runErr)
	}
	return nil
}
