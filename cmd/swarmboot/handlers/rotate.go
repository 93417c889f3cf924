package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/swarmboot/internal/certs"
)

// RotateOptions holds options for the rotate-certs command.
type RotateOptions struct {
	ConfigPath string
	Force      bool
}

// Rotate runs one certificate lifecycle pass on the current node. Only
// the cluster leader performs work; other managers exit cleanly so the
// same schedule can be installed fleet-wide.
func Rotate(ctx context.Context, opts RotateOptions) error {
	cfg, timeouts, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCertificates(); err != nil {
		return fmt.Errorf("certificate configuration invalid: %w", err)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	secrets, err := newSecretStore(ctx, cfg)
	if err != nil {
		return err
	}
	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	manager := certs.NewManager(cfg, timeouts, rt, secrets, archiver)
	if err := manager.Run(ctx, opts.Force); err != nil {
		return fmt.Errorf("certificate rotation failed: %w", err)
	}
	return nil
}
