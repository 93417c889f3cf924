// Package handlers implements the execution logic behind the CLI
// commands: configuration loading, client construction and component
// wiring.
package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/swarmboot/internal/certs"
	"github.com/imamik/swarmboot/internal/config"
	"github.com/imamik/swarmboot/internal/platform/dynamo"
	"github.com/imamik/swarmboot/internal/platform/s3"
	"github.com/imamik/swarmboot/internal/platform/secretsmanager"
	"github.com/imamik/swarmboot/internal/platform/swarmrt"
)

// loadConfig loads and validates configuration plus timeouts.
func loadConfig(path string) (*config.Config, *config.Timeouts, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, config.LoadTimeouts(), nil
}

// newRuntime connects to the local container runtime.
func newRuntime() (swarmrt.Runtime, error) {
	rt, err := swarmrt.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to container runtime: %w", err)
	}
	return rt, nil
}

// newStateStore connects to the shared cluster state record store.
func newStateStore(ctx context.Context, cfg *config.Config) (*dynamo.Client, error) {
	store, err := dynamo.NewClient(ctx, cfg.Region, cfg.StateTable, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create state store client: %w", err)
	}
	return store, nil
}

// newSecretStore connects to the external secret store.
func newSecretStore(ctx context.Context, cfg *config.Config) (*secretsmanager.Client, error) {
	store, err := secretsmanager.NewClient(ctx, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret store client: %w", err)
	}
	return store, nil
}

// newArchiver connects to the bundle archive, or returns nil when no
// archive bucket is configured.
func newArchiver(ctx context.Context, cfg *config.Config) (certs.Archiver, error) {
	if cfg.ArchiveBucket == "" {
		return nil, nil
	}
	archiver, err := s3.NewClient(ctx, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}
	return archiver, nil
}
