package certs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/imamik/swarmboot/internal/config"
	"github.com/imamik/swarmboot/internal/platform/swarmrt"
	"github.com/imamik/swarmboot/internal/status"
	"github.com/imamik/swarmboot/internal/util/flock"
)

// SecretStore persists the bundle password to the external secret store.
type SecretStore interface {
	MergeKey(ctx context.Context, secretID, key, value string) error
}

// Archiver copies the password-protected export bundle off the host.
type Archiver interface {
	Upload(ctx context.Context, bucket, key string, data []byte) error
}

// Manager performs one certificate lifecycle run on the cluster leader.
type Manager struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	runtime  swarmrt.Runtime
	secrets  SecretStore
	// archiver is optional; nil disables bundle archival.
	archiver Archiver

	// now is the clock, overridable in tests.
	now func() time.Time
}

// NewManager creates a certificate lifecycle manager. archiver may be
// nil when no archive bucket is configured.
func NewManager(cfg *config.Config, timeouts *config.Timeouts, runtime swarmrt.Runtime, secrets SecretStore, archiver Archiver) *Manager {
	return &Manager{
		cfg:      cfg,
		timeouts: timeouts,
		runtime:  runtime,
		secrets:  secrets,
		archiver: archiver,
		now:      time.Now,
	}
}

// Run performs one lifecycle tick. Exactly one node in the cluster does
// certificate work at a time: the leadership gate is re-evaluated on
// every tick, which re-homes the responsibility automatically after a
// leadership change. A manager that is not the leader returns nil (the
// scheduled no-op); any other non-leader state is a misconfiguration
// and returns an error, because the component should not be scheduled
// there at all.
func (m *Manager) Run(ctx context.Context, force bool) error {
	state, err := m.runtime.LocalState(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine membership state: %w", err)
	}

	switch state {
	case swarmrt.Leader:
		// proceed
	case swarmrt.ManagerNotLeader:
		log.Println("Not the current leader, certificate work belongs to another manager")
		return nil
	default:
		return fmt.Errorf("certificate lifecycle scheduled on a %s node: misconfigured schedule", state)
	}

	// Guard against a slow run racing the next scheduled tick on the
	// same host.
	lock := flock.New(m.cfg.Certificates.LockFile)
	if err := lock.Acquire(ctx, m.timeouts.LockAcquire); err != nil {
		return fmt.Errorf("another certificate run is in progress: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Printf("Failed to release rotation lock: %v", err)
		}
	}()

	check := Evaluate(m.cfg.Certificates.Dir, m.cfg.Certificates.RenewalThresholdDays, m.now())
	if !check.NeedsRenewal && !force {
		log.Printf("Certificates valid: %s", check.Reason)
		return m.record(status.Valid, check.Reason, nil)
	}

	reason := check.Reason
	if force {
		reason = "forced renewal"
	}
	log.Printf("Regenerating certificate bundle: %s", reason)

	bundle, err := Generate(m.cfg.Certificates, m.now())
	if err != nil {
		return m.record(status.Failed, "bundle generation failed", err)
	}
	if err := bundle.WriteFiles(m.cfg.Certificates.Dir); err != nil {
		return m.record(status.Failed, "writing bundle artifacts failed", err)
	}

	if err := m.propagate(ctx, bundle); err != nil {
		return m.record(status.Failed, "propagation failed", err)
	}

	log.Println("Certificate bundle rotated and propagated")
	return m.record(status.Rotated, reason, nil)
}

// propagate pushes a freshly generated bundle out, in order: password to
// the secret store, artifacts to the cluster secrets, reload of every
// dependent service, then optional archival. The first failure aborts
// the remaining steps; a partially rotated bundle is left for operator
// triage rather than rolled back.
func (m *Manager) propagate(ctx context.Context, bundle *Bundle) error {
	if err := m.secrets.MergeKey(ctx, m.cfg.SecretID, m.cfg.Certificates.PasswordKey, bundle.Password); err != nil {
		return fmt.Errorf("failed to store bundle password: %w", err)
	}

	// Cluster secrets are immutable: rotation is always remove then
	// recreate under the same name.
	for _, a := range Artifacts {
		name := m.cfg.Certificates.SecretPrefix + "-" + a.SecretSuffix
		if _, err := m.runtime.RemoveSecret(ctx, name); err != nil {
			return fmt.Errorf("failed to remove secret %s: %w", name, err)
		}
		if err := m.runtime.CreateSecret(ctx, name, bundle.Content(a.File)); err != nil {
			return fmt.Errorf("failed to recreate secret %s: %w", name, err)
		}
	}

	// Running replicas keep the deleted secrets cached until restarted.
	for _, svc := range m.cfg.Services {
		if err := m.runtime.ForceServiceReload(ctx, svc); err != nil {
			return fmt.Errorf("failed to reload service %s: %w", svc, err)
		}
	}

	if m.archiver != nil && m.cfg.ArchiveBucket != "" {
		key := fmt.Sprintf("%s/%s-%s", m.cfg.ClusterID, m.now().UTC().Format("20060102T150405Z"), PFXFile)
		if err := m.archiver.Upload(ctx, m.cfg.ArchiveBucket, key, bundle.PFX); err != nil {
			return fmt.Errorf("failed to archive bundle: %w", err)
		}
	}

	return nil
}

// record writes the status artifact and returns runErr (wrapped) so the
// process exit code and the status file stay consistent.
func (m *Manager) record(outcome, detail string, runErr error) error {
	statusDetail := detail
	if runErr != nil {
		statusDetail = fmt.Sprintf("%s: %v", detail, runErr)
	}
	if err := status.Write(m.cfg.Certificates.StatusFile, outcome, statusDetail); err != nil {
		log.Printf("Failed to write status file: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", detail, runErr)
	}
	return nil
}
