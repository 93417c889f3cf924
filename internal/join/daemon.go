// Package join converges a node onto an already-initialized cluster.
//
// The daemon is triggered on a recurring schedule. Each run is bounded
// by a wall-clock deadline and either ends with the node a member,
// leaves it untouched for the next tick, or no-ops because the node is
// already in the cluster.
package join

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/imamik/swarmboot/internal/config"
	"github.com/imamik/swarmboot/internal/platform/dynamo"
	"github.com/imamik/swarmboot/internal/platform/swarmrt"
)

// ErrDeadlineExceeded indicates the run's wall-clock deadline elapsed
// before the node could join. The next scheduled tick retries from a
// fresh membership check.
var ErrDeadlineExceeded = errors.New("join deadline exceeded")

// StateStore is the read side of the shared cluster state record.
type StateStore interface {
	Read(ctx context.Context, clusterID string) (*dynamo.Record, error)
}

// Daemon performs one bounded join run per invocation.
type Daemon struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	runtime  swarmrt.Runtime
	store    StateStore

	joined bool
}

// New creates a join daemon.
func New(cfg *config.Config, timeouts *config.Timeouts, runtime swarmrt.Runtime, store StateStore) *Daemon {
	return &Daemon{cfg: cfg, timeouts: timeouts, runtime: runtime, store: store}
}

// Joined reports whether the last Run actually joined the cluster, as
// opposed to no-opping on an existing membership.
func (d *Daemon) Joined() bool {
	return d.joined
}

// Run executes one tick. Nodes already in the cluster return success
// immediately, which is what makes the recurring schedule safe to
// re-trigger indefinitely. Otherwise the record is polled and a join
// attempted until success or the deadline; the address and credential
// are re-read on every iteration because the initializer may still be
// converging.
func (d *Daemon) Run(ctx context.Context) error {
	state, err := d.runtime.LocalState(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine membership state: %w", err)
	}
	if state.InCluster() {
		log.Printf("Node already in cluster (%s)", state)
		return nil
	}

	deadline := time.Now().Add(d.timeouts.JoinDeadline)
	backoff := d.timeouts.JoinBackoff

	for {
		if d.attempt(ctx) {
			d.joined = true
			return nil
		}

		if time.Now().Add(backoff).After(deadline) {
			return fmt.Errorf("cluster %s not joinable within %s: %w",
				d.cfg.ClusterID, d.timeouts.JoinDeadline, ErrDeadlineExceeded)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("join cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}
}

// attempt performs one poll-and-join iteration. All failures are
// swallowed into a retry: from the outside a missing record, a store
// error and a refused join all mean the cluster is not joinable yet.
func (d *Daemon) attempt(ctx context.Context) bool {
	rec, err := d.store.Read(ctx, d.cfg.ClusterID)
	if err != nil {
		log.Printf("State record read failed (will retry): %v", err)
		return false
	}
	if !rec.Joinable(d.cfg.NodeRole) {
		log.Printf("Cluster %s not joinable yet", d.cfg.ClusterID)
		return false
	}

	token := rec.TokenForRole(d.cfg.NodeRole)
	if err := d.runtime.JoinCluster(ctx, rec.ManagerAddr, token); err != nil {
		log.Printf("Join attempt against %s failed (will retry): %v", rec.ManagerAddr, err)
		return false
	}

	log.Printf("Joined cluster %s at %s as %s", d.cfg.ClusterID, rec.ManagerAddr, d.cfg.NodeRole)
	return true
}
