// Package bootstrap decides whether a freshly launched manager node must
// initialize a new cluster or defer to one a peer already initialized,
// and publishes the shared cluster state record after winning
// initialization.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/imamik/swarmboot/internal/config"
	"github.com/imamik/swarmboot/internal/platform/dynamo"
	"github.com/imamik/swarmboot/internal/platform/swarmrt"
	"github.com/imamik/swarmboot/internal/util/netutil"
	"github.com/imamik/swarmboot/internal/util/retry"
)

// StateStore is the shared cluster state record access contract.
type StateStore interface {
	Publish(ctx context.Context, rec dynamo.Record) error
	Read(ctx context.Context, clusterID string) (*dynamo.Record, error)
}

// Coordinator runs once at node start.
type Coordinator struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	runtime  swarmrt.Runtime
	store    StateStore

	// advertiseIP resolves the node's private address; overridable in
	// tests.
	advertiseIP func() (string, error)
}

// New creates a bootstrap coordinator.
func New(cfg *config.Config, timeouts *config.Timeouts, runtime swarmrt.Runtime, store StateStore) *Coordinator {
	return &Coordinator{
		cfg:         cfg,
		timeouts:    timeouts,
		runtime:     runtime,
		store:       store,
		advertiseIP: netutil.PrivateIPv4,
	}
}

// Run performs the bootstrap decision. It returns nil when the node is
// already a member, is a worker (workers only ever join), or when it
// successfully initialized the cluster and published the state record.
// Initialization failures are returned so the process exits non-zero and
// the node-health tooling can replace the node instead of letting it
// bring up dependent services against a dead cluster.
func (c *Coordinator) Run(ctx context.Context) error {
	state, err := c.runtime.LocalState(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine membership state: %w", err)
	}
	if state.InCluster() {
		log.Printf("Node already in cluster (%s), nothing to bootstrap", state)
		return nil
	}

	if c.cfg.NodeRole != config.RoleManager {
		log.Println("Worker node: deferring to the join daemon")
		return nil
	}

	// A peer manager may have initialized first. If its record is
	// already joinable this node joins through the daemon like any
	// other; initializing a second cluster under the same id would
	// split the brain.
	existing, err := c.readRecord(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cluster state record: %w", err)
	}
	if existing.Joinable(c.cfg.NodeRole) {
		log.Printf("Cluster %s already initialized at %s, deferring to the join daemon",
			c.cfg.ClusterID, existing.ManagerAddr)
		return nil
	}

	return c.initialize(ctx)
}

// initialize creates the cluster with this node as first manager and
// publishes the rendezvous record.
func (c *Coordinator) initialize(ctx context.Context) error {
	ip, err := c.advertiseIP()
	if err != nil {
		return fmt.Errorf("failed to derive rendezvous address: %w", err)
	}
	addr := netutil.JoinHostPort(ip, config.SwarmPort)

	log.Printf("Initializing cluster %s at %s", c.cfg.ClusterID, addr)
	if err := c.runtime.InitCluster(ctx, addr); err != nil {
		return fmt.Errorf("cluster initialization failed: %w", err)
	}

	workerToken, managerToken, err := c.runtime.JoinTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to read join credentials: %w", err)
	}

	rec := dynamo.Record{
		ClusterID:    c.cfg.ClusterID,
		ManagerAddr:  addr,
		WorkerToken:  workerToken,
		ManagerToken: managerToken,
	}
	if err := c.publishRecord(ctx, rec); err != nil {
		if errors.Is(err, dynamo.ErrAlreadyInitialized) {
			// Lost the initialization race after already initializing a
			// local cluster. This node must be replaced, not joined.
			return fmt.Errorf("cluster %s was concurrently initialized by a peer: %w",
				c.cfg.ClusterID, err)
		}
		return fmt.Errorf("failed to publish cluster state record: %w", err)
	}

	log.Printf("Cluster %s initialized, state record published", c.cfg.ClusterID)
	return nil
}

// readRecord reads the state record, retrying transient store errors.
func (c *Coordinator) readRecord(ctx context.Context) (*dynamo.Record, error) {
	var rec *dynamo.Record
	err := retry.Do(ctx, func() error {
		var err error
		rec, err = c.store.Read(ctx, c.cfg.ClusterID)
		return err
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
	)
	return rec, err
}

// publishRecord publishes the state record, retrying transient store
// errors but never a conditional-write rejection.
func (c *Coordinator) publishRecord(ctx context.Context, rec dynamo.Record) error {
	return retry.Do(ctx, func() error {
		err := c.store.Publish(ctx, rec)
		if errors.Is(err, dynamo.ErrAlreadyInitialized) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
	)
}
