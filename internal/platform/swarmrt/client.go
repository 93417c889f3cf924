// Package swarmrt wraps the Docker Engine API for the Swarm operations
// swarmboot needs: membership observation, cluster init and join, join
// token retrieval, secret rotation and service reload.
package swarmrt

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"
)

// Runtime is the injected capability surface of the local container
// runtime. Components depend on this interface so their coordination
// logic can be exercised against a fake cluster.
type Runtime interface {
	// LocalState derives the node's membership state.
	LocalState(ctx context.Context) (State, error)
	// InitCluster initializes a new cluster advertising the given
	// address and returns only after the runtime acknowledges it.
	InitCluster(ctx context.Context, advertiseAddr string) error
	// JoinCluster attaches this node to the cluster reachable at
	// remoteAddr using the given join credential.
	JoinCluster(ctx context.Context, remoteAddr, token string) error
	// JoinTokens returns the worker and manager join credentials.
	// Manager-only.
	JoinTokens(ctx context.Context) (worker, manager string, err error)
	// RemoveSecret deletes a cluster secret by name, reporting whether
	// it existed.
	RemoveSecret(ctx context.Context, name string) (bool, error)
	// CreateSecret creates a cluster secret. The name must not exist;
	// secrets are immutable once created.
	CreateSecret(ctx context.Context, name string, data []byte) error
	// ForceServiceReload forces every replica of a service to restart
	// and re-fetch its mounted secrets.
	ForceServiceReload(ctx context.Context, name string) error
}

// Client implements Runtime against the local Docker daemon.
type Client struct {
	docker *client.Client
}

var _ Runtime = (*Client)(nil)

// NewClient connects to the local Docker daemon using the standard
// environment configuration (DOCKER_HOST etc.).
func NewClient() (*Client, error) {
	docker, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Client{docker: docker}, nil
}

// LocalState derives the membership state from the daemon's swarm info.
// A node whose swarm state is errored or locked is reported as not in
// the cluster; such nodes are expected to be replaced, not repaired.
func (c *Client) LocalState(ctx context.Context) (State, error) {
	info, err := c.docker.Info(ctx)
	if err != nil {
		return NotInCluster, fmt.Errorf("failed to query docker info: %w", err)
	}

	switch info.Swarm.LocalNodeState {
	case swarm.LocalNodeStatePending:
		return Joining, nil
	case swarm.LocalNodeStateActive:
		// fall through below
	default:
		return NotInCluster, nil
	}

	if !info.Swarm.ControlAvailable {
		return Member, nil
	}

	node, _, err := c.docker.NodeInspectWithRaw(ctx, info.Swarm.NodeID)
	if err != nil {
		return NotInCluster, fmt.Errorf("failed to inspect node %s: %w", info.Swarm.NodeID, err)
	}
	if node.ManagerStatus != nil && node.ManagerStatus.Leader {
		return Leader, nil
	}
	return ManagerNotLeader, nil
}

// InitCluster initializes a new swarm with this node as first manager.
func (c *Client) InitCluster(ctx context.Context, advertiseAddr string) error {
	_, err := c.docker.SwarmInit(ctx, swarm.InitRequest{
		ListenAddr:    "0.0.0.0:2377",
		AdvertiseAddr: advertiseAddr,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cluster: %w", err)
	}
	return nil
}

// JoinCluster attaches this node to an existing swarm.
func (c *Client) JoinCluster(ctx context.Context, remoteAddr, token string) error {
	err := c.docker.SwarmJoin(ctx, swarm.JoinRequest{
		ListenAddr:  "0.0.0.0:2377",
		RemoteAddrs: []string{remoteAddr},
		JoinToken:   token,
	})
	if err != nil {
		return fmt.Errorf("failed to join cluster at %s: %w", remoteAddr, err)
	}
	return nil
}

// JoinTokens returns the current worker and manager join credentials.
func (c *Client) JoinTokens(ctx context.Context) (string, string, error) {
	sw, err := c.docker.SwarmInspect(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to inspect swarm: %w", err)
	}
	return sw.JoinTokens.Worker, sw.JoinTokens.Manager, nil
}

// RemoveSecret deletes the named secret if it exists.
func (c *Client) RemoveSecret(ctx context.Context, name string) (bool, error) {
	secret, found, err := c.findSecret(ctx, name)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	if err := c.docker.SecretRemove(ctx, secret.ID); err != nil {
		return false, fmt.Errorf("failed to remove secret %s: %w", name, err)
	}
	return true, nil
}

// CreateSecret creates a new immutable secret under the given name.
func (c *Client) CreateSecret(ctx context.Context, name string, data []byte) error {
	_, err := c.docker.SecretCreate(ctx, swarm.SecretSpec{
		Annotations: swarm.Annotations{Name: name},
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("failed to create secret %s: %w", name, err)
	}
	return nil
}

// ForceServiceReload bumps the service's force-update counter, which
// makes the orchestrator restart every replica and re-mount secrets.
func (c *Client) ForceServiceReload(ctx context.Context, name string) error {
	services, err := c.docker.ServiceList(ctx, types.ServiceListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	var target *swarm.Service
	for i := range services {
		if services[i].Spec.Name == name {
			target = &services[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("service %s not found", name)
	}

	spec := target.Spec
	spec.TaskTemplate.ForceUpdate++

	_, err = c.docker.ServiceUpdate(ctx, target.ID, target.Version, spec, types.ServiceUpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to force reload of service %s: %w", name, err)
	}
	return nil
}

// findSecret resolves a secret name to its current object. Name filters
// match prefixes, so the result is checked for an exact name match.
func (c *Client) findSecret(ctx context.Context, name string) (swarm.Secret, bool, error) {
	secrets, err := c.docker.SecretList(ctx, types.SecretListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return swarm.Secret{}, false, fmt.Errorf("failed to list secrets: %w", err)
	}

	for _, s := range secrets {
		if s.Spec.Name == name {
			return s, true, nil
		}
	}
	return swarm.Secret{}, false, nil
}
