package swarmrt

// State is this node's cluster membership as observed from the container
// runtime. It is derived on every call, never persisted.
type State int

const (
	// NotInCluster means the runtime reports no swarm membership.
	NotInCluster State = iota
	// Joining means a join is in flight but not yet acknowledged.
	Joining
	// Member means the node is an active worker.
	Member
	// ManagerNotLeader means the node is an active manager that does not
	// currently hold leadership.
	ManagerNotLeader
	// Leader means the node is the active manager currently holding
	// leadership.
	Leader
)

// String returns the state name for logging and status files.
func (s State) String() string {
	switch s {
	case NotInCluster:
		return "not-in-cluster"
	case Joining:
		return "joining"
	case Member:
		return "member"
	case ManagerNotLeader:
		return "manager-not-leader"
	case Leader:
		return "leader"
	}
	return "unknown"
}

// InCluster reports whether the node is already attached to a cluster in
// any role. Once this holds, the join daemon's runs are no-ops.
func (s State) InCluster() bool {
	switch s {
	case Member, ManagerNotLeader, Leader:
		return true
	}
	return false
}
