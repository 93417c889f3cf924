package dynamo

import "time"

// Record is the shared cluster state record: the rendezvous point every
// node of a cluster converges on.
type Record struct {
	// ClusterID is the table's primary key.
	ClusterID string `dynamodbav:"ClusterId"`
	// ManagerAddr is the host:port new nodes contact to join.
	ManagerAddr string `dynamodbav:"ManagerAddr"`
	// WorkerToken authorizes joining as a worker.
	WorkerToken string `dynamodbav:"WorkerToken"`
	// ManagerToken authorizes joining as a manager.
	ManagerToken string `dynamodbav:"ManagerToken"`
	// PublishedAt records when the initializing manager wrote the record.
	PublishedAt time.Time `dynamodbav:"PublishedAt,unixtime"`
}

// Joinable reports whether the record carries enough information for a
// node of the given role to attempt a join. The initializer may still be
// converging, so callers re-read the record until this holds.
func (r *Record) Joinable(role string) bool {
	if r == nil || r.ManagerAddr == "" {
		return false
	}
	return r.TokenForRole(role) != ""
}

// TokenForRole returns the join credential matching a node role.
// Unknown roles get no credential.
func (r *Record) TokenForRole(role string) string {
	switch role {
	case "manager":
		return r.ManagerToken
	case "worker":
		return r.WorkerToken
	}
	return ""
}
