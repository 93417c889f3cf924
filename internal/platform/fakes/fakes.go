// Package fakes provides in-memory fakes for the platform interfaces so
// coordination logic can be tested without a real cluster, record store
// or secret store.
package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/imamik/swarmboot/internal/platform/dynamo"
	"github.com/imamik/swarmboot/internal/platform/swarmrt"
)

// JoinCall records one join attempt made through FakeRuntime.
type JoinCall struct {
	RemoteAddr string
	Token      string
}

// FakeRuntime simulates the local container runtime.
type FakeRuntime struct {
	mu sync.Mutex

	// State is the membership state reported by LocalState.
	State swarmrt.State
	// StateErr makes LocalState fail.
	StateErr error
	// InitErr makes InitCluster fail.
	InitErr error
	// JoinErr makes every JoinCluster call fail.
	JoinErr error

	// WorkerToken and ManagerToken are returned by JoinTokens.
	WorkerToken  string
	ManagerToken string

	// Secrets is the current secret set, name to content.
	Secrets map[string][]byte
	// CreateSecretErr makes CreateSecret fail.
	CreateSecretErr error
	// RemoveSecretErr makes RemoveSecret fail.
	RemoveSecretErr error
	// ReloadErr makes ForceServiceReload fail for every service.
	ReloadErr error

	// InitCalls counts InitCluster invocations.
	InitCalls int
	// JoinCalls records every join attempt.
	JoinCalls []JoinCall
	// Removed records secret names passed to RemoveSecret.
	Removed []string
	// Reloaded records service names passed to ForceServiceReload.
	Reloaded []string
}

var _ swarmrt.Runtime = (*FakeRuntime)(nil)

// NewFakeRuntime returns a runtime fake reporting the given state.
func NewFakeRuntime(state swarmrt.State) *FakeRuntime {
	return &FakeRuntime{
		State:   state,
		Secrets: make(map[string][]byte),
	}
}

func (f *FakeRuntime) LocalState(_ context.Context) (swarmrt.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StateErr != nil {
		return swarmrt.NotInCluster, f.StateErr
	}
	return f.State, nil
}

// SetState changes the reported membership state.
func (f *FakeRuntime) SetState(state swarmrt.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.State = state
}

// SetJoinErr changes the injected join failure; tests use it to simulate
// a manager that becomes reachable mid-run.
func (f *FakeRuntime) SetJoinErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.JoinErr = err
}

func (f *FakeRuntime) InitCluster(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InitCalls++
	if f.InitErr != nil {
		return f.InitErr
	}
	f.State = swarmrt.Leader
	return nil
}

func (f *FakeRuntime) JoinCluster(_ context.Context, remoteAddr, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.JoinCalls = append(f.JoinCalls, JoinCall{RemoteAddr: remoteAddr, Token: token})
	if f.JoinErr != nil {
		return f.JoinErr
	}
	f.State = swarmrt.Member
	return nil
}

func (f *FakeRuntime) JoinTokens(_ context.Context) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.WorkerToken, f.ManagerToken, nil
}

func (f *FakeRuntime) RemoveSecret(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveSecretErr != nil {
		return false, f.RemoveSecretErr
	}
	f.Removed = append(f.Removed, name)
	if _, ok := f.Secrets[name]; !ok {
		return false, nil
	}
	delete(f.Secrets, name)
	return true, nil
}

func (f *FakeRuntime) CreateSecret(_ context.Context, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateSecretErr != nil {
		return f.CreateSecretErr
	}
	if _, ok := f.Secrets[name]; ok {
		return fmt.Errorf("secret %s already exists", name)
	}
	f.Secrets[name] = append([]byte(nil), data...)
	return nil
}

func (f *FakeRuntime) ForceServiceReload(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReloadErr != nil {
		return f.ReloadErr
	}
	f.Reloaded = append(f.Reloaded, name)
	return nil
}

// FakeStateStore simulates the shared cluster state record store with
// the same create-if-absent semantics as the DynamoDB client.
type FakeStateStore struct {
	mu sync.Mutex

	// Records holds the published records by cluster id.
	Records map[string]dynamo.Record
	// PublishErr makes Publish fail.
	PublishErr error
	// ReadErr makes Read fail.
	ReadErr error

	// Reads counts Read invocations.
	Reads int
}

// NewFakeStateStore returns an empty record store fake.
func NewFakeStateStore() *FakeStateStore {
	return &FakeStateStore{Records: make(map[string]dynamo.Record)}
}

func (f *FakeStateStore) Publish(_ context.Context, rec dynamo.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	if existing, ok := f.Records[rec.ClusterID]; ok && existing.ManagerAddr != rec.ManagerAddr {
		return dynamo.ErrAlreadyInitialized
	}
	f.Records[rec.ClusterID] = rec
	return nil
}

func (f *FakeStateStore) Read(_ context.Context, clusterID string) (*dynamo.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	rec, ok := f.Records[clusterID]
	if !ok {
		return nil, nil
	}
	copied := rec
	return &copied, nil
}

// Set publishes a record directly, bypassing the conditional check.
// Tests use it to simulate a peer initializer converging mid-run.
func (f *FakeStateStore) Set(rec dynamo.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Records[rec.ClusterID] = rec
}

// SetReadErr changes the injected read failure.
func (f *FakeStateStore) SetReadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadErr = err
}

// FakeSecretStore simulates the external secret store document.
type FakeSecretStore struct {
	mu sync.Mutex

	// Docs holds the documents by secret id.
	Docs map[string]map[string]string
	// MergeErr makes MergeKey fail.
	MergeErr error

	// MergeCalls counts MergeKey invocations.
	MergeCalls int
}

// NewFakeSecretStore returns an empty secret store fake.
func NewFakeSecretStore() *FakeSecretStore {
	return &FakeSecretStore{Docs: make(map[string]map[string]string)}
}

func (f *FakeSecretStore) MergeKey(_ context.Context, secretID, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MergeCalls++
	if f.MergeErr != nil {
		return f.MergeErr
	}
	doc, ok := f.Docs[secretID]
	if !ok {
		doc = make(map[string]string)
		f.Docs[secretID] = doc
	}
	doc[key] = value
	return nil
}

// FakeArchiver simulates the S3 bundle archive.
type FakeArchiver struct {
	mu sync.Mutex

	// Objects holds uploaded objects by "bucket/key".
	Objects map[string][]byte
	// UploadErr makes Upload fail.
	UploadErr error
}

// NewFakeArchiver returns an empty archive fake.
func NewFakeArchiver() *FakeArchiver {
	return &FakeArchiver{Objects: make(map[string][]byte)}
}

func (f *FakeArchiver) Upload(_ context.Context, bucket, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return f.UploadErr
	}
	f.Objects[bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}
