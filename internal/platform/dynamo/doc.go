// Package dynamo provides the shared cluster state record store backed
// by a DynamoDB table.
//
// The table holds one record per cluster, keyed by cluster id, with the
// manager rendezvous address and the worker/manager join credentials.
// Exactly one manager publishes the record when it wins initialization;
// every other node polls it until the cluster becomes joinable.
package dynamo
