// Package config defines the swarmboot configuration model.
//
// Nodes are launched by the provisioning layer with a fixed set of
// environment inputs (region, cluster id, state table, secret id, node
// role). Those inputs always win; an optional YAML file supplies the
// slower-moving certificate and service settings.
package config
