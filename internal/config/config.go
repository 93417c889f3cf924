package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Node roles as reported by the provisioning layer.
const (
	RoleManager = "manager"
	RoleWorker  = "worker"
)

// SwarmPort is the fixed port managers listen on for cluster join traffic.
const SwarmPort = 2377

// Config is the root configuration for all swarmboot commands.
type Config struct {
	// Region is the AWS region hosting the state table and secret store.
	Region string `mapstructure:"region"`
	// ClusterID is the stable identifier keying the shared cluster
	// state record. Chosen once at first initialization and passed to
	// every node of the cluster.
	ClusterID string `mapstructure:"cluster_id"`
	// StateTable is the DynamoDB table holding the shared cluster state
	// record.
	StateTable string `mapstructure:"state_table"`
	// SecretID is the Secrets Manager secret holding the per-environment
	// JSON document the certificate password is merged into.
	SecretID string `mapstructure:"secret_id"`
	// NodeRole is this node's role, RoleManager or RoleWorker.
	NodeRole string `mapstructure:"node_role"`

	// AccessKey and SecretKey optionally pin static AWS credentials.
	// When empty the default credential chain (instance profile) is used.
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	Certificates CertConfig `mapstructure:"certificates"`

	// Services lists the Swarm services force-reloaded after every
	// certificate rotation.
	Services []string `mapstructure:"services"`

	// ArchiveBucket optionally names an S3 bucket the password-protected
	// export bundle is archived to after each rotation.
	ArchiveBucket string `mapstructure:"archive_bucket"`

	// Path is the file the configuration was loaded from, if any.
	// Set by Load, not from the file itself.
	Path string `mapstructure:"-"`
}

// CertConfig holds certificate lifecycle settings.
type CertConfig struct {
	// Domain is the subject name certificates are bound to.
	Domain string `mapstructure:"domain"`
	// Dir is the directory certificate artifacts are written to.
	Dir string `mapstructure:"dir"`
	// ValidityDays is the validity period of freshly issued certificates.
	ValidityDays int `mapstructure:"validity_days"`
	// RenewalThresholdDays triggers proactive renewal when any artifact
	// has fewer days of validity remaining.
	RenewalThresholdDays int `mapstructure:"renewal_threshold_days"`
	// KeyBits is the RSA key size.
	KeyBits int `mapstructure:"key_bits"`
	// PasswordLength is the length of the generated bundle password.
	PasswordLength int `mapstructure:"password_length"`
	// PasswordKey is the key the password is stored under inside the
	// secret store document.
	PasswordKey string `mapstructure:"password_key"`
	// SecretPrefix prefixes the Swarm secret names, one per artifact.
	SecretPrefix string `mapstructure:"secret_prefix"`
	// LockFile guards against overlapping rotation runs on one host.
	LockFile string `mapstructure:"lock_file"`
	// StatusFile records the outcome of the last rotation run.
	StatusFile string `mapstructure:"status_file"`
}

// applyDefaults fills in defaults for everything the file and environment
// left unset.
func (c *Config) applyDefaults() {
	if c.NodeRole == "" {
		c.NodeRole = RoleWorker
	}
	if c.Certificates.Dir == "" {
		c.Certificates.Dir = "/etc/swarmboot/certs"
	}
	if c.Certificates.ValidityDays == 0 {
		c.Certificates.ValidityDays = 365
	}
	if c.Certificates.RenewalThresholdDays == 0 {
		c.Certificates.RenewalThresholdDays = 30
	}
	if c.Certificates.KeyBits == 0 {
		c.Certificates.KeyBits = 2048
	}
	if c.Certificates.PasswordLength == 0 {
		c.Certificates.PasswordLength = 32
	}
	if c.Certificates.PasswordKey == "" {
		c.Certificates.PasswordKey = "certificatePassword"
	}
	if c.Certificates.SecretPrefix == "" && c.ClusterID != "" {
		c.Certificates.SecretPrefix = c.ClusterID + "-cert"
	}
	if c.Certificates.LockFile == "" {
		c.Certificates.LockFile = filepath.Join(c.Certificates.Dir, ".rotate.lock")
	}
	if c.Certificates.StatusFile == "" {
		c.Certificates.StatusFile = filepath.Join(c.Certificates.Dir, "status.json")
	}
}

// JoinStatusFile is where the join daemon records its last outcome,
// alongside the certificate status file.
func (c *Config) JoinStatusFile() string {
	return filepath.Join(filepath.Dir(c.Certificates.StatusFile), "join-status.json")
}

// Validate checks that every required input is present and well formed.
// A failed validation is a configuration error: fatal, never retried.
func (c *Config) Validate() error {
	var missing []string
	if c.Region == "" {
		missing = append(missing, "region")
	}
	if c.ClusterID == "" {
		missing = append(missing, "cluster_id")
	}
	if c.StateTable == "" {
		missing = append(missing, "state_table")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.NodeRole != RoleManager && c.NodeRole != RoleWorker {
		return fmt.Errorf("invalid node_role %q: must be %q or %q", c.NodeRole, RoleManager, RoleWorker)
	}

	if c.Certificates.RenewalThresholdDays >= c.Certificates.ValidityDays {
		return fmt.Errorf("renewal_threshold_days (%d) must be below validity_days (%d)",
			c.Certificates.RenewalThresholdDays, c.Certificates.ValidityDays)
	}

	return nil
}

// ValidateCertificates additionally checks the inputs only the rotation
// command needs.
func (c *Config) ValidateCertificates() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var missing []string
	if c.SecretID == "" {
		missing = append(missing, "secret_id")
	}
	if c.Certificates.Domain == "" {
		missing = append(missing, "certificates.domain")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
