package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration from an optional YAML file plus the
// SWARMBOOT_* environment variables the provisioning layer launches
// nodes with. Environment values override file values. An empty path
// means environment-only configuration; a non-empty path must exist.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var rawConfig map[string]interface{}
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}

		if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg.Path = path
	return &cfg, nil
}

// applyEnvOverrides copies the node-provisioning environment inputs over
// any file-supplied values.
func applyEnvOverrides(cfg *Config) {
	setIfPresent("SWARMBOOT_REGION", &cfg.Region)
	setIfPresent("SWARMBOOT_CLUSTER_ID", &cfg.ClusterID)
	setIfPresent("SWARMBOOT_STATE_TABLE", &cfg.StateTable)
	setIfPresent("SWARMBOOT_SECRET_ID", &cfg.SecretID)
	setIfPresent("SWARMBOOT_NODE_ROLE", &cfg.NodeRole)
	setIfPresent("SWARMBOOT_CERT_DOMAIN", &cfg.Certificates.Domain)
	setIfPresent("SWARMBOOT_ARCHIVE_BUCKET", &cfg.ArchiveBucket)
	setIfPresent("AWS_ACCESS_KEY_ID", &cfg.AccessKey)
	setIfPresent("AWS_SECRET_ACCESS_KEY", &cfg.SecretKey)

	if v := os.Getenv("SWARMBOOT_SERVICES"); v != "" {
		cfg.Services = cfg.Services[:0]
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Services = append(cfg.Services, s)
			}
		}
	}
}

func setIfPresent(envVar string, target *string) {
	if v := os.Getenv(envVar); v != "" {
		*target = v
	}
}
