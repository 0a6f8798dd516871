package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erisahalipaj/userauth/internal/flagx"
	"github.com/erisahalipaj/userauth/internal/timex"
)

// yamlConfig is an intermediate DTO for the YAML file. Pointer fields
// distinguish "absent" from "zero", so the file only overrides what it sets.
// Durations accept both "15m" strings and integer nanoseconds via
// timex.Duration.
type yamlConfig struct {
	Addr          *string         `yaml:"addr"`
	DatabaseDSN   *string         `yaml:"database_dsn"`
	SecretKey     *string         `yaml:"secret_key"`
	TokenValidity *timex.Duration `yaml:"token_validity"`
	HashTimeCost  *uint32         `yaml:"hash_time_cost"`
	HashMemoryKiB *uint32         `yaml:"hash_memory_kib"`
	HashThreads   *uint8          `yaml:"hash_threads"`
}

// parseYaml overlays values from the YAML file named by the -c/-config flag,
// if any, onto the Config.
func parseYaml(config *Config) error {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &yamlConfig{}
	if err := yaml.Unmarshal(file, c); err != nil {
		return err
	}

	if c.Addr != nil {
		config.Addr = *c.Addr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenValidity != nil {
		config.TokenValidity = time.Duration(c.TokenValidity.Duration)
	}
	if c.HashTimeCost != nil {
		config.HashTimeCost = *c.HashTimeCost
	}
	if c.HashMemoryKiB != nil {
		config.HashMemoryKiB = *c.HashMemoryKiB
	}
	if c.HashThreads != nil {
		config.HashThreads = *c.HashThreads
	}

	return nil
}
