package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays values from the environment. Only variables that are
// actually set override earlier sources.
func parseEnv(config *Config) error {
	return env.Parse(config)
}
