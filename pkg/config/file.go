package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML options file on top of Default(). Keys not present keep
// their default; a name in the file means "wait for that process".
//
//	name: nginx
//	cpu: 80
//	dumps: 3
//	seconds: 5
//	sample_interval: 500ms
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg.WaitForName = cfg.ProcessName != ""
	return cfg, nil
}
