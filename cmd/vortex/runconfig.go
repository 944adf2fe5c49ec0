package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// runFileConfig holds the subset of run flags that can be preset from a
// YAML file via --config. Flags explicitly passed on the command line
// always override values loaded here.
type runFileConfig struct {
	CPU          *float64 `yaml:"cpu"`
	MemoryMB     *uint64  `yaml:"memory"`
	Monitor      *bool    `yaml:"monitor"`
	NoNamespaces *bool    `yaml:"no_namespaces"`
	Hostname     *string  `yaml:"hostname"`
}

func loadRunFileConfig(path string) (runFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runFileConfig{}, err
	}
	var cfg runFileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return runFileConfig{}, err
	}
	return cfg, nil
}
