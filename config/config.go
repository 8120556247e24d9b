/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package config loads process-environment configuration for the
// riasctl demo CLI and for embedders who prefer env-driven bootstrap
// over constructing rias.ClusterConfig by hand.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/rias/node"
	"github.com/friendsincode/rias/rias"
)

// NodeSpec is one audio node entry, read either from a YAML file named
// by RIAS_NODES_FILE or from the single-node RIAS_NODE_* env vars.
type NodeSpec struct {
	ID                   string        `json:"id" yaml:"id"`
	Host                 string        `json:"host" yaml:"host"`
	Port                 int           `json:"port" yaml:"port"`
	Secure               bool          `json:"secure" yaml:"secure"`
	Password             string        `json:"password" yaml:"password"`
	Region               string        `json:"region" yaml:"region"`
	Priority             int           `json:"priority" yaml:"priority"`
	ResumeKey            string        `json:"resumeKey" yaml:"resumeKey"`
	ResumeTimeout        time.Duration `json:"-" yaml:"-"`
	ResumeTimeoutSeconds int           `json:"resumeTimeoutSeconds" yaml:"resumeTimeoutSeconds"`
}

// Config covers process-level configuration read from environment
// variables.
type Config struct {
	Environment       string
	ClientID          string
	SelectionStrategy string
	DefaultRegion     string
	MetricsBind       string
	TracingEnabled    bool
	NodesFile         string
	Nodes             []NodeSpec
}

// Load reads environment variables, applies defaults, and validates the
// result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:       getEnv("RIAS_ENV", "development"),
		ClientID:          getEnv("RIAS_CLIENT_ID", ""),
		SelectionStrategy: getEnv("RIAS_SELECTION_STRATEGY", "loadbalanced"),
		DefaultRegion:     getEnv("RIAS_DEFAULT_REGION", ""),
		MetricsBind:       getEnv("RIAS_METRICS_BIND", "127.0.0.1:9091"),
		TracingEnabled:    getEnvBool("RIAS_TRACING_ENABLED", false),
		NodesFile:         getEnv("RIAS_NODES_FILE", ""),
	}

	if cfg.ClientID == "" {
		return nil, fmt.Errorf("RIAS_CLIENT_ID must be provided")
	}

	nodes, err := loadNodes(cfg.NodesFile)
	if err != nil {
		return nil, err
	}
	cfg.Nodes = nodes

	if len(cfg.Nodes) == 0 {
		return nil, fmt.Errorf("no audio nodes configured: set RIAS_NODES_FILE, or RIAS_NODE_HOST/RIAS_NODE_PORT/RIAS_NODE_PASSWORD")
	}

	for i := range cfg.Nodes {
		cfg.Nodes[i].ResumeTimeout = time.Duration(cfg.Nodes[i].ResumeTimeoutSeconds) * time.Second
	}

	return cfg, nil
}

// loadNodes reads the node list from nodesFile if set, else falls back
// to the single-node RIAS_NODE_* shorthand env vars.
func loadNodes(nodesFile string) ([]NodeSpec, error) {
	if nodesFile != "" {
		data, err := os.ReadFile(nodesFile)
		if err != nil {
			return nil, fmt.Errorf("reading RIAS_NODES_FILE: %w", err)
		}
		var specs []NodeSpec
		if err := yaml.Unmarshal(data, &specs); err != nil {
			return nil, fmt.Errorf("parsing RIAS_NODES_FILE: %w", err)
		}
		return specs, nil
	}

	host := getEnv("RIAS_NODE_HOST", "")
	if host == "" {
		return nil, nil
	}
	return []NodeSpec{{
		ID:       getEnv("RIAS_NODE_ID", "default"),
		Host:     host,
		Port:     getEnvInt("RIAS_NODE_PORT", 2333),
		Secure:   getEnvBool("RIAS_NODE_SECURE", false),
		Password: getEnv("RIAS_NODE_PASSWORD", ""),
		Region:   getEnv("RIAS_NODE_REGION", ""),
		Priority: getEnvInt("RIAS_NODE_PRIORITY", 0),
	}}, nil
}

// selectionStrategy parses the configured strategy name.
func (c *Config) selectionStrategy() (rias.SelectionStrategy, error) {
	switch strings.ToLower(c.SelectionStrategy) {
	case "loadbalanced", "":
		return rias.LoadBalanced, nil
	case "regional":
		return rias.Regional, nil
	case "leastplayers":
		return rias.LeastPlayers, nil
	case "leastload":
		return rias.LeastLoad, nil
	case "priority":
		return rias.Priority, nil
	default:
		return 0, fmt.Errorf("unknown RIAS_SELECTION_STRATEGY %q", c.SelectionStrategy)
	}
}

// ToClusterConfig converts the loaded Config 1:1 into a
// rias.ClusterConfig plus its node list, wiring send as the outbound
// voice-join callback.
func (c *Config) ToClusterConfig(send rias.SendFunc) (rias.ClusterConfig, error) {
	strategy, err := c.selectionStrategy()
	if err != nil {
		return rias.ClusterConfig{}, err
	}

	nodeConfigs := make([]node.Config, len(c.Nodes))
	for i, spec := range c.Nodes {
		nodeConfigs[i] = node.Config{
			ID:            spec.ID,
			Host:          spec.Host,
			Port:          spec.Port,
			Secure:        spec.Secure,
			Password:      spec.Password,
			Region:        spec.Region,
			Priority:      spec.Priority,
			ResumeKey:     spec.ResumeKey,
			ResumeTimeout: spec.ResumeTimeout,
			Tracing:       c.TracingEnabled,
		}
	}

	return rias.ClusterConfig{
		ClientID:          c.ClientID,
		Nodes:             nodeConfigs,
		SelectionStrategy: strategy,
		Send:              send,
		Tracing:           c.TracingEnabled,
	}, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		v := strings.ToLower(strings.TrimSpace(val))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}
