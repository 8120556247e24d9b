/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import "testing"

func TestLoadRequiresClientID(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("Load without RIAS_CLIENT_ID should error")
	}
}

func TestLoadSingleNodeShorthand(t *testing.T) {
	t.Setenv("RIAS_CLIENT_ID", "111111111111111111")
	t.Setenv("RIAS_NODE_HOST", "localhost")
	t.Setenv("RIAS_NODE_PORT", "2333")
	t.Setenv("RIAS_NODE_PASSWORD", "youshallnotpass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Nodes) != 1 {
		t.Fatalf("Nodes = %d, want 1", len(cfg.Nodes))
	}
	if cfg.Nodes[0].Host != "localhost" || cfg.Nodes[0].Port != 2333 {
		t.Fatalf("unexpected node spec: %+v", cfg.Nodes[0])
	}
}

func TestLoadRequiresAtLeastOneNode(t *testing.T) {
	t.Setenv("RIAS_CLIENT_ID", "111111111111111111")
	if _, err := Load(); err == nil {
		t.Fatal("Load with no node configuration should error")
	}
}

func TestToClusterConfigRejectsUnknownStrategy(t *testing.T) {
	cfg := &Config{
		ClientID:          "111111111111111111",
		SelectionStrategy: "bogus",
		Nodes:             []NodeSpec{{ID: "n1", Host: "localhost", Port: 2333}},
	}
	if _, err := cfg.ToClusterConfig(func(string, map[string]any) error { return nil }); err == nil {
		t.Fatal("ToClusterConfig with an unknown strategy should error")
	}
}

func TestToClusterConfigConvertsNodes(t *testing.T) {
	cfg := &Config{
		ClientID:          "111111111111111111",
		SelectionStrategy: "leastload",
		Nodes:             []NodeSpec{{ID: "n1", Host: "localhost", Port: 2333, Password: "pw"}},
	}
	cc, err := cfg.ToClusterConfig(func(string, map[string]any) error { return nil })
	if err != nil {
		t.Fatalf("ToClusterConfig failed: %v", err)
	}
	if len(cc.Nodes) != 1 || cc.Nodes[0].Host != "localhost" {
		t.Fatalf("unexpected node config: %+v", cc.Nodes)
	}
	if cc.ClientID != "111111111111111111" {
		t.Fatalf("ClientID = %q, want 111111111111111111", cc.ClientID)
	}
}
