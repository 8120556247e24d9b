/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rias

import (
	"context"
	"errors"
	"testing"

	"github.com/friendsincode/rias/lavalink"
)

func TestPluginAPIWithNoConnectedNodes(t *testing.T) {
	c := newTestCluster(t)
	ctx := context.Background()

	if infos := c.GetInfo(ctx, false); len(infos) != 0 {
		t.Fatalf("GetInfo with no connected nodes = %v, want empty", infos)
	}
	if plugins := c.GetAllPlugins(ctx, false); len(plugins) != 0 {
		t.Fatalf("GetAllPlugins with no connected nodes = %v, want empty", plugins)
	}
	if unique := c.GetUniquePlugins(ctx, false); len(unique) != 0 {
		t.Fatalf("GetUniquePlugins with no connected nodes = %v, want empty", unique)
	}
	if c.HasPlugin(ctx, "some-plugin") {
		t.Fatal("HasPlugin with no connected nodes should be false")
	}
	if nodes := c.GetNodesWithPlugin(ctx, "some-plugin"); len(nodes) != 0 {
		t.Fatalf("GetNodesWithPlugin with no connected nodes = %v, want empty", nodes)
	}

	_, err := c.PluginRequest(ctx, "some-plugin", "/endpoint", "GET", nil)
	if !errors.Is(err, lavalink.ErrNoAvailableNodes) {
		t.Fatalf("PluginRequest with no candidate nodes = %v, want ErrNoAvailableNodes", err)
	}
}
