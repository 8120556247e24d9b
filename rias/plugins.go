/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rias

import (
	"context"
	"sync"

	"github.com/friendsincode/rias/node"
)

// GetInfo fans GetInfo out to every connected Node concurrently,
// best-effort: a Node's failure is logged and omitted from the result
// rather than propagated.
func (c *Cluster) GetInfo(ctx context.Context, force bool) map[string]*node.InfoResponse {
	nodes := c.connectedNodes()
	result := make(map[string]*node.InfoResponse, len(nodes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, n := range nodes {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := n.GetInfo(ctx, force)
			if err != nil {
				c.logger.Warn().Err(err).Str("node", n.ID()).Msg("cluster get_info failed")
				return
			}
			mu.Lock()
			result[n.ID()] = info
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

// GetAllPlugins returns every connected Node's plugin list, keyed by
// node id.
func (c *Cluster) GetAllPlugins(ctx context.Context, force bool) map[string][]node.Plugin {
	infos := c.GetInfo(ctx, force)
	result := make(map[string][]node.Plugin, len(infos))
	for id, info := range infos {
		result[id] = info.Plugins
	}
	return result
}

// GetUniquePlugins deduplicates every connected Node's plugin list by
// name, first node in iteration order winning.
func (c *Cluster) GetUniquePlugins(ctx context.Context, force bool) []node.Plugin {
	seen := make(map[string]struct{})
	unique := make([]node.Plugin, 0)
	for _, plugins := range c.GetAllPlugins(ctx, force) {
		for _, p := range plugins {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			unique = append(unique, p)
		}
	}
	return unique
}

// HasPlugin reports whether any connected Node reports name installed.
func (c *Cluster) HasPlugin(ctx context.Context, name string) bool {
	return len(c.GetNodesWithPlugin(ctx, name)) > 0
}

// GetNodesWithPlugin returns every connected Node that has name
// installed.
func (c *Cluster) GetNodesWithPlugin(ctx context.Context, name string) []*node.Node {
	nodes := c.connectedNodes()
	matched := make([]*node.Node, 0, len(nodes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, n := range nodes {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := n.HasPlugin(ctx, name)
			if err != nil {
				c.logger.Warn().Err(err).Str("node", n.ID()).Msg("cluster has_plugin failed")
				return
			}
			if ok {
				mu.Lock()
				matched = append(matched, n)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return matched
}

// PluginRequest finds the Nodes carrying name, load-balances among them
// using the cluster's selection strategy, and delegates the request.
func (c *Cluster) PluginRequest(ctx context.Context, name, endpoint, method string, body any) (any, error) {
	candidates := c.GetNodesWithPlugin(ctx, name)
	n, err := selectNode(candidates, c.cfg.SelectionStrategy, "")
	if err != nil {
		return nil, err
	}
	return n.PluginRequest(ctx, name, endpoint, method, body)
}

func (c *Cluster) connectedNodes() []*node.Node {
	nodes := c.Nodes()
	connected := make([]*node.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.State() == node.Connected && n.IsReady() {
			connected = append(connected, n)
		}
	}
	return connected
}
