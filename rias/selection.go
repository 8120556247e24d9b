/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rias

import (
	"sort"

	"github.com/friendsincode/rias/lavalink"
	"github.com/friendsincode/rias/node"
)

// SelectionStrategy picks one node among the eligible set at Player
// creation time.
type SelectionStrategy int

const (
	LoadBalanced SelectionStrategy = iota
	Regional
	LeastPlayers
	LeastLoad
	Priority
)

func eligibleNodes(nodes []*node.Node) []*node.Node {
	eligible := make([]*node.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.State() == node.Connected && n.IsReady() {
			eligible = append(eligible, n)
		}
	}
	return eligible
}

// candidateKey is the sortable view of a Node the pure ranking
// algorithm needs; separated from *node.Node so the ranking itself is
// testable without a live connection.
type candidateKey struct {
	index    int
	region   string
	priority int
	stats    lavalink.Stats
}

// rankCandidates implements the five node-selection strategies and
// returns the winning candidate's original index. candidates
// is assumed non-empty; ties are broken by input order via
// sort.SliceStable.
func rankCandidates(candidates []candidateKey, strategy SelectionStrategy, region string) int {
	if len(candidates) == 1 {
		return candidates[0].index
	}

	if strategy == Regional {
		regional := make([]candidateKey, 0, len(candidates))
		for _, c := range candidates {
			if c.region == region {
				regional = append(regional, c)
			}
		}
		if len(regional) > 0 {
			candidates = regional
			if len(candidates) == 1 {
				return candidates[0].index
			}
		} else {
			strategy = LoadBalanced
		}
	}

	key := func(c candidateKey) float64 {
		switch strategy {
		case LeastPlayers:
			return float64(c.stats.Players)
		case LeastLoad:
			return c.stats.CPU.LavalinkLoad
		case Priority:
			return float64(c.priority)
		default: // LoadBalanced
			return c.stats.CPU.LavalinkLoad * (1 + float64(c.stats.Players)*0.1)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return key(candidates[i]) < key(candidates[j])
	})
	return candidates[0].index
}

// selectNode filters nodes to the eligible set (connected and ready)
// and, if non-empty, ranks it per strategy.
func selectNode(nodes []*node.Node, strategy SelectionStrategy, region string) (*node.Node, error) {
	eligible := eligibleNodes(nodes)
	if len(eligible) == 0 {
		return nil, lavalink.ErrNoAvailableNodes
	}

	candidates := make([]candidateKey, len(eligible))
	for i, n := range eligible {
		stats, _ := n.Stats()
		candidates[i] = candidateKey{index: i, region: n.Region(), priority: n.Priority(), stats: stats}
	}

	return eligible[rankCandidates(candidates, strategy, region)], nil
}
