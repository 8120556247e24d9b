/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package metrics instruments node, player, and cluster state for
// Prometheus scraping. A nil *Registry is safe to call methods on — every
// method is a no-op in that case, so components can hold an optional
// metrics dependency without a separate "enabled" flag.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles the Prometheus collectors this module exposes.
type Registry struct {
	nodeState          *prometheus.GaugeVec
	nodeReconnects     *prometheus.CounterVec
	nodeRestRequests   *prometheus.CounterVec
	nodePlayers        *prometheus.GaugeVec
	nodePlayingPlayers *prometheus.GaugeVec

	playerPlaying   *prometheus.GaugeVec
	playerQueueSize *prometheus.GaugeVec

	clusterNodes   *prometheus.GaugeVec
	clusterPlayers prometheus.Gauge
}

// New registers and returns a Registry against reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics, or a fresh
// prometheus.NewRegistry() in tests to avoid duplicate-registration
// panics across test runs.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		nodeState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rias_node_state",
			Help: "Node connection state (0=Disconnected,1=Connecting,2=Connected,3=Reconnecting).",
		}, []string{"node_id"}),
		nodeReconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rias_node_reconnects_total",
			Help: "Total reconnect attempts made by a node.",
		}, []string{"node_id"}),
		nodeRestRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rias_node_rest_requests_total",
			Help: "Total REST requests issued to a node, by operation and outcome status.",
		}, []string{"node_id", "op", "status"}),
		nodePlayers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rias_node_players",
			Help: "Players reported by a node's last stats frame.",
		}, []string{"node_id"}),
		nodePlayingPlayers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rias_node_playing_players",
			Help: "Playing players reported by a node's last stats frame.",
		}, []string{"node_id"}),
		playerPlaying: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rias_player_playing",
			Help: "1 if the guild's player is currently playing, else 0.",
		}, []string{"guild_id"}),
		playerQueueSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rias_player_queue_size",
			Help: "Number of tracks queued (excluding current) for a guild.",
		}, []string{"guild_id"}),
		clusterNodes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rias_cluster_nodes",
			Help: "Number of registered nodes, by connection state.",
		}, []string{"state"}),
		clusterPlayers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rias_cluster_players",
			Help: "Total registered players across the cluster.",
		}),
	}
}

// SetNodeState records a node's numeric connection state.
func (r *Registry) SetNodeState(nodeID string, state int) {
	if r == nil {
		return
	}
	r.nodeState.WithLabelValues(nodeID).Set(float64(state))
}

// IncReconnects increments a node's reconnect counter.
func (r *Registry) IncReconnects(nodeID string) {
	if r == nil {
		return
	}
	r.nodeReconnects.WithLabelValues(nodeID).Inc()
}

// ObserveRestRequest records one REST call's operation and outcome.
func (r *Registry) ObserveRestRequest(nodeID, op, status string) {
	if r == nil {
		return
	}
	r.nodeRestRequests.WithLabelValues(nodeID, op, status).Inc()
}

// SetNodeStats updates the gauges fed by a node's last stats frame.
func (r *Registry) SetNodeStats(nodeID string, players, playingPlayers int) {
	if r == nil {
		return
	}
	r.nodePlayers.WithLabelValues(nodeID).Set(float64(players))
	r.nodePlayingPlayers.WithLabelValues(nodeID).Set(float64(playingPlayers))
}

// SetPlayerPlaying records whether a guild's player is currently playing.
func (r *Registry) SetPlayerPlaying(guildID string, playing bool) {
	if r == nil {
		return
	}
	v := 0.0
	if playing {
		v = 1.0
	}
	r.playerPlaying.WithLabelValues(guildID).Set(v)
}

// SetPlayerQueueSize records a guild's queued-track count.
func (r *Registry) SetPlayerQueueSize(guildID string, size int) {
	if r == nil {
		return
	}
	r.playerQueueSize.WithLabelValues(guildID).Set(float64(size))
}

// SetClusterNodes replaces the per-state node-count gauge with counts,
// reporting zero for any state not present in counts so stale series
// don't linger at their last non-zero value.
func (r *Registry) SetClusterNodes(counts map[string]int) {
	if r == nil {
		return
	}
	for _, state := range []string{"disconnected", "connecting", "connected", "reconnecting"} {
		r.clusterNodes.WithLabelValues(state).Set(float64(counts[state]))
	}
}

// SetClusterPlayers records the cluster's total registered player count.
func (r *Registry) SetClusterPlayers(n int) {
	if r == nil {
		return
	}
	r.clusterPlayers.Set(float64(n))
}
