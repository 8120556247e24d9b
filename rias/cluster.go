/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rias

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/rias/events"
	"github.com/friendsincode/rias/lavalink"
	"github.com/friendsincode/rias/metrics"
	"github.com/friendsincode/rias/node"
	"github.com/friendsincode/rias/player"
)

const shutdownTimeout = 30 * time.Second

// RawPacket is one dispatch packet off the chat platform's gateway, in
// the shape the demux cares about: a type discriminator and an opaque
// payload.
type RawPacket struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

// Cluster owns the Node and Player registries, selects a Node per new
// Player, demultiplexes raw voice packets to the owning Player, and
// fans cluster-wide plugin queries out across every connected Node.
type Cluster struct {
	cfg     ClusterConfig
	logger  zerolog.Logger
	metrics *metrics.Registry
	bus     *events.Bus[Event]

	mu       sync.RWMutex
	nodes    map[string]*node.Node
	players  map[string]*player.Player
	shutdown bool
}

// New constructs a Cluster and its Nodes from cfg, but does not connect
// them — call Connect to open every Node's event stream.
func New(cfg ClusterConfig, logger zerolog.Logger, reg *metrics.Registry) (*Cluster, error) {
	if cfg.Send == nil {
		return nil, fmt.Errorf("rias: ClusterConfig.Send is required")
	}
	if len(cfg.Nodes) == 0 {
		return nil, fmt.Errorf("rias: ClusterConfig.Nodes must not be empty")
	}

	c := &Cluster{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		bus:     events.NewBus[Event](),
		nodes:   make(map[string]*node.Node, len(cfg.Nodes)),
		players: make(map[string]*player.Player),
	}

	for _, nc := range cfg.Nodes {
		nc.Tracing = nc.Tracing || cfg.Tracing
		n := node.New(nc, logger, reg)
		c.nodes[n.ID()] = n
		c.wireNode(n)
	}

	return c, nil
}

// On registers a handler for the named event, returning an unsubscribe
// function.
func (c *Cluster) On(name EventName, handler func(Event)) func() {
	return c.bus.On(string(name), handler)
}

// Connect opens every registered Node's event stream.
func (c *Cluster) Connect(ctx context.Context) {
	c.mu.RLock()
	nodes := make([]*node.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		nodes = append(nodes, n)
	}
	c.mu.RUnlock()

	for _, n := range nodes {
		n.Connect(ctx, c.cfg.ClientID)
	}
}

func (c *Cluster) wireNode(n *node.Node) {
	n.On(node.EventConnect, func(e node.Event) {
		c.bus.Emit(string(EventNodeConnect), Event{NodeID: e.NodeID})
		c.refreshClusterMetrics()
	})
	n.On(node.EventReady, func(e node.Event) {
		c.bus.Emit(string(EventNodeReady), Event{NodeID: e.NodeID})
	})
	n.On(node.EventDisconnect, func(e node.Event) {
		c.bus.Emit(string(EventNodeDisconnect), Event{NodeID: e.NodeID, Err: e.Err})
		c.refreshClusterMetrics()
	})
	n.On(node.EventError, func(e node.Event) {
		c.bus.Emit(string(EventError), Event{NodeID: e.NodeID, Err: e.Err})
	})
	n.On(node.EventPlayerEvent, func(e node.Event) {
		if e.Frame == nil {
			return
		}
		if p, ok := c.Get(e.Frame.GuildID); ok {
			p.HandleNodeEvent(context.Background(), *e.Frame)
		}
	})
	n.On(node.EventPlayerUpdate, func(e node.Event) {
		if e.PlayerUpdate == nil {
			return
		}
		if p, ok := c.Get(e.PlayerUpdate.GuildID); ok {
			p.HandlePlayerUpdate(e.PlayerUpdate.State)
		}
	})
}

// refreshClusterMetrics recomputes the per-state node gauge and the
// registered-player gauge from the current registry and reports them.
// Called from Create, Destroy, and the node connect/disconnect handlers;
// other node state changes do not trigger it.
func (c *Cluster) refreshClusterMetrics() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.refreshClusterMetricsLocked()
}

// refreshClusterMetricsLocked is refreshClusterMetrics for a caller that
// already holds c.mu (read or write).
func (c *Cluster) refreshClusterMetricsLocked() {
	if c.metrics == nil {
		return
	}
	counts := make(map[string]int, 4)
	for _, n := range c.nodes {
		counts[n.State().String()]++
	}
	c.metrics.SetClusterNodes(counts)
	c.metrics.SetClusterPlayers(len(c.players))
}

func (c *Cluster) wirePlayer(p *player.Player) {
	p.On(player.EventVoiceUpdate, func(e player.Event) {
		if e.VoiceJoin == nil {
			return
		}
		j := e.VoiceJoin
		payload := map[string]any{
			"op": 4,
			"d": map[string]any{
				"guild_id":   j.GuildID,
				"channel_id": j.ChannelID,
				"self_mute":  j.SelfMute,
				"self_deaf":  j.SelfDeaf,
			},
		}
		if err := c.cfg.Send(j.GuildID, payload); err != nil {
			c.bus.Emit(string(EventError), Event{GuildID: j.GuildID, Err: err})
		}
	})
}

// Create validates guildID, returns the existing Player if one is
// already registered, else selects a Node by the configured strategy
// (region is the hint used by the Regional strategy) and constructs a
// new Player bound to it.
func (c *Cluster) Create(guildID, region string) (*player.Player, error) {
	if !lavalink.ValidSnowflake(guildID) {
		return nil, lavalink.ErrInvalidChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return nil, fmt.Errorf("rias: cluster is shutting down")
	}
	if p, ok := c.players[guildID]; ok {
		return p, nil
	}

	nodes := make([]*node.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		nodes = append(nodes, n)
	}
	n, err := selectNode(nodes, c.cfg.SelectionStrategy, region)
	if err != nil {
		return nil, err
	}

	p := player.New(guildID, n, c.logger, c.metrics)
	c.wirePlayer(p)
	c.players[guildID] = p
	c.refreshClusterMetricsLocked()
	c.bus.Emit(string(EventPlayerCreate), Event{GuildID: guildID, NodeID: n.ID()})
	return p, nil
}

// Get returns the Player registered for guildID, if any.
func (c *Cluster) Get(guildID string) (*player.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.players[guildID]
	return p, ok
}

// Destroy destroys and deregisters the Player for guildID. It is a
// no-op if no Player is registered.
func (c *Cluster) Destroy(ctx context.Context, guildID string) {
	c.mu.Lock()
	p, ok := c.players[guildID]
	if ok {
		delete(c.players, guildID)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	c.refreshClusterMetrics()
	p.Destroy(ctx)
	c.bus.Emit(string(EventPlayerDestroy), Event{GuildID: guildID})
}

// DestroyAll destroys every registered Player.
func (c *Cluster) DestroyAll(ctx context.Context) {
	c.mu.RLock()
	guildIDs := make([]string, 0, len(c.players))
	for g := range c.players {
		guildIDs = append(guildIDs, g)
	}
	c.mu.RUnlock()

	for _, g := range guildIDs {
		c.Destroy(ctx, g)
	}
}

// Nodes returns every registered Node.
func (c *Cluster) Nodes() []*node.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes := make([]*node.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// HandleRaw demultiplexes one raw gateway packet: VOICE_SERVER_UPDATE
// and VOICE_STATE_UPDATE are routed to the owning Player by guild id;
// everything else, and packets for guilds with no registered Player,
// are dropped. Voice-state packets for a user other than the Cluster's
// own ClientID are also dropped.
func (c *Cluster) HandleRaw(ctx context.Context, raw RawPacket) error {
	switch raw.Type {
	case "VOICE_SERVER_UPDATE":
		var payload lavalink.VoiceServerPayload
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			return err
		}
		p, ok := c.Get(payload.GuildID)
		if !ok {
			return nil
		}
		return p.HandleVoiceServerUpdate(ctx, payload)

	case "VOICE_STATE_UPDATE":
		var payload lavalink.VoiceStatePayload
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			return err
		}
		if payload.UserID != c.cfg.ClientID {
			return nil
		}
		p, ok := c.Get(payload.GuildID)
		if !ok {
			return nil
		}
		return p.HandleVoiceStateUpdate(ctx, payload)

	default:
		return nil
	}
}

// Shutdown races DestroyAll against timeout (default shutdownTimeout if
// zero), then closes every Node's socket regardless of the outcome.
// Idempotent.
func (c *Cluster) Shutdown(ctx context.Context, timeout time.Duration) {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	c.shutdown = true
	c.mu.Unlock()

	if timeout <= 0 {
		timeout = shutdownTimeout
	}

	done := make(chan struct{})
	go func() {
		c.DestroyAll(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		c.logger.Warn().Msg("cluster shutdown timed out waiting for destroy_all")
	}

	for _, n := range c.Nodes() {
		_ = n.Disconnect(ctx)
	}
}
