/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package player

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/rias/events"
	"github.com/friendsincode/rias/lavalink"
	"github.com/friendsincode/rias/metrics"
	"github.com/friendsincode/rias/node"
	"github.com/friendsincode/rias/queue"
)

const defaultVolume = 100

// Player is the client-side controller for one guild's playback. It is
// pinned to a single Node at creation and does not migrate: if its Node
// disconnects, operations fail until the Node becomes ready again.
type Player struct {
	guildID string
	node    *node.Node
	logger  zerolog.Logger
	metrics *metrics.Registry
	bus     *events.Bus[Event]

	mu           sync.Mutex
	track        *lavalink.Track
	voiceChannel *string
	textChannel  *string
	volume       int
	paused       bool
	playing      bool
	positionMs   int64
	connected    bool
	queue        *queue.Queue
	autoplay     bool

	pendingVoiceServer *lavalink.VoiceServerPayload
	pendingVoiceState  *lavalink.VoiceStatePayload

	destroyed bool
}

// New constructs a Player bound to n for guildID. logger may be the zero
// value; reg may be nil.
func New(guildID string, n *node.Node, logger zerolog.Logger, reg *metrics.Registry) *Player {
	if reflect.DeepEqual(logger, zerolog.Logger{}) {
		logger = zerolog.Nop()
	}
	return &Player{
		guildID:  guildID,
		node:     n,
		logger:   logger,
		metrics:  reg,
		bus:      events.NewBus[Event](),
		volume:   defaultVolume,
		autoplay: true,
		queue:    queue.New(),
	}
}

// GuildID returns the guild this Player controls.
func (p *Player) GuildID() string { return p.guildID }

// Node returns the Node this Player is pinned to.
func (p *Player) Node() *node.Node { return p.node }

// Queue returns the player's track queue.
func (p *Player) Queue() *queue.Queue { return p.queue }

// On registers a handler for the named event, returning an unsubscribe
// function.
func (p *Player) On(name EventName, handler func(Event)) func() {
	return p.bus.On(string(name), handler)
}

// Track returns the currently playing track, or nil.
func (p *Player) Track() *lavalink.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Playing reports whether the player believes it is currently playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Volume returns the player's last-known volume (0-1000).
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Connected reports whether the voice handshake last completed
// successfully.
func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Position returns the last-known playback position in milliseconds.
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionMs
}

// Destroyed reports whether Destroy has latched this player.
func (p *Player) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// checkDestroyed returns lavalink.ErrPlayerNotFound once Destroy has
// latched this player; every operation that reaches the node or mutates
// queue state must check this first.
func (p *Player) checkDestroyed() error {
	if p.Destroyed() {
		return fmt.Errorf("player %s: %w", p.guildID, lavalink.ErrPlayerNotFound)
	}
	return nil
}

// SetAutoplay toggles whether a finished/failed track automatically
// advances to the next queued track.
func (p *Player) SetAutoplay(enabled bool) {
	p.mu.Lock()
	p.autoplay = enabled
	p.mu.Unlock()
}

func (p *Player) emitError(err error) {
	p.bus.Emit(string(EventError), Event{GuildID: p.guildID, Err: err})
}

func (p *Player) refreshMetrics() {
	if p.metrics == nil {
		return
	}
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()
	p.metrics.SetPlayerPlaying(p.guildID, playing)
	p.metrics.SetPlayerQueueSize(p.guildID, p.queue.Len())
}
