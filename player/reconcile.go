/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package player

import (
	"context"

	"github.com/friendsincode/rias/lavalink"
)

// HandleNodeEvent reconciles one of the Node's "event" frames for this
// guild. Callers (the owning Cluster) are expected to have already
// matched the frame's GuildID to this player.
func (p *Player) HandleNodeEvent(ctx context.Context, frame lavalink.EventFrame) {
	switch frame.Type {
	case lavalink.EventTrackStart:
		p.mu.Lock()
		p.track = frame.Track
		p.playing = true
		p.mu.Unlock()
		p.refreshMetrics()
		p.bus.Emit(string(EventTrackStart), Event{GuildID: p.guildID, Track: frame.Track})

	case lavalink.EventTrackEnd:
		p.mu.Lock()
		p.playing = false
		autoplay := p.autoplay
		p.mu.Unlock()
		p.refreshMetrics()

		reason := lavalink.TrackEndReason(frame.Reason)
		p.bus.Emit(string(EventTrackEnd), Event{GuildID: p.guildID, Track: frame.Track, Reason: reason})

		if autoplay && (reason == lavalink.TrackEndFinished || reason == lavalink.TrackEndLoadFailed) {
			_, _ = p.Skip(ctx)
		}

	case lavalink.EventTrackStuck:
		p.bus.Emit(string(EventTrackStuck), Event{GuildID: p.guildID, Track: frame.Track, ThresholdMs: frame.ThresholdMs})

	case lavalink.EventTrackException:
		p.bus.Emit(string(EventTrackException), Event{GuildID: p.guildID, Track: frame.Track, Exception: frame.Exception})

	case lavalink.EventWebSocketClosed:
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
		p.bus.Emit(string(EventWebSocketClosed), Event{
			GuildID:  p.guildID,
			Code:     frame.Code,
			CloseMsg: frame.CloseMsg,
			ByRemote: frame.ByRemote,
		})
	}
}

// HandlePlayerUpdate reconciles a Node's "playerUpdate" frame for this
// guild: local position and connected state track the server's report.
func (p *Player) HandlePlayerUpdate(state lavalink.PlayerState) {
	p.mu.Lock()
	p.positionMs = state.Position
	p.connected = state.Connected
	p.mu.Unlock()
	p.bus.Emit(string(EventPlayerUpdate), Event{GuildID: p.guildID, State: state})
}
