/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package player

import (
	"context"

	"github.com/friendsincode/rias/lavalink"
)

// Connect validates channelID, stores it, and emits an internal
// voiceUpdate request the Cluster translates into the chat platform's
// voice-join opcode.
func (p *Player) Connect(channelID string, mute, deaf *bool) error {
	if err := p.checkDestroyed(); err != nil {
		return err
	}
	if !lavalink.ValidSnowflake(channelID) {
		return lavalink.ErrInvalidChannel
	}

	p.mu.Lock()
	p.voiceChannel = &channelID
	p.mu.Unlock()

	selfMute := false
	if mute != nil {
		selfMute = *mute
	}
	selfDeaf := true
	if deaf != nil {
		selfDeaf = *deaf
	}

	p.bus.Emit(string(EventVoiceUpdate), Event{
		GuildID: p.guildID,
		VoiceJoin: &VoiceJoinRequest{
			GuildID:   p.guildID,
			ChannelID: channelID,
			SelfMute:  selfMute,
			SelfDeaf:  selfDeaf,
		},
	})
	return nil
}

// HandleVoiceServerUpdate stores the gateway's voice-server credentials.
// Endpoint may be nil during region migration. If a voice state is
// already pending and the endpoint is non-nil, this completes the
// handshake.
func (p *Player) HandleVoiceServerUpdate(ctx context.Context, payload lavalink.VoiceServerPayload) error {
	p.mu.Lock()
	p.pendingVoiceServer = &payload
	ready := p.pendingVoiceState != nil && payload.Endpoint != nil
	p.mu.Unlock()

	if ready {
		return p.sendVoiceUpdate(ctx)
	}
	return nil
}

// HandleVoiceStateUpdate stores the gateway's voice-state packet. A nil
// ChannelID means the bot left voice: local state clears and connected
// becomes false, with no REST call issued. Otherwise, if a voice server
// with a non-nil endpoint is already pending, this completes the
// handshake.
func (p *Player) HandleVoiceStateUpdate(ctx context.Context, payload lavalink.VoiceStatePayload) error {
	p.mu.Lock()
	p.pendingVoiceState = &payload

	if payload.ChannelID == nil {
		p.voiceChannel = nil
		p.connected = false
		p.mu.Unlock()
		return nil
	}

	server := p.pendingVoiceServer
	ready := server != nil && server.Endpoint != nil
	p.mu.Unlock()

	if ready {
		return p.sendVoiceUpdate(ctx)
	}
	return nil
}

// sendVoiceUpdate issues the voice REST call once both inputs are
// present and the endpoint is non-nil — never before.
func (p *Player) sendVoiceUpdate(ctx context.Context) error {
	p.mu.Lock()
	server := p.pendingVoiceServer
	state := p.pendingVoiceState
	p.mu.Unlock()

	if server == nil || state == nil || server.Endpoint == nil {
		return nil
	}

	update := lavalink.NewPlayerUpdate().WithVoice(lavalink.VoiceUpdatePayload{
		Token:     server.Token,
		Endpoint:  *server.Endpoint,
		SessionID: state.SessionID,
	})

	if err := p.node.UpdatePlayer(ctx, p.guildID, update, false); err != nil {
		p.emitError(err)
		return err
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	return nil
}
