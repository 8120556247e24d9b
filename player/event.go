/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package player implements the per-guild state machine: voice handshake
// composition, playback operations, the queue driver, and server-event
// reconciliation.
package player

import "github.com/friendsincode/rias/lavalink"

// EventName enumerates the names a Player publishes on its bus.
type EventName string

const (
	EventVoiceUpdate     EventName = "voiceUpdate"
	EventTrackStart      EventName = "trackStart"
	EventTrackEnd        EventName = "trackEnd"
	EventTrackStuck      EventName = "trackStuck"
	EventTrackException  EventName = "trackException"
	EventWebSocketClosed EventName = "webSocketClosed"
	EventPlayerUpdate    EventName = "playerUpdate"
	EventQueueAdd        EventName = "queueAdd"
	EventQueueRemove     EventName = "queueRemove"
	EventQueueClear      EventName = "queueClear"
	EventQueueShuffle    EventName = "queueShuffle"
	EventQueueEnd        EventName = "queueEnd"
	EventDestroy         EventName = "destroy"
	EventError           EventName = "error"
)

// VoiceJoinRequest is the payload of EventVoiceUpdate: an internal
// request the Cluster translates into the chat platform's voice-join
// opcode.
type VoiceJoinRequest struct {
	GuildID   string
	ChannelID string
	SelfMute  bool
	SelfDeaf  bool
}

// Event is the tagged-union payload delivered to Player subscribers;
// only the fields relevant to the emitting EventName are populated.
type Event struct {
	GuildID string

	Track *lavalink.Track

	// trackEnd
	Reason lavalink.TrackEndReason

	// trackStuck
	ThresholdMs int64

	// trackException
	Exception *lavalink.LoadError

	// webSocketClosed
	Code       int
	CloseMsg   string
	ByRemote   bool

	// playerUpdate
	State lavalink.PlayerState

	// voiceUpdate
	VoiceJoin *VoiceJoinRequest

	Err error
}
