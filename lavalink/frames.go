/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package lavalink

import "encoding/json"

// BaseFrame is the minimal envelope every inbound event-stream frame
// shares, used to dispatch on Op before decoding the rest of the frame.
type BaseFrame struct {
	Op      string `json:"op"`
	GuildID string `json:"guildId,omitempty"`
}

// ReadyFrame is sent once per socket open, after the node accepts the
// connection.
type ReadyFrame struct {
	Op        string `json:"op"`
	Resumed   bool   `json:"resumed"`
	SessionID string `json:"sessionId"`
}

// StatsFrame carries the node's periodic stats snapshot.
type StatsFrame struct {
	Op string `json:"op"`
	Stats
}

// PlayerState is the nested "state" object of a playerUpdate frame.
type PlayerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
	Ping      int64 `json:"ping"`
}

// PlayerUpdateFrame reports a guild player's current playback position
// and voice-connection health.
type PlayerUpdateFrame struct {
	Op      string      `json:"op"`
	GuildID string      `json:"guildId"`
	State   PlayerState `json:"state"`
}

// EventType discriminates the "event" frame's nested event kind.
type EventType string

const (
	EventTrackStart      EventType = "TrackStartEvent"
	EventTrackEnd        EventType = "TrackEndEvent"
	EventTrackException  EventType = "TrackExceptionEvent"
	EventTrackStuck      EventType = "TrackStuckEvent"
	EventWebSocketClosed EventType = "WebSocketClosedEvent"
)

// EventFrame is the "event" frame envelope; Type selects which of the
// optional fields below is populated.
type EventFrame struct {
	Op      string    `json:"op"`
	GuildID string    `json:"guildId"`
	Type    EventType `json:"type"`

	Track *Track `json:"track,omitempty"`

	// TrackEndEvent
	Reason string `json:"reason,omitempty"`

	// TrackExceptionEvent
	Exception *LoadError `json:"exception,omitempty"`

	// TrackStuckEvent
	ThresholdMs int64 `json:"thresholdMs,omitempty"`

	// WebSocketClosedEvent; its wire "reason" is decoded into CloseMsg.
	Code     int    `json:"code,omitempty"`
	CloseMsg string `json:"-"`
	ByRemote bool   `json:"byRemote,omitempty"`
}

// UnmarshalJSON decodes an event frame, routing the wire "reason" field
// to CloseMsg for WebSocketClosedEvent and to Reason for every other type.
func (f *EventFrame) UnmarshalJSON(data []byte) error {
	type plain EventFrame
	if err := json.Unmarshal(data, (*plain)(f)); err != nil {
		return err
	}
	if f.Type == EventWebSocketClosed {
		f.CloseMsg, f.Reason = f.Reason, ""
	}
	return nil
}

// TrackEndReason enumerates why a track stopped playing.
type TrackEndReason string

const (
	TrackEndFinished  TrackEndReason = "finished"
	TrackEndLoadFailed TrackEndReason = "loadFailed"
	TrackEndStopped   TrackEndReason = "stopped"
	TrackEndReplaced  TrackEndReason = "replaced"
	TrackEndCleanup   TrackEndReason = "cleanup"
)

// ConfigureResumingFrame is sent immediately after a socket opens with a
// resume key configured.
type ConfigureResumingFrame struct {
	Op      string `json:"op"`
	Key     string `json:"key"`
	Timeout int    `json:"timeout"`
}

// NewConfigureResuming builds the outbound configureResuming frame.
func NewConfigureResuming(key string, timeoutSeconds int) ConfigureResumingFrame {
	return ConfigureResumingFrame{Op: "configureResuming", Key: key, Timeout: timeoutSeconds}
}

// VoiceServerPayload is the inbound voice-server-update packet the chat
// platform gateway delivers.
type VoiceServerPayload struct {
	Token    string  `json:"token"`
	GuildID  string  `json:"guild_id"`
	Endpoint *string `json:"endpoint"`
}

// VoiceStatePayload is the inbound voice-state-update packet the chat
// platform gateway delivers.
type VoiceStatePayload struct {
	GuildID   string  `json:"guild_id"`
	UserID    string  `json:"user_id"`
	SessionID string  `json:"session_id"`
	ChannelID *string `json:"channel_id"`
}

// VoiceUpdatePayload is the REST "voice" sub-object sent to the node once
// both voice inputs are present.
type VoiceUpdatePayload struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}

// PlayerUpdate is the PATCH body for updating a player. It is built as a
// plain map rather than a struct so that callers can both omit a field
// entirely and set it to an explicit JSON null (e.g. {"encodedTrack":
// null} to stop playback), which a struct's "omitempty" cannot express
// for a field that is present-but-null.
type PlayerUpdate map[string]any

// NewPlayerUpdate returns an empty update body ready for field setters.
func NewPlayerUpdate() PlayerUpdate {
	return PlayerUpdate{}
}

func (u PlayerUpdate) WithEncodedTrack(encoded string) PlayerUpdate {
	u["encodedTrack"] = encoded
	return u
}

// WithNoTrack sets encodedTrack to an explicit null, stopping playback.
func (u PlayerUpdate) WithNoTrack() PlayerUpdate {
	u["encodedTrack"] = nil
	return u
}

func (u PlayerUpdate) WithIdentifier(identifier string) PlayerUpdate {
	u["identifier"] = identifier
	return u
}

func (u PlayerUpdate) WithPosition(ms int64) PlayerUpdate {
	u["position"] = ms
	return u
}

func (u PlayerUpdate) WithEndTime(ms int64) PlayerUpdate {
	u["endTime"] = ms
	return u
}

func (u PlayerUpdate) WithVolume(volume int) PlayerUpdate {
	u["volume"] = volume
	return u
}

func (u PlayerUpdate) WithPaused(paused bool) PlayerUpdate {
	u["paused"] = paused
	return u
}

func (u PlayerUpdate) WithFilters(f Filters) PlayerUpdate {
	u["filters"] = f
	return u
}

func (u PlayerUpdate) WithVoice(v VoiceUpdatePayload) PlayerUpdate {
	u["voice"] = v
	return u
}

// Marshal encodes the update body to JSON.
func (u PlayerUpdate) Marshal() ([]byte, error) {
	return json.Marshal(map[string]any(u))
}
