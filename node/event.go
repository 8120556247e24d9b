/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package node

import "github.com/friendsincode/rias/lavalink"

// EventName enumerates the names a Node publishes on its bus.
type EventName string

const (
	EventConnect      EventName = "connect"
	EventReady        EventName = "ready"
	EventDisconnect   EventName = "disconnect"
	EventError        EventName = "error"
	EventStats        EventName = "stats"
	EventPlayerEvent  EventName = "event"
	EventPlayerUpdate EventName = "playerUpdate"
	EventRaw          EventName = "raw"
	EventInfoUpdate   EventName = "infoUpdate"
	EventPluginLoaded EventName = "pluginLoaded"
)

// Event is the tagged-union payload delivered to Node subscribers; only
// the fields relevant to the emitting EventName are populated.
type Event struct {
	NodeID string

	SessionID string
	Resumed   bool

	Err error

	Stats *lavalink.Stats

	Frame        *lavalink.EventFrame
	PlayerUpdate *lavalink.PlayerUpdateFrame

	Raw []byte

	Info   *InfoResponse
	Plugin *Plugin
}
