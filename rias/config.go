/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rias

import "github.com/friendsincode/rias/node"

// SendFunc hands one outbound gateway payload for guildID to the
// embedding bot process, which owns the actual chat-platform socket.
type SendFunc func(guildID string, payload map[string]any) error

// ClusterConfig describes a Cluster.
type ClusterConfig struct {
	// ClientID is the bot's own platform user id, used both to identify
	// to each Node's event stream and to filter self voice-state
	// packets out of the raw demux.
	ClientID string

	Nodes []node.Config

	// SelectionStrategy is fixed for the Cluster's lifetime.
	SelectionStrategy SelectionStrategy

	// Send delivers the platform voice-join opcode for a Player's
	// voiceUpdate event. Required.
	Send SendFunc

	// Tracing is forwarded to every constructed Node's Config.
	Tracing bool
}
