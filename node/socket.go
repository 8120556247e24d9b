/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package node

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/friendsincode/rias/lavalink"
)

func (n *Node) wsURL() string {
	scheme := "ws"
	if n.cfg.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/v4/websocket", scheme, n.cfg.Host, n.cfg.Port)
}

func (n *Node) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", n.cfg.Password)
	header.Set("User-Id", n.clientID)
	header.Set("Client-Name", n.userAgent())

	n.mu.Lock()
	sessionID := n.sessionID
	n.mu.Unlock()
	if n.cfg.ResumeKey != "" && sessionID != "" {
		header.Set("Session-Id", sessionID)
	}

	conn, _, err := websocket.Dial(ctx, n.wsURL(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w: %w", n.wsURL(), lavalink.ErrWebSocket, err)
	}
	conn.SetReadLimit(readLimitBytes)
	return conn, nil
}

func (n *Node) writeFrame(ctx context.Context, v any) error {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		return lavalink.ErrNodeNotConnected
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write frame: %w: %w", lavalink.ErrWebSocket, err)
	}
	return nil
}

func (n *Node) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			n.handleClose(ctx, fmt.Errorf("read frame: %w: %w", lavalink.ErrWebSocket, err))
			return
		}
		n.handleFrame(data)
	}
}

func (n *Node) handleFrame(data []byte) {
	var base lavalink.BaseFrame
	if err := json.Unmarshal(data, &base); err != nil {
		n.logger.Error().Err(err).Str("node", n.cfg.ID).Msg("malformed node frame")
		return
	}

	switch base.Op {
	case "ready":
		var f lavalink.ReadyFrame
		if err := json.Unmarshal(data, &f); err != nil {
			n.logger.Error().Err(err).Msg("malformed ready frame")
			return
		}
		n.handleReady(f)
	case "stats":
		var f lavalink.StatsFrame
		if err := json.Unmarshal(data, &f); err != nil {
			n.logger.Error().Err(err).Msg("malformed stats frame")
			return
		}
		n.handleStats(f)
	case "event":
		var f lavalink.EventFrame
		if err := json.Unmarshal(data, &f); err != nil {
			n.logger.Error().Err(err).Msg("malformed event frame")
			return
		}
		n.bus.Emit(string(EventPlayerEvent), Event{NodeID: n.cfg.ID, Frame: &f})
	case "playerUpdate":
		var f lavalink.PlayerUpdateFrame
		if err := json.Unmarshal(data, &f); err != nil {
			n.logger.Error().Err(err).Msg("malformed playerUpdate frame")
			return
		}
		n.bus.Emit(string(EventPlayerUpdate), Event{NodeID: n.cfg.ID, PlayerUpdate: &f})
	default:
		n.bus.Emit(string(EventRaw), Event{NodeID: n.cfg.ID, Raw: data})
	}
}

func (n *Node) handleReady(f lavalink.ReadyFrame) {
	n.mu.Lock()
	n.sessionID = f.SessionID
	n.mu.Unlock()
	n.bus.Emit(string(EventReady), Event{NodeID: n.cfg.ID, SessionID: f.SessionID, Resumed: f.Resumed})
}

func (n *Node) handleStats(f lavalink.StatsFrame) {
	n.mu.Lock()
	n.stats = f.Stats
	n.haveStats = true
	n.mu.Unlock()

	n.metrics.SetNodeStats(n.cfg.ID, f.Stats.Players, f.Stats.PlayingPlayers)

	stats := f.Stats
	n.bus.Emit(string(EventStats), Event{NodeID: n.cfg.ID, Stats: &stats})
}
