/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/friendsincode/rias/lavalink"
)

func (n *Node) baseURL() string {
	scheme := "http"
	if n.cfg.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d/v4", scheme, n.cfg.Host, n.cfg.Port)
}

func (n *Node) doRequest(ctx context.Context, op, method, path string, body any, timeout time.Duration) ([]byte, *http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, n.baseURL()+path, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", n.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	n.logger.Debug().
		Str("node", n.cfg.ID).
		Str("op", op).
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Msg("node rest request")

	resp, err := n.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			n.metrics.ObserveRestRequest(n.cfg.ID, op, "timeout")
			return nil, nil, lavalink.ErrTimeout
		}
		n.metrics.ObserveRestRequest(n.cfg.ID, op, "error")
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		n.metrics.ObserveRestRequest(n.cfg.ID, op, "error")
		return nil, resp, err
	}

	n.metrics.ObserveRestRequest(n.cfg.ID, op, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode >= 300 {
		return data, resp, restError(resp.StatusCode, data)
	}
	return data, resp, nil
}

func restError(status int, body []byte) error {
	var parsed struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &parsed)
	return &lavalink.RestError{Status: status, Message: parsed.Message}
}

// UpdatePlayer PATCHes the subset of player fields update carries.
func (n *Node) UpdatePlayer(ctx context.Context, guildID string, update lavalink.PlayerUpdate, noReplace bool) error {
	if !n.IsReady() {
		return lavalink.ErrNodeNotReady
	}
	path := fmt.Sprintf("/sessions/%s/players/%s", n.SessionID(), guildID)
	if noReplace {
		path += "?noReplace=true"
	}
	_, _, err := n.doRequest(ctx, "update_player", http.MethodPatch, path, map[string]any(update), defaultRestTimeout)
	if err != nil {
		n.bus.Emit(string(EventError), Event{NodeID: n.cfg.ID, Err: err})
	}
	return err
}

// DestroyPlayer deletes a guild's player. A 404 is treated as success.
func (n *Node) DestroyPlayer(ctx context.Context, guildID string) error {
	if !n.IsReady() {
		return lavalink.ErrNodeNotReady
	}
	path := fmt.Sprintf("/sessions/%s/players/%s", n.SessionID(), guildID)
	_, _, err := n.doRequest(ctx, "destroy_player", http.MethodDelete, path, nil, defaultRestTimeout)
	if err != nil {
		var restErr *lavalink.RestError
		if errors.As(err, &restErr) && restErr.Status == http.StatusNotFound {
			return nil
		}
		n.bus.Emit(string(EventError), Event{NodeID: n.cfg.ID, Err: err})
		return err
	}
	return nil
}

// LoadTracks resolves identifier via GET /loadtracks.
func (n *Node) LoadTracks(ctx context.Context, identifier string) (*lavalink.LoadResult, error) {
	if !n.IsReady() {
		return nil, lavalink.ErrNodeNotReady
	}
	path := "/loadtracks?identifier=" + url.QueryEscape(identifier)
	data, _, err := n.doRequest(ctx, "load_tracks", http.MethodGet, path, nil, longRestTimeout)
	if err != nil {
		return nil, err
	}
	var result lavalink.LoadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DecodeTrack resolves one encoded track blob into its metadata.
func (n *Node) DecodeTrack(ctx context.Context, encoded string) (*lavalink.Track, error) {
	if !n.IsReady() {
		return nil, lavalink.ErrNodeNotReady
	}
	path := "/decodetrack?encodedTrack=" + url.QueryEscape(encoded)
	data, _, err := n.doRequest(ctx, "decode_track", http.MethodGet, path, nil, defaultRestTimeout)
	if err != nil {
		return nil, err
	}
	var t lavalink.Track
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DecodeTracks resolves a batch of encoded track blobs.
func (n *Node) DecodeTracks(ctx context.Context, encoded []string) ([]lavalink.Track, error) {
	if !n.IsReady() {
		return nil, lavalink.ErrNodeNotReady
	}
	data, _, err := n.doRequest(ctx, "decode_tracks", http.MethodPost, "/decodetracks", encoded, longRestTimeout)
	if err != nil {
		return nil, err
	}
	var tracks []lavalink.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// GetInfo returns the node's capability/plugin info, serving from a
// 300s-TTL cache unless forceRefresh is set. On refresh it rebuilds the
// plugin index and emits infoUpdate plus one pluginLoaded per plugin.
func (n *Node) GetInfo(ctx context.Context, forceRefresh bool) (*InfoResponse, error) {
	if !n.IsReady() {
		return nil, lavalink.ErrNodeNotReady
	}

	n.mu.Lock()
	cached := n.info
	fresh := cached != nil && time.Since(n.infoFetchedAt) < pluginCacheTTL
	n.mu.Unlock()
	if cached != nil && fresh && !forceRefresh {
		return cached, nil
	}

	data, _, err := n.doRequest(ctx, "get_info", http.MethodGet, "/info", nil, defaultRestTimeout)
	if err != nil {
		return nil, err
	}
	var info InfoResponse
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}

	plugins := make(map[string]Plugin, len(info.Plugins))
	for _, p := range info.Plugins {
		plugins[p.Name] = p
	}

	n.mu.Lock()
	n.info = &info
	n.infoFetchedAt = time.Now()
	n.plugins = plugins
	n.mu.Unlock()

	n.bus.Emit(string(EventInfoUpdate), Event{NodeID: n.cfg.ID, Info: &info})
	for _, p := range info.Plugins {
		plugin := p
		n.bus.Emit(string(EventPluginLoaded), Event{NodeID: n.cfg.ID, Plugin: &plugin})
	}
	return &info, nil
}

// discoverPlugins runs GetInfo, logging and emitting (but not
// propagating) failure, since plugin discovery never tears down the
// session.
func (n *Node) discoverPlugins(ctx context.Context, forceRefresh bool) {
	if _, err := n.GetInfo(ctx, forceRefresh); err != nil {
		n.logger.Warn().Err(err).Str("node", n.cfg.ID).Msg("plugin discovery failed")
		n.bus.Emit(string(EventError), Event{NodeID: n.cfg.ID, Err: err})
	}
}

// HasPlugin reports whether the node's cached (or freshly fetched, if
// the cache is empty) plugin index carries name.
func (n *Node) HasPlugin(ctx context.Context, name string) (bool, error) {
	n.mu.Lock()
	plugins := n.plugins
	n.mu.Unlock()

	if len(plugins) == 0 {
		if _, err := n.GetInfo(ctx, true); err != nil {
			return false, err
		}
		n.mu.Lock()
		plugins = n.plugins
		n.mu.Unlock()
	}

	_, ok := plugins[name]
	return ok, nil
}

// PluginRequest verifies the named plugin is installed, then issues a
// request to its endpoint, returning parsed JSON when the response
// carries an application/json content type.
func (n *Node) PluginRequest(ctx context.Context, name, endpoint, method string, body any) (any, error) {
	if !n.IsReady() {
		return nil, lavalink.ErrNodeNotReady
	}
	installed, err := n.HasPlugin(ctx, name)
	if err != nil {
		return nil, err
	}
	if !installed {
		return nil, fmt.Errorf("lavalink: plugin %q not installed on node %s", name, n.cfg.ID)
	}
	if method == "" {
		method = http.MethodGet
	}

	data, resp, err := n.doRequest(ctx, "plugin_request", method, "/"+strings.TrimPrefix(endpoint, "/"), body, longRestTimeout)
	if err != nil {
		return nil, err
	}
	if resp != nil && strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, nil
}
