/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package lavalink

import (
	"encoding/json"
	"fmt"
)

// LoadType discriminates the LoadResult tagged union.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// Severity classifies a LoadError.
type Severity string

const (
	SeverityCommon     Severity = "common"
	SeveritySuspicious Severity = "suspicious"
	SeverityFault      Severity = "fault"
)

// PlaylistInfo is the "info" object of a playlist load result.
type PlaylistInfo struct {
	Name          string `json:"name"`
	SelectedTrack int    `json:"selectedTrack"`
}

// Playlist is the "data" object of a playlist load result.
type Playlist struct {
	Info       PlaylistInfo   `json:"info"`
	PluginInfo map[string]any `json:"pluginInfo,omitempty"`
	Tracks     []Track        `json:"tracks"`
}

// LoadError is the "data" object of an error load result.
type LoadError struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Cause    string   `json:"cause"`
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("track load failed (%s): %s", e.Severity, e.Message)
}

// LoadResult is the tagged union returned by GET /v4/loadtracks.
//
// Type selects which one of Track, Playlist, Search, or Err is
// populated; none is populated for LoadTypeEmpty.
type LoadResult struct {
	Type     LoadType
	Track    *Track
	Playlist *Playlist
	Search   []Track
	Err      *LoadError
}

type wireLoadResult struct {
	LoadType LoadType        `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the node's tagged-union response shape into the
// matching LoadResult field.
func (r *LoadResult) UnmarshalJSON(data []byte) error {
	var w wireLoadResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Type = w.LoadType
	switch w.LoadType {
	case LoadTypeTrack:
		var t Track
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &t); err != nil {
				return err
			}
		}
		r.Track = &t
	case LoadTypePlaylist:
		var p Playlist
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &p); err != nil {
				return err
			}
		}
		r.Playlist = &p
	case LoadTypeSearch:
		var tracks []Track
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &tracks); err != nil {
				return err
			}
		}
		r.Search = tracks
	case LoadTypeEmpty:
		// data is null; nothing to populate.
	case LoadTypeError:
		var e LoadError
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &e); err != nil {
				return err
			}
		}
		r.Err = &e
	default:
		return fmt.Errorf("lavalink: unknown loadType %q", w.LoadType)
	}
	return nil
}
