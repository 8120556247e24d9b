/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package lavalink models the Lavalink v4 wire protocol: tracks, stats,
// filters, load results, and the frame envelopes exchanged over the node
// event stream and REST API.
package lavalink

import "encoding/json"

// Track is an immutable descriptor of a playable item. Equality for
// deduplication purposes uses Identifier, not the full struct.
type Track struct {
	Encoded    string
	Identifier string
	Title      string
	Author     string
	LengthMs   int64
	IsStream   bool
	IsSeekable bool
	PositionMs int64
	SourceName string
	URI        string
	ArtworkURL string
	ISRC       string
}

// trackInfo mirrors the nested "info" object Lavalink wraps Track fields
// in when it appears inside a LoadResult payload.
type trackInfo struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	IsSeekable bool   `json:"isSeekable"`
	Position   int64  `json:"position"`
	SourceName string `json:"sourceName"`
	URI        string `json:"uri,omitempty"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
	ISRC       string `json:"isrc,omitempty"`
}

type wireTrack struct {
	Encoded string    `json:"encoded"`
	Info    trackInfo `json:"info"`
}

// MarshalJSON emits the nested {encoded, info:{...}} shape the node's
// REST API expects when a track appears inside a LoadResult.
func (t Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTrack{
		Encoded: t.Encoded,
		Info: trackInfo{
			Identifier: t.Identifier,
			Title:      t.Title,
			Author:     t.Author,
			Length:     t.LengthMs,
			IsStream:   t.IsStream,
			IsSeekable: t.IsSeekable,
			Position:   t.PositionMs,
			SourceName: t.SourceName,
			URI:        t.URI,
			ArtworkURL: t.ArtworkURL,
			ISRC:       t.ISRC,
		},
	})
}

// UnmarshalJSON accepts the nested {encoded, info:{...}} shape the node
// sends.
func (t *Track) UnmarshalJSON(data []byte) error {
	var w wireTrack
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Encoded = w.Encoded
	t.Identifier = w.Info.Identifier
	t.Title = w.Info.Title
	t.Author = w.Info.Author
	t.LengthMs = w.Info.Length
	t.IsStream = w.Info.IsStream
	t.IsSeekable = w.Info.IsSeekable
	t.PositionMs = w.Info.Position
	t.SourceName = w.Info.SourceName
	t.URI = w.Info.URI
	t.ArtworkURL = w.Info.ArtworkURL
	t.ISRC = w.Info.ISRC
	return nil
}

// Equal reports whether two tracks are the same logical track: identity
// is carried by Identifier alone.
func (t Track) Equal(o Track) bool {
	return t.Identifier == o.Identifier
}
