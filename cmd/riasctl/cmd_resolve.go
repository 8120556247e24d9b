/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/rias/lavalink"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>",
	Short: "Load a track, playlist, or search result off the cluster",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	c, err := newCluster()
	if err != nil {
		return fmt.Errorf("construct cluster: %w", err)
	}
	defer c.Shutdown(context.Background(), 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := connectAndWait(ctx, c, 10*time.Second); err != nil {
		return err
	}

	n, err := readyNode(c)
	if err != nil {
		return err
	}

	result, err := n.LoadTracks(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load tracks: %w", err)
	}

	switch result.Type {
	case lavalink.LoadTypeTrack:
		printTrack(*result.Track)
	case lavalink.LoadTypePlaylist:
		fmt.Printf("playlist %q (%d tracks, selected=%d)\n", result.Playlist.Info.Name, len(result.Playlist.Tracks), result.Playlist.Info.SelectedTrack)
		for i, t := range result.Playlist.Tracks {
			fmt.Printf("  [%d] ", i)
			printTrack(t)
		}
	case lavalink.LoadTypeSearch:
		for i, t := range result.Search {
			fmt.Printf("[%d] ", i)
			printTrack(t)
		}
	case lavalink.LoadTypeEmpty:
		fmt.Println("no matches")
	case lavalink.LoadTypeError:
		return fmt.Errorf("load error (%s): %s", result.Err.Severity, result.Err.Message)
	}
	return nil
}

func printTrack(t lavalink.Track) {
	fmt.Printf("%s — %s (%s, %dms)\n", t.Author, t.Title, t.SourceName, t.LengthMs)
}
