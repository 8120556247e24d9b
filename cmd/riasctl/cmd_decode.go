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
)

var decodeCmd = &cobra.Command{
	Use:   "decode <encoded-track>",
	Short: "Decode a base64 track string back into its metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
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

	track, err := n.DecodeTrack(ctx, args[0])
	if err != nil {
		return fmt.Errorf("decode track: %w", err)
	}
	printTrack(*track)
	return nil
}
