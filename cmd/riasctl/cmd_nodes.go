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

	"github.com/friendsincode/rias/node"
)

var nodesTimeout time.Duration

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Connect to every configured node and print connection state",
	RunE:  runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)
	nodesCmd.Flags().DurationVar(&nodesTimeout, "timeout", 10*time.Second, "how long to wait for at least one node to become ready")
}

func runNodes(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	c, err := newCluster()
	if err != nil {
		return fmt.Errorf("construct cluster: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), nodesTimeout)
	defer cancel()

	if err := connectAndWait(ctx, c, nodesTimeout); err != nil {
		logger.Warn().Err(err).Msg("no node became ready within the timeout")
	}

	for _, n := range c.Nodes() {
		stats, haveStats := n.Stats()
		line := fmt.Sprintf("%-20s state=%-12s ready=%-5t region=%-8s priority=%d",
			n.ID(), stateName(n.State()), n.IsReady(), n.Region(), n.Priority())
		if haveStats {
			line += fmt.Sprintf(" players=%d/%d cpu_system=%.2f", stats.PlayingPlayers, stats.Players, stats.CPU.SystemLoad)
		}
		fmt.Println(line)
	}

	c.Shutdown(context.Background(), 5*time.Second)
	return nil
}

func stateName(s node.ConnectionState) string {
	switch s {
	case node.Disconnected:
		return "disconnected"
	case node.Connecting:
		return "connecting"
	case node.Connected:
		return "connected"
	case node.Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
