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

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List plugins installed across every connected node",
	RunE:  runPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func runPlugins(cmd *cobra.Command, args []string) error {
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

	byNode := c.GetAllPlugins(ctx, false)
	if len(byNode) == 0 {
		fmt.Println("no connected nodes reported plugins")
		return nil
	}

	for nodeID, plugins := range byNode {
		fmt.Printf("%s:\n", nodeID)
		for _, p := range plugins {
			fmt.Printf("  %s v%s\n", p.Name, p.Version)
		}
	}
	return nil
}
