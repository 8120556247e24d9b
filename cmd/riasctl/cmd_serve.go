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

	"github.com/friendsincode/rias/rias"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Hold every configured node connected and serve /metrics until interrupted",
	Long:  "serve is for exercising the cluster's reconnect and metrics behavior outside a bot process: it connects every node, exposes Prometheus metrics on RIAS_METRICS_BIND, and runs until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	c, err := newCluster()
	if err != nil {
		return fmt.Errorf("construct cluster: %w", err)
	}

	c.On(rias.EventNodeConnect, func(e rias.Event) {
		logger.Info().Str("node", e.NodeID).Msg("node connected")
	})
	c.On(rias.EventNodeDisconnect, func(e rias.Event) {
		logger.Warn().Str("node", e.NodeID).Err(e.Err).Msg("node disconnected")
	})
	c.On(rias.EventError, func(e rias.Event) {
		logger.Error().Str("node", e.NodeID).Str("guild_id", e.GuildID).Err(e.Err).Msg("cluster error")
	})

	shutdownMetrics := serveMetrics()
	c.Connect(context.Background())
	logger.Info().Str("metrics_bind", cfg.MetricsBind).Msg("riasctl serve: cluster connecting, metrics listening")

	waitForInterrupt()

	logger.Info().Msg("riasctl serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := shutdownMetrics(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown failed")
	}
	c.Shutdown(shutdownCtx, 30*time.Second)
	return nil
}
