/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Command riasctl is an operator CLI for a Lavalink cluster: it loads
// the same RIAS_* environment configuration an embedding bot would,
// connects to every configured node, and prints status, search, and
// plugin information without joining any voice channel.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/rias/config"
	"github.com/friendsincode/rias/logging"
	"github.com/friendsincode/rias/metrics"
	"github.com/friendsincode/rias/node"
	"github.com/friendsincode/rias/rias"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
	reg    *metrics.Registry
)

var rootCmd = &cobra.Command{
	Use:   "riasctl",
	Short: "Inspect and exercise a Lavalink cluster",
	Long:  "riasctl loads RIAS_* environment configuration and drives a rias.Cluster for operator inspection: node status, track resolution, and plugin discovery.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	cfg = c
	logger = logging.Setup(cfg.Environment)
	reg = metrics.New(prometheus.DefaultRegisterer)
	return nil
}

// noopSend satisfies rias.SendFunc for CLI use, where no gateway
// connection exists to carry a voice-join opcode.
func noopSend(guildID string, payload map[string]any) error {
	logger.Debug().Str("guild_id", guildID).Msg("riasctl: voice join opcode dropped, no gateway attached")
	return nil
}

func newCluster() (*rias.Cluster, error) {
	cc, err := cfg.ToClusterConfig(noopSend)
	if err != nil {
		return nil, err
	}
	return rias.New(cc, logger, reg)
}

// connectAndWait connects c and blocks until at least one node completes
// its ready handshake (node.EventReady, forwarded as rias.EventNodeReady)
// or timeout elapses, whichever comes first. A node that has merely
// dialed (rias.EventNodeConnect) has not yet received its ready frame
// and is not safe to issue player operations against.
func connectAndWait(ctx context.Context, c *rias.Cluster, timeout time.Duration) error {
	ready := make(chan struct{}, 1)
	unsub := c.On(rias.EventNodeReady, func(rias.Event) {
		select {
		case ready <- struct{}{}:
		default:
		}
	})
	defer unsub()

	c.Connect(ctx)

	select {
	case <-ready:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for a node to become ready", timeout)
	}
}

// serveMetrics starts a Prometheus /metrics endpoint on cfg.MetricsBind
// and returns a function that shuts it down.
func serveMetrics() func(context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsBind, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	return srv.Shutdown
}

// readyNode returns the first connected, ready node in c, in registry
// iteration order.
func readyNode(c *rias.Cluster) (*node.Node, error) {
	for _, n := range c.Nodes() {
		if n.IsReady() {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no node is ready")
}

// waitForInterrupt blocks until SIGINT or SIGTERM arrives.
func waitForInterrupt() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
