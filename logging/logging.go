/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package logging configures the zerolog.Logger shared by every
// component's debug surface.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a Logger configured for environment. "production" (and
// "prod") get JSON output at info level; anything else (including the
// empty string) gets a human-readable console writer at debug level.
func Setup(environment string) zerolog.Logger {
	level := zerolog.DebugLevel
	var writer zerolog.ConsoleWriter

	switch strings.ToLower(environment) {
	case "production", "prod":
		level = zerolog.InfoLevel
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	default:
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(writer).Level(level).With().Timestamp().Logger()
	}
}
