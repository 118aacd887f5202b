// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stage

import (
	"log/slog"

	"github.com/gogpu/stage/internal/logger"
)

// SetLogger configures the logger for stage and all its sub-packages.
// By default, stage produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by stage:
//   - [slog.LevelDebug]: per-frame internals (draw groups, uploads, evictions)
//   - [slog.LevelInfo]: lifecycle events (device created, context restored)
//   - [slog.LevelWarn]: non-fatal issues (load failures, teardown errors)
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	stage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

// Logger returns the current logger used by stage.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Get()
}
