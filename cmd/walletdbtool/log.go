// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/umbracoin/backup"
	"github.com/umbracoin/flush"
	"github.com/umbracoin/store"
)

var (
	logRotator *rotator.Rotator
	backendLog = slog.NewBackend(logWriter{})

	log = backendLog.Logger("WDBT")
)

// logWriter implements io.Writer, writing every log line to both the
// rotator (if initialized) and stdout.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the log rotator to write logs to a file in
// logDir and create rolled copies once a file size threshold is reached.
func initLogRotator(logDir string) error {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}
	r, err := rotator.New(filepath.Join(logDir, defaultLogFilename), 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// setLogLevels applies the given level to this binary's own logger and to
// every library package's UseLogger setter, so one configured level governs
// every subsystem logger.
func setLogLevels(levelStr string) {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		level = slog.LevelInfo
	}
	log.SetLevel(level)

	storeLog := backendLog.Logger("STOR")
	storeLog.SetLevel(level)
	store.UseLogger(storeLog)

	backupLog := backendLog.Logger("BKUP")
	backupLog.SetLevel(level)
	backup.UseLogger(backupLog)

	flushLog := backendLog.Logger("FLSH")
	flushLog.SetLevel(level)
	flush.UseLogger(flushLog)
}
