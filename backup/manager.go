// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package backup implements the wallet persistence core's rolling backup
// policy: timestamped file-copy snapshots of a wallet database with
// bounded retention.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/umbracoin/errors"
)

// timestampLayout matches the legacy filename format
// "<wallet_name>.<YYYY-MM-DD-HH-MM>".
const timestampLayout = "2006-01-02-15-04"

// Locker is the minimal wallet-handle surface AutoBackup consults when an
// open wallet is supplied: refreshing the keypool counter and checking the
// locked-for-derivation abort condition. The wallet object itself is an
// external collaborator; this is its narrow coupling to the backup
// manager.
type Locker interface {
	// Lock acquires the wallet's lock for the duration of the backup
	// bookkeeping step and returns a function that releases it.
	Lock() (unlock func())
	// RefreshKeysLeftSinceLastBackup updates the wallet's "keys left
	// since last backup" counter from the current key pool size.
	RefreshKeysLeftSinceLastBackup()
	// LockedForDerivation reports whether the wallet cannot currently
	// derive new keys (abort condition for AutoBackup).
	LockedForDerivation() bool
}

// Manager implements AutoBackup, invoked on a schedule external to this
// package.
type Manager struct {
	// BackupsDir is the directory backups are written to.
	BackupsDir string
	// WalletName is the stem used in backup filenames and when matching
	// existing backups for retention.
	WalletName string
	// WalletPath is the on-disk wallet file to copy. May be empty if
	// unknown; the file-copy always occurs when this is known, even if a
	// Locker is also supplied.
	WalletPath string
	// Retention is the desired number of retained backups.
	Retention int

	now func() time.Time
}

// nowFunc returns the manager's clock, defaulting to time.Now.
func (m *Manager) nowFunc() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// Result reports the outcome of an AutoBackup call via the legacy
// N-sentinel convention (disabled=-1 on directory creation failure,
// aborted=-2 on a locked-for-derivation wallet), plus the path written on
// success.
type Result struct {
	Disabled bool
	Aborted  bool
	Skipped  bool // refused to overwrite a backup made within the last minute
	Path     string
}

// AutoBackup takes a timestamped snapshot of the wallet file, skipping or
// aborting per the conditions documented on Manager's fields, and prunes
// old backups down to Retention.
func (m *Manager) AutoBackup(wallet Locker) (Result, error) {
	const op errors.Op = "backup.Manager.AutoBackup"

	if m.Retention <= 0 {
		log.Debugf("backup: automatic backups disabled (N=%d)", m.Retention)
		return Result{Disabled: true}, nil
	}

	if err := os.MkdirAll(m.BackupsDir, 0700); err != nil {
		log.Warnf("backup: failed to create backups directory: %v", err)
		m.Retention = -1
		return Result{Disabled: true}, errors.E(op, errors.IO, err)
	}

	filename := m.WalletName + "." + m.nowFunc().Format(timestampLayout)
	destPath := filepath.Join(m.BackupsDir, filename)

	if wallet != nil {
		unlock := wallet.Lock()
		defer unlock()
		wallet.RefreshKeysLeftSinceLastBackup()
		if wallet.LockedForDerivation() {
			log.Warnf("backup: wallet is locked against key derivation, aborting backup")
			m.Retention = -2
			return Result{Aborted: true}, nil
		}
	}

	if m.WalletPath == "" {
		return Result{}, errors.E(op, errors.Invalid, errors.Errorf("wallet file path is unknown"))
	}

	if _, err := os.Stat(destPath); err == nil {
		log.Warnf("backup: refusing to overwrite existing backup %q (restart within one minute?)", destPath)
		return Result{Skipped: true, Path: destPath}, nil
	} else if !os.IsNotExist(err) {
		return Result{}, errors.E(op, errors.IO, err)
	}

	if err := copyFile(m.WalletPath, destPath); err != nil {
		return Result{}, errors.E(op, errors.IO, err)
	}

	if err := m.prune(); err != nil {
		log.Warnf("backup: retention pruning failed: %v", err)
	}

	return Result{Path: destPath}, nil
}

// copyFile copies src to dest via a temp file in the same directory,
// renamed into place once fully written, so a crash mid-copy never leaves
// a partial backup visible under its final name.
func copyFile(src, dest string) error {
	const op errors.Op = "backup.copyFile"

	in, err := os.Open(src)
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".backup-*")
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return errors.E(op, errors.IO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.E(op, errors.IO, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.E(op, errors.IO, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}

// prune enumerates every backup file whose stem equals the wallet name,
// sorts by modification time, and deletes the oldest until at most
// m.Retention remain.
func (m *Manager) prune() error {
	const op errors.Op = "backup.Manager.prune"

	entries, err := os.ReadDir(m.BackupsDir)
	if err != nil {
		return errors.E(op, errors.IO, err)
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var matches []fileInfo
	prefix := m.WalletName + "."
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		matches = append(matches, fileInfo{
			path:    filepath.Join(m.BackupsDir, e.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].modTime.Before(matches[j].modTime) })

	excess := len(matches) - m.Retention
	for i := 0; i < excess; i++ {
		if err := os.Remove(matches[i].path); err != nil {
			log.Warnf("backup: failed to remove stale backup %q: %v", matches[i].path, err)
		}
	}
	return nil
}
