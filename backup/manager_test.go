// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeWalletFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "wallet.dat")
	require.NoError(t, os.WriteFile(path, []byte("wallet contents"), 0600))
	return path
}

func TestAutoBackupDisabledWhenRetentionNonPositive(t *testing.T) {
	dir := t.TempDir()
	mgr := &Manager{BackupsDir: filepath.Join(dir, "backups"), WalletName: "wallet.dat", Retention: 0}
	result, err := mgr.AutoBackup(nil)
	require.NoError(t, err)
	require.True(t, result.Disabled)
}

// Backup retention at N=3 — after six successive backups, exactly the
// three most recent remain.
func TestAutoBackupRetention(t *testing.T) {
	dir := t.TempDir()
	walletPath := writeWalletFile(t, dir)
	backupsDir := filepath.Join(dir, "backups")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var lastPath string
	for i := 0; i < 6; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		mgr := &Manager{
			BackupsDir: backupsDir,
			WalletName: "wallet.dat",
			WalletPath: walletPath,
			Retention:  3,
			now:        func() time.Time { return ts },
		}
		result, err := mgr.AutoBackup(nil)
		require.NoError(t, err)
		require.False(t, result.Disabled)
		require.False(t, result.Skipped)
		lastPath = result.Path
	}

	entries, err := os.ReadDir(backupsDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.FileExists(t, lastPath)
}

func TestAutoBackupRefusesOverwriteWithinOneMinute(t *testing.T) {
	dir := t.TempDir()
	walletPath := writeWalletFile(t, dir)
	backupsDir := filepath.Join(dir, "backups")
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mgr := &Manager{
		BackupsDir: backupsDir, WalletName: "wallet.dat", WalletPath: walletPath,
		Retention: 3, now: func() time.Time { return ts },
	}
	first, err := mgr.AutoBackup(nil)
	require.NoError(t, err)
	require.False(t, first.Skipped)

	second, err := mgr.AutoBackup(nil)
	require.NoError(t, err)
	require.True(t, second.Skipped)
}

type fakeLocker struct {
	locked bool
}

func (f *fakeLocker) Lock() (unlock func()) { return func() {} }
func (f *fakeLocker) RefreshKeysLeftSinceLastBackup() {}
func (f *fakeLocker) LockedForDerivation() bool { return f.locked }

func TestAutoBackupAbortsWhenLockedForDerivation(t *testing.T) {
	dir := t.TempDir()
	walletPath := writeWalletFile(t, dir)
	mgr := &Manager{
		BackupsDir: filepath.Join(dir, "backups"), WalletName: "wallet.dat",
		WalletPath: walletPath, Retention: 3,
	}
	result, err := mgr.AutoBackup(&fakeLocker{locked: true})
	require.NoError(t, err)
	require.True(t, result.Aborted)
}
