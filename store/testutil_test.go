// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/umbracoin/walletdb"
)

// newTestDB opens a fresh bbolt-backed DB in a temp directory, registered
// via the bdb driver pulled in by recovery.go's import.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	kvdb, err := walletdb.Create("bdb", filepath.Join(dir, "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kvdb.Close() })
	return Open(kvdb)
}

func mustHash(b byte) [32]byte {
	var h [32]byte
	h[0] = b
	return h
}
