// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flush

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"

	"github.com/umbracoin/store"
	"github.com/umbracoin/walletdb"
	_ "github.com/umbracoin/walletdb/bdb"
)

func newTestDB(t *testing.T) *store.DB {
	t.Helper()
	dir := t.TempDir()
	kvdb, err := walletdb.Create("bdb", filepath.Join(dir, "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kvdb.Close() })
	return store.Open(kvdb)
}

func TestSchedulerSkipsUntilQuiet(t *testing.T) {
	mc := clock.NewTestClock(time.Unix(0, 0))
	sched := New(mc)
	db := newTestDB(t)
	sched.Watch(db)

	batch := store.NewBatch(db)
	require.NoError(t, batch.WriteName("addr", "label"))

	require.NoError(t, sched.Run())
	require.Equal(t, uint64(0), sched.dbs[0].lastFlushed)

	mc.SetTime(mc.Now().Add(QuietPeriod))
	require.NoError(t, sched.Run())
	require.Equal(t, db.UpdateCounter(), sched.dbs[0].lastFlushed)
}

func TestSchedulerReentryReturnsImmediately(t *testing.T) {
	mc := clock.NewTestClock(time.Unix(0, 0))
	sched := New(mc)
	sched.running.Store(true)
	require.NoError(t, sched.Run())
	require.True(t, sched.running.Load())
}
