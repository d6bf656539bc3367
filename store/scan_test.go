// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ZapSelectTx({H2,H5,H9}) on ten seeded tx records returns exactly that
// set and leaves the complement.
func TestZapSelectTx(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)

	var hashes [10][32]byte
	for i := 0; i < 10; i++ {
		hashes[i] = mustHash(byte(i))
		require.NoError(t, batch.WriteTx(&TxRecord{Hash: hashes[i], OrderPos: int64(i)}))
	}

	toZap := [][32]byte{hashes[2], hashes[5], hashes[9]}
	erased, err := ZapSelectTx(db, toZap)
	require.NoError(t, err)
	require.ElementsMatch(t, toZap, erased)

	remaining, err := FindWalletTx(db)
	require.NoError(t, err)
	require.Len(t, remaining, 7)

	zapped := map[[32]byte]bool{hashes[2]: true, hashes[5]: true, hashes[9]: true}
	for _, rec := range remaining {
		require.False(t, zapped[rec.Hash])
	}
}

func TestZapWalletTx(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	for i := 0; i < 3; i++ {
		require.NoError(t, batch.WriteTx(&TxRecord{Hash: mustHash(byte(i))}))
	}

	erased, err := ZapWalletTx(db)
	require.NoError(t, err)
	require.Len(t, erased, 3)

	remaining, err := FindWalletTx(db)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestUpdateCounterStrictlyIncreases(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	before := db.UpdateCounter()
	require.NoError(t, batch.WriteName("addr1", "label1"))
	after := db.UpdateCounter()
	require.Greater(t, after, before)
}

func TestAbortedTransactionLeavesStateUnchanged(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	require.NoError(t, batch.WriteName("addr1", "label1"))

	require.NoError(t, batch.TxnBegin())
	require.NoError(t, batch.WriteName("addr2", "label2"))
	require.NoError(t, batch.EraseName("addr1"))
	require.NoError(t, batch.TxnAbort())

	value, err := batch.ReadRaw(NameKey("addr1"))
	require.NoError(t, err)
	require.NotNil(t, value, "erase inside an aborted transaction must not persist")

	value, err = batch.ReadRaw(NameKey("addr2"))
	require.NoError(t, err)
	require.Nil(t, value, "write inside an aborted transaction must not persist")
}
