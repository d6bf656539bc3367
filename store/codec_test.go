// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/umbracoin/errors"
)

func TestCompactSizeRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xfc, 0xfd, 0xfe, 0xffff, 0x10000, 0xffffffff, 0x100000000, 1 << 40}
	for _, n := range cases {
		w := newWriter()
		w.putCompactSize(n)
		r := newReader(w.Bytes())
		got, err := r.getCompactSize()
		require.NoError(t, err)
		require.Equal(t, n, got)
		require.True(t, r.Empty())
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	w := newWriter()
	w.putVarBytes([]byte("hello wallet"))
	r := newReader(w.Bytes())
	got, err := r.getVarBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hello wallet"), got)
}

func TestOptionalTrailingFieldAbsent(t *testing.T) {
	// A key record with no trailing integrity hash must decode
	// successfully with HasHash=false.
	rec := &KeyRecord{PrivKey: []byte{1, 2, 3}}
	value := rec.EncodeValue()
	got, err := DecodeKeyValue([]byte("pub"), value)
	require.NoError(t, err)
	require.False(t, got.HasHash)
	require.Equal(t, []byte{1, 2, 3}, got.PrivKey)
}

func TestOptionalTrailingFieldPresent(t *testing.T) {
	rec := &KeyRecord{PrivKey: []byte{1, 2, 3}, Hash: mustHash(7), HasHash: true}
	value := rec.EncodeValue()
	got, err := DecodeKeyValue([]byte("pub"), value)
	require.NoError(t, err)
	require.True(t, got.HasHash)
	require.Equal(t, mustHash(7), got.Hash)
}

func TestTxRecordRoundTrip(t *testing.T) {
	hash := mustHash(9)
	rec := &TxRecord{
		Hash:                 hash,
		RawTx:                []byte{0xde, 0xad, 0xbe, 0xef},
		TimeReceivedIsTxTime: 123,
		TimeReceived:         1700000000,
		FromMe:               true,
		Spent:                []bool{false, true, false},
		OrderPos:             UnorderedPos,
		Values:               map[string]string{"comment": "hi"},
	}
	got, err := DecodeTxValue(hash, rec.EncodeValue())
	require.NoError(t, err)
	require.Equal(t, rec.RawTx, got.RawTx)
	require.Equal(t, rec.TimeReceivedIsTxTime, got.TimeReceivedIsTxTime)
	require.Equal(t, rec.Spent, got.Spent)
	require.Equal(t, rec.OrderPos, got.OrderPos)
	require.Equal(t, rec.Values, got.Values)
}

func TestShortReadIsCorrupt(t *testing.T) {
	r := newReader([]byte{0xfd, 0x01}) // claims a 2-byte field, only 1 present
	_, err := r.getCompactSize()
	require.Error(t, err)
	require.True(t, errors.Is(errors.Corrupt, err))
}
