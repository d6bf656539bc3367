// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zerocoin registers the zero-knowledge coin extension records
// into the wallet persistence core's dispatch table. It coexists in the
// same flat keyspace as the core taxonomy; the core tolerates its
// absence, since an unregistered tag is simply an unknown record.
package zerocoin

import (
	"encoding/binary"

	"github.com/umbracoin/store"
)

const (
	tagSerial            store.Tag = "zcserial"
	tagCoin              store.Tag = "zerocoin"
	tagUnloadedCoin      store.Tag = "unloadedzerocoin"
	tagAccumulator       store.Tag = "zcaccumulator"
	tagCalculatedZCBlock store.Tag = "calculatedzcblock"
)

// varBytes prefixes b with a single-byte CompactSize length. Zero-knowledge
// coin bigints are always well under 0xfd bytes in practice, so the
// single-byte form of the core codec's prefix is all that is needed here.
func varBytes(b []byte) []byte {
	return append([]byte{byte(len(b))}, b...)
}

func fixedUint32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func spendKey(serial []byte) []byte {
	return store.EncodeExtensionKey(tagSerial, varBytes(serial))
}

func coinKey(value []byte) []byte {
	return store.EncodeExtensionKey(tagCoin, varBytes(value))
}

func unloadedCoinKey(value []byte) []byte {
	return store.EncodeExtensionKey(tagUnloadedCoin, varBytes(value))
}

func accumulatorKey(denom, pubcoinID uint32) []byte {
	return store.EncodeExtensionKey(tagAccumulator, fixedUint32(denom), fixedUint32(pubcoinID))
}

func calculatedZCBlockKey() []byte {
	return store.EncodeExtensionKey(tagCalculatedZCBlock)
}

// init installs the five extension tags into store's dispatch table.
// Handler errors here are classified the same as any other non-key-bearing
// record (non-critical); the extension tags never affect the core
// taxonomy's correctness.
func init() {
	noop := func(subKey, value []byte) error { return nil }
	must(store.RegisterExtension(tagSerial, noop))
	must(store.RegisterExtension(tagCoin, noop))
	must(store.RegisterExtension(tagUnloadedCoin, noop))
	must(store.RegisterExtension(tagAccumulator, noop))
	must(store.RegisterExtension(tagCalculatedZCBlock, noop))
}

func must(err error) {
	if err != nil {
		panic("store/zerocoin: " + err.Error())
	}
}
