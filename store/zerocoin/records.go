// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zerocoin

import (
	"encoding/binary"

	"github.com/umbracoin/store"
	"github.com/umbracoin/errors"
)

// SpendEntry is a zero-knowledge coin spend record, keyed by serial.
type SpendEntry struct {
	Serial []byte
	Blob   []byte
}

// CoinEntry is a zero-knowledge coin record, keyed by its public value.
type CoinEntry struct {
	Value      []byte
	Denom      uint32
	Height     uint32
	Randomness []byte
	IsUsed     bool
}

// AccumulatorEntry is a per-(denomination, pubcoin-id) accumulator value.
type AccumulatorEntry struct {
	Denom     uint32
	PubcoinID uint32
	Value     []byte
}

func encodeCoinEntry(c *CoinEntry) []byte {
	out := make([]byte, 0, 9+len(c.Randomness))
	var denom, height [4]byte
	binary.LittleEndian.PutUint32(denom[:], c.Denom)
	binary.LittleEndian.PutUint32(height[:], c.Height)
	out = append(out, denom[:]...)
	out = append(out, height[:]...)
	if c.IsUsed {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, byte(len(c.Randomness)))
	out = append(out, c.Randomness...)
	return out
}

func decodeCoinEntry(value []byte, blobValue []byte) (*CoinEntry, error) {
	const op errors.Op = "store/zerocoin.decodeCoinEntry"
	if len(value) < 10 {
		return nil, errors.E(op, errors.Corrupt, errors.Errorf("zerocoin entry too short"))
	}
	denom := binary.LittleEndian.Uint32(value[0:4])
	height := binary.LittleEndian.Uint32(value[4:8])
	isUsed := value[8] != 0
	n := int(value[9])
	if len(value) < 10+n {
		return nil, errors.E(op, errors.Corrupt, errors.Errorf("zerocoin entry randomness truncated"))
	}
	return &CoinEntry{
		Value: blobValue, Denom: denom, Height: height,
		IsUsed: isUsed, Randomness: value[10 : 10+n],
	}, nil
}

// WriteSpendEntry persists a coin-spend serial record.
func WriteSpendEntry(db *store.DB, e *SpendEntry) error {
	return store.NewBatch(db).WriteIC(spendKey(e.Serial), e.Blob, true)
}

// EraseSpendEntry removes a coin-spend serial record.
func EraseSpendEntry(db *store.DB, serial []byte) error {
	return store.NewBatch(db).EraseIC(spendKey(serial))
}

// WriteCoinEntry persists a zero-knowledge coin record.
func WriteCoinEntry(db *store.DB, c *CoinEntry) error {
	return store.NewBatch(db).WriteIC(coinKey(c.Value), encodeCoinEntry(c), true)
}

// WriteUnloadedCoinEntry persists a pending/unloaded coin record.
func WriteUnloadedCoinEntry(db *store.DB, c *CoinEntry) error {
	return store.NewBatch(db).WriteIC(unloadedCoinKey(c.Value), encodeCoinEntry(c), true)
}

// WriteAccumulator persists a per-(denomination, pubcoin-id) accumulator.
func WriteAccumulator(db *store.DB, a *AccumulatorEntry) error {
	return store.NewBatch(db).WriteIC(accumulatorKey(a.Denom, a.PubcoinID), a.Value, true)
}

// WriteCalculatedZCBlock persists the incremental-scan watermark height.
func WriteCalculatedZCBlock(db *store.DB, height uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], height)
	return store.NewBatch(db).WriteIC(calculatedZCBlockKey(), b[:], true)
}

// ListCoins returns every zerocoin record by walking the tag's subtree
// with a cursor, the same scan-and-decode shape as the original
// ListPubCoin.
func ListCoins(db *store.DB) ([]*CoinEntry, error) {
	const op errors.Op = "store/zerocoin.ListCoins"
	var out []*CoinEntry
	err := store.ScanPrefix(db, tagCoin, func(subKey, value []byte) error {
		n := int(subKey[0])
		blobValue := subKey[1 : 1+n]
		c, err := decodeCoinEntry(value, blobValue)
		if err != nil {
			return nil // non-critical: skip, matching the loader's tolerance policy
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, errors.E(op, err)
	}
	return out, nil
}

// ListUnloadedCoins returns every unloadedzerocoin record, grounded on the
// original ListUnloadedPubCoin cursor loop.
func ListUnloadedCoins(db *store.DB) ([]*CoinEntry, error) {
	const op errors.Op = "store/zerocoin.ListUnloadedCoins"
	var out []*CoinEntry
	err := store.ScanPrefix(db, tagUnloadedCoin, func(subKey, value []byte) error {
		n := int(subKey[0])
		blobValue := subKey[1 : 1+n]
		c, err := decodeCoinEntry(value, blobValue)
		if err != nil {
			return nil
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, errors.E(op, err)
	}
	return out, nil
}

// ListSpendSerials returns every zcserial record, grounded on the original
// ListCoinSpendSerial cursor loop.
func ListSpendSerials(db *store.DB) ([]*SpendEntry, error) {
	const op errors.Op = "store/zerocoin.ListSpendSerials"
	var out []*SpendEntry
	err := store.ScanPrefix(db, tagSerial, func(subKey, value []byte) error {
		n := int(subKey[0])
		serial := subKey[1 : 1+n]
		out = append(out, &SpendEntry{Serial: serial, Blob: value})
		return nil
	})
	if err != nil {
		return nil, errors.E(op, err)
	}
	return out, nil
}
