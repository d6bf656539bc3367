// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"sort"

	"github.com/umbracoin/walletdb"
	"github.com/umbracoin/errors"
)

// FindWalletTx walks every tx record without dispatching it to a Sink,
// returning the decoded records in on-disk cursor order. Recovery tools
// use this to inspect transactions without running the validation
// pipeline.
func FindWalletTx(db *DB) ([]*TxRecord, error) {
	const op errors.Op = "store.FindWalletTx"
	var out []*TxRecord
	err := walletdb.View(nil, db.DB, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(rootBucket)
		if bucket == nil {
			return nil
		}
		c := bucket.ReadCursor()
		defer c.Close()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			t, subKey, err := decodeTag(k)
			if err != nil || t != TagTx || len(subKey) != 32 {
				continue
			}
			var hash [32]byte
			copy(hash[:], subKey)
			rec, err := DecodeTxValue(hash, v)
			if err != nil {
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return out, nil
}

func sortHashes(hashes [][32]byte) {
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})
}

// ZapSelectTx erases every tx record whose hash appears in hashes, using a
// sorted two-pointer merge against the database's own tx hashes, and
// returns the hashes that were actually erased: the result is the
// intersection of hashes with the tx-set on disk, and the remaining
// tx-set is the on-disk set minus that intersection.
func ZapSelectTx(db *DB, hashes [][32]byte) ([][32]byte, error) {
	const op errors.Op = "store.ZapSelectTx"

	want := make([][32]byte, len(hashes))
	copy(want, hashes)
	sortHashes(want)

	present, err := FindWalletTx(db)
	if err != nil {
		return nil, errors.E(op, err)
	}
	presentHashes := make([][32]byte, len(present))
	for i, rec := range present {
		presentHashes[i] = rec.Hash
	}
	sortHashes(presentHashes)

	var erased [][32]byte
	i, j := 0, 0
	for i < len(want) && j < len(presentHashes) {
		switch bytes.Compare(want[i][:], presentHashes[j][:]) {
		case 0:
			erased = append(erased, want[i])
			i++
			j++
		case -1:
			i++
		default:
			j++
		}
	}

	batch := NewBatch(db)
	if err := batch.TxnBegin(); err != nil {
		return nil, errors.E(op, err)
	}
	for _, h := range erased {
		if err := batch.EraseTx(h); err != nil {
			batch.TxnAbort()
			return nil, errors.E(op, err)
		}
	}
	if err := batch.TxnCommit(); err != nil {
		return nil, errors.E(op, err)
	}
	return erased, nil
}

// ZapWalletTx erases every tx record and returns the decoded records that
// were erased.
func ZapWalletTx(db *DB) ([]*TxRecord, error) {
	const op errors.Op = "store.ZapWalletTx"
	present, err := FindWalletTx(db)
	if err != nil {
		return nil, errors.E(op, err)
	}

	batch := NewBatch(db)
	if err := batch.TxnBegin(); err != nil {
		return nil, errors.E(op, err)
	}
	for _, rec := range present {
		if err := batch.EraseTx(rec.Hash); err != nil {
			batch.TxnAbort()
			return nil, errors.E(op, err)
		}
	}
	if err := batch.TxnCommit(); err != nil {
		return nil, errors.E(op, err)
	}
	return present, nil
}
