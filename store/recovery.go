// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"github.com/umbracoin/walletdb"
	"github.com/umbracoin/walletdb/bdb"
	"github.com/umbracoin/errors"
)

// RecoveredRecord is a raw (key, value) pair yielded by a salvage pass,
// before any tag-specific decoding.
type RecoveredRecord struct {
	Key   []byte
	Value []byte
}

// RecoveryFilter decides whether a salvaged record should be kept. It
// receives the raw on-disk key and value.
type RecoveryFilter func(rawKey, value []byte) bool

// KeysOnlyFilter returns a RecoveryFilter that invokes l's per-record
// handler on a throwaway Sink and accepts only records whose tag is
// key-bearing or hdchain.
func KeysOnlyFilter(l *Loader) RecoveryFilter {
	return func(rawKey, value []byte) bool {
		tag, _, err := decodeTag(rawKey)
		if err != nil {
			return false
		}
		if !IsKeyBearing(tag) && tag != TagHDChain {
			return false
		}
		st := &loadState{masterKeyIDs: make(map[uint32]bool)}
		throwaway := NewMemorySink()
		l.dispatch(st, throwaway, rawKey, value)
		return !st.sawCorruption
	}
}

// Recover salvages all (key, value) pairs extractable from the database at
// path, optionally passing each through filter; records filter rejects are
// logged and skipped. A nil filter accepts everything.
//
// bbolt, unlike the legacy BDB engine this format was originally paired
// with, has no separate page-level salvage routine: a file it can open at
// all is read in full by a single bucket walk. Files bbolt refuses to open
// need a different recovery tool.
func Recover(path string, filter RecoveryFilter) ([]RecoveredRecord, error) {
	const op errors.Op = "store.Recover"

	kvdb, err := walletdb.Open("bdb", path)
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	defer kvdb.Close()

	var out []RecoveredRecord
	err = walletdb.View(nil, kvdb, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(rootBucket)
		if bucket == nil {
			return nil
		}
		c := bucket.ReadCursor()
		defer c.Close()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if filter != nil && !filter(k, v) {
				log.Warnf("store: recovery filter rejected record, skipping")
				continue
			}
			key := append([]byte{}, k...)
			value := append([]byte{}, v...)
			out = append(out, RecoveredRecord{Key: key, Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return out, nil
}

// VerifyEnvironment delegates to the KV engine's environment verification
// entrypoint.
func VerifyEnvironment(path string) error {
	const op errors.Op = "store.VerifyEnvironment"
	if err := bdb.VerifyEnvironment(path); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// VerifyDatabaseFile delegates to the KV engine's file verification
// entrypoint.
func VerifyDatabaseFile(path string) error {
	const op errors.Op = "store.VerifyDatabaseFile"
	if err := bdb.VerifyDatabaseFile(path); err != nil {
		return errors.E(op, err)
	}
	return nil
}
