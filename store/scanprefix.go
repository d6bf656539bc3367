// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"

	"github.com/umbracoin/walletdb"
	"github.com/umbracoin/errors"
)

// ScanPrefix walks every record whose tag equals tag, seeking directly to
// the tag's first possible sub-key and stopping once the tag changes. fn
// receives the tag-specific sub-key bytes (with the leading tag already
// stripped) and the raw value.
//
// This is the primitive extension modules (e.g. store/zerocoin) use to
// implement bulk listing operations over their own tags without the core
// needing to know about them, the same shape as the three near-identical
// cursor loops in the original ListPubCoin/ListUnloadedPubCoin/
// ListCoinSpendSerial.
func ScanPrefix(db *DB, tag Tag, fn func(subKey, value []byte) error) error {
	const op errors.Op = "store.ScanPrefix"
	prefix := encodeKey(tag)
	err := walletdb.View(nil, db.DB, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(rootBucket)
		if bucket == nil {
			return nil
		}
		c := bucket.ReadCursor()
		defer c.Close()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := fn(k[len(prefix):], v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.E(op, err)
	}
	return nil
}

// EncodeExtensionKey builds a full on-disk key for an extension-owned tag,
// matching the layout encodeKey produces for core tags.
func EncodeExtensionKey(tag Tag, subKey ...[]byte) []byte {
	return encodeKey(tag, subKey...)
}
