// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"sync/atomic"

	"github.com/umbracoin/walletdb"
	"github.com/umbracoin/errors"
)

// rootBucket is the single flat bucket all tagged records live under;
// the tag embedded in each key is the only discriminator.
var rootBucket = []byte("wallet")

// DB wraps a walletdb.DB with the per-database update counter that drives
// the flush scheduler.
type DB struct {
	walletdb.DB
	counter uint64
}

// Open wraps an already-opened walletdb.DB for use by this package.
func Open(kvdb walletdb.DB) *DB {
	return &DB{DB: kvdb}
}

// UpdateCounter returns the current value of the per-database update
// counter. Safe to call without any lock; it is a liveness hint only.
func (d *DB) UpdateCounter() uint64 {
	return atomic.LoadUint64(&d.counter)
}

func (d *DB) bumpCounter() uint64 {
	return atomic.AddUint64(&d.counter, 1)
}

// Batch is a typed facade over a single walletdb transaction. At most one
// transaction may be active on a batch at a time; TxnBegin on an
// already-active batch fails.
type Batch struct {
	db *DB
	tx walletdb.ReadWriteTx
}

// NewBatch returns a Batch bound to db. The returned Batch has no active
// transaction; callers may either invoke TxnBegin/TxnCommit/TxnAbort
// explicitly, or rely on each Write*/Erase* call running in its own
// single-operation transaction (autocommit).
func NewBatch(db *DB) *Batch {
	return &Batch{db: db}
}

// TxnBegin opens an explicit read/write transaction that subsequent calls
// reuse until TxnCommit or TxnAbort. Fails if a transaction is already
// active.
func (b *Batch) TxnBegin() error {
	const op errors.Op = "store.Batch.TxnBegin"
	if b.tx != nil {
		return errors.E(op, errors.Invalid, errors.Errorf("batch already has an active transaction"))
	}
	tx, err := b.db.BeginReadWriteTx()
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	b.tx = tx
	return nil
}

// TxnCommit commits the active explicit transaction.
func (b *Batch) TxnCommit() error {
	const op errors.Op = "store.Batch.TxnCommit"
	if b.tx == nil {
		return errors.E(op, errors.Invalid, errors.Errorf("no active transaction"))
	}
	err := b.tx.Commit()
	b.tx = nil
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}

// TxnAbort discards the active explicit transaction.
func (b *Batch) TxnAbort() error {
	const op errors.Op = "store.Batch.TxnAbort"
	if b.tx == nil {
		return errors.E(op, errors.Invalid, errors.Errorf("no active transaction"))
	}
	err := b.tx.Rollback()
	b.tx = nil
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}

// withTx runs fn against an active transaction, using the batch's explicit
// transaction if one is open, or a fresh single-operation transaction
// (autocommitted on success, rolled back on failure) otherwise.
func (b *Batch) withTx(fn func(tx walletdb.ReadWriteTx) error) error {
	const op errors.Op = "store.Batch.withTx"
	if b.tx != nil {
		return fn(b.tx)
	}

	tx, err := b.db.BeginReadWriteTx()
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}

func bucketOf(tx walletdb.ReadWriteTx) (walletdb.ReadWriteBucket, error) {
	const op errors.Op = "store.bucketOf"
	bucket, err := tx.CreateTopLevelBucket(rootBucket)
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return bucket, nil
}

// WriteIC is the single primitive all typed Write* operations funnel
// through. On success it increments the database's update counter.
// overwrite=false requires the key not already exist.
func (b *Batch) WriteIC(key, value []byte, overwrite bool) error {
	const op errors.Op = "store.Batch.WriteIC"
	err := b.withTx(func(tx walletdb.ReadWriteTx) error {
		bucket, err := bucketOf(tx)
		if err != nil {
			return err
		}
		if !overwrite && bucket.Get(key) != nil {
			return errors.E(op, errors.Exist, errors.Errorf("key already exists"))
		}
		if err := bucket.Put(key, value); err != nil {
			return errors.E(op, errors.IO, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.db.bumpCounter()
	return nil
}

// EraseIC is the single primitive all typed Erase* operations funnel
// through. On success it increments the database's update counter.
// Erasing a key that does not exist is not an error.
func (b *Batch) EraseIC(key []byte) error {
	const op errors.Op = "store.Batch.EraseIC"
	err := b.withTx(func(tx walletdb.ReadWriteTx) error {
		bucket, err := bucketOf(tx)
		if err != nil {
			return err
		}
		if err := bucket.Delete(key); err != nil {
			return errors.E(op, errors.IO, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.db.bumpCounter()
	return nil
}

// ReadRaw returns the raw value stored at key, or nil if absent.
func (b *Batch) ReadRaw(key []byte) ([]byte, error) {
	const op errors.Op = "store.Batch.ReadRaw"
	var value []byte
	if b.tx != nil {
		bucket := b.tx.ReadWriteBucket(rootBucket)
		if bucket != nil {
			value = bucket.Get(key)
		}
		return value, nil
	}
	err := walletdb.View(nil, b.db.DB, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(rootBucket)
		if bucket != nil {
			value = bucket.Get(key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return value, nil
}

// --- typed wrappers over the core taxonomy -----------------------------

func (b *Batch) WriteName(address, label string) error {
	return b.WriteIC(NameKey(address), (&NameRecord{Address: address, Label: label}).EncodeValue(), true)
}

func (b *Batch) EraseName(address string) error { return b.EraseIC(NameKey(address)) }

func (b *Batch) WritePurpose(address, purpose string) error {
	return b.WriteIC(PurposeKey(address), (&PurposeRecord{Address: address, Purpose: purpose}).EncodeValue(), true)
}

func (b *Batch) ErasePurpose(address string) error { return b.EraseIC(PurposeKey(address)) }

func (b *Batch) WriteTx(rec *TxRecord) error {
	return b.WriteIC(TxKey(rec.Hash), rec.EncodeValue(), true)
}

func (b *Batch) EraseTx(hash [32]byte) error { return b.EraseIC(TxKey(hash)) }

func (b *Batch) ReadTx(hash [32]byte) (*TxRecord, error) {
	value, err := b.ReadRaw(TxKey(hash))
	if err != nil || value == nil {
		return nil, err
	}
	return DecodeTxValue(hash, value)
}

// WriteKey writes keymeta then key, both non-overwriting, inside a single
// KV transaction: a crash between the two writes must never leave a
// keymeta record without its matching key.
func (b *Batch) WriteKey(pubKey, privKey []byte, hash [32]byte, hasHash bool, meta *KeyMetadata) error {
	const op errors.Op = "store.Batch.WriteKey"
	err := b.withTx(func(tx walletdb.ReadWriteTx) error {
		bucket, err := bucketOf(tx)
		if err != nil {
			return err
		}
		metaKey := KeyMetaKey(pubKey)
		if bucket.Get(metaKey) != nil {
			return errors.E(op, errors.Exist, errors.Errorf("keymeta already exists"))
		}
		if err := bucket.Put(metaKey, meta.EncodeValue()); err != nil {
			return errors.E(op, errors.IO, err)
		}
		keyKey := KeyKey(pubKey)
		if bucket.Get(keyKey) != nil {
			return errors.E(op, errors.Exist, errors.Errorf("key already exists"))
		}
		rec := &KeyRecord{PubKey: pubKey, PrivKey: privKey, Hash: hash, HasHash: hasHash}
		if err := bucket.Put(keyKey, rec.EncodeValue()); err != nil {
			return errors.E(op, errors.IO, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.db.bumpCounter()
	b.db.bumpCounter()
	return nil
}

func (b *Batch) WriteWKey(rec *WKeyRecord) error {
	return b.WriteIC(WKeyKey(rec.PubKey), rec.EncodeValue(), true)
}

func (b *Batch) EraseWKey(pubKey []byte) error { return b.EraseIC(WKeyKey(pubKey)) }

// WriteCryptedKey writes keymeta (overwrite), then ckey (no-overwrite),
// then erases any prior key/wkey for the same public key. All four
// operations run inside one KV transaction: a crypted key and a plaintext
// key/wkey for the same public key must never coexist.
func (b *Batch) WriteCryptedKey(pubKey, encryptedKey []byte, meta *KeyMetadata) error {
	const op errors.Op = "store.Batch.WriteCryptedKey"
	err := b.withTx(func(tx walletdb.ReadWriteTx) error {
		bucket, err := bucketOf(tx)
		if err != nil {
			return err
		}
		if err := bucket.Put(KeyMetaKey(pubKey), meta.EncodeValue()); err != nil {
			return errors.E(op, errors.IO, err)
		}
		ckeyKey := CKeyKey(pubKey)
		if bucket.Get(ckeyKey) != nil {
			return errors.E(op, errors.Exist, errors.Errorf("ckey already exists"))
		}
		rec := &CKeyRecord{PubKey: pubKey, EncryptedKey: encryptedKey}
		if err := bucket.Put(ckeyKey, rec.EncodeValue()); err != nil {
			return errors.E(op, errors.IO, err)
		}
		if err := bucket.Delete(KeyKey(pubKey)); err != nil {
			return errors.E(op, errors.IO, err)
		}
		if err := bucket.Delete(WKeyKey(pubKey)); err != nil {
			return errors.E(op, errors.IO, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		b.db.bumpCounter()
	}
	return nil
}

func (b *Batch) WriteMasterKey(rec *MasterKeyRecord) error {
	return b.WriteIC(MasterKeyKey(rec.ID), rec.EncodeValue(), false)
}

func (b *Batch) WriteKeyMetadata(pubKey []byte, meta *KeyMetadata) error {
	return b.WriteIC(KeyMetaKey(pubKey), meta.EncodeValue(), true)
}

func (b *Batch) WriteScriptMetadata(script []byte, meta *KeyMetadata) error {
	return b.WriteIC(WatchMetaKey(script), meta.EncodeValue(), true)
}

func (b *Batch) EraseScriptMetadata(script []byte) error {
	return b.EraseIC(WatchMetaKey(script))
}

func (b *Batch) WriteWatchOnly(script []byte, meta *KeyMetadata) error {
	if err := b.WriteScriptMetadata(script, meta); err != nil {
		return err
	}
	return b.WriteIC(WatchScriptKey(script), WatchScriptPresenceValue, true)
}

func (b *Batch) EraseWatchOnly(script []byte) error {
	if err := b.EraseScriptMetadata(script); err != nil {
		return err
	}
	return b.EraseIC(WatchScriptKey(script))
}

func (b *Batch) WriteCScript(rec *CScriptRecord) error {
	return b.WriteIC(CScriptKey(rec.ScriptHash), rec.EncodeValue(), true)
}

// AddCScript hashes script with Hash160 and stores it under the resulting
// key, the same derivation the original CWallet::AddCScript performs before
// calling into the persistence layer.
func (b *Batch) AddCScript(script []byte) error {
	return b.WriteCScript(&CScriptRecord{ScriptHash: Hash160(script), Script: script})
}

func (b *Batch) EraseCScript(scriptHash [20]byte) error {
	return b.EraseIC(CScriptKey(scriptHash))
}

func (b *Batch) WriteKeyPool(rec *KeyPoolRecord) error {
	return b.WriteIC(KeyPoolKey(rec.Index), rec.EncodeValue(), true)
}

func (b *Batch) EraseKeyPool(index uint64) error { return b.EraseIC(KeyPoolKey(index)) }

func (b *Batch) WriteOrderPosNext(pos int64) error {
	return b.WriteIC(OrderPosNextKey(), EncodeInt64Value(pos), true)
}

// WriteBestBlock always writes an empty bestblock locator and the real
// locator under bestblock_nomerkle, so versions that require a merkle
// branch automatically rescan.
func (b *Batch) WriteBestBlock(locator []byte) error {
	if err := b.WriteIC(BestBlockKey(), (&BestBlockRecord{Locator: nil}).EncodeValue(), true); err != nil {
		return err
	}
	return b.WriteIC(BestBlockNoMerkleKey(), (&BestBlockRecord{Locator: locator}).EncodeValue(), true)
}

func (b *Batch) WriteMinVersion(v uint32) error {
	return b.WriteIC(MinVersionKey(), EncodeUint32Value(v), true)
}

func (b *Batch) WriteVersion(v uint32) error {
	return b.WriteIC(VersionKey(), EncodeUint32Value(v), true)
}

func (b *Batch) WriteDefaultKey(pubKey []byte) error {
	return b.WriteIC(DefaultKeyKey(), EncodeDefaultKeyValue(pubKey), true)
}

func (b *Batch) WriteDestData(address, key, value string) error {
	return b.WriteIC(DestDataKey(address, key), (&DestDataRecord{Address: address, Key: key, Value: value}).EncodeValue(), true)
}

func (b *Batch) EraseDestData(address, key string) error {
	return b.EraseIC(DestDataKey(address, key))
}

func (b *Batch) WriteHDChain(rec *HDChainRecord) error {
	return b.WriteIC(HDChainKey(), rec.EncodeValue(), true)
}

func (b *Batch) WriteFlags(flags uint64) error {
	return b.WriteIC(FlagsKey(), EncodeFlagsValue(flags), true)
}
