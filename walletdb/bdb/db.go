// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bdb implements the walletdb.DB interface using go.etcd.io/bbolt as
// the embedded B-tree KV engine. It registers itself under the driver name
// "bdb" at init time.
package bdb

import (
	"github.com/umbracoin/walletdb"
	"github.com/umbracoin/errors"
	bolt "go.etcd.io/bbolt"
)

func convertErr(err error) error {
	if err == nil {
		return nil
	}
	var kind errors.Kind
	switch err {
	case bolt.ErrInvalid:
		kind = errors.IO
	case bolt.ErrDatabaseNotOpen, bolt.ErrTxNotWritable, bolt.ErrTxClosed:
		kind = errors.Invalid
	case bolt.ErrBucketNameRequired, bolt.ErrKeyRequired, bolt.ErrKeyTooLarge,
		bolt.ErrValueTooLarge, bolt.ErrIncompatibleValue:
		kind = errors.Invalid
	case bolt.ErrBucketNotFound:
		kind = errors.NotExist
	case bolt.ErrBucketExists:
		kind = errors.Exist
	default:
		kind = errors.IO
	}
	return errors.E(kind, err)
}

// transaction implements walletdb.ReadTx / walletdb.ReadWriteTx over a bbolt
// transaction.
type transaction struct {
	boltTx *bolt.Tx
}

func (tx *transaction) ReadBucket(key []byte) walletdb.ReadBucket {
	return tx.ReadWriteBucket(key)
}

func (tx *transaction) ReadWriteBucket(key []byte) walletdb.ReadWriteBucket {
	b := tx.boltTx.Bucket(key)
	if b == nil {
		return nil
	}
	return (*bucket)(b)
}

func (tx *transaction) CreateTopLevelBucket(key []byte) (walletdb.ReadWriteBucket, error) {
	b, err := tx.boltTx.CreateBucketIfNotExists(key)
	if err != nil {
		return nil, convertErr(err)
	}
	return (*bucket)(b), nil
}

func (tx *transaction) DeleteTopLevelBucket(key []byte) error {
	return convertErr(tx.boltTx.DeleteBucket(key))
}

func (tx *transaction) Commit() error {
	return convertErr(tx.boltTx.Commit())
}

func (tx *transaction) Rollback() error {
	return convertErr(tx.boltTx.Rollback())
}

// bucket implements walletdb.ReadWriteBucket over a bbolt bucket.
type bucket bolt.Bucket

var _ walletdb.ReadWriteBucket = (*bucket)(nil)

func (b *bucket) NestedReadWriteBucket(key []byte) walletdb.ReadWriteBucket {
	nested := (*bolt.Bucket)(b).Bucket(key)
	if nested == nil {
		return nil
	}
	return (*bucket)(nested)
}

func (b *bucket) NestedReadBucket(key []byte) walletdb.ReadBucket {
	return b.NestedReadWriteBucket(key)
}

func (b *bucket) CreateBucket(key []byte) (walletdb.ReadWriteBucket, error) {
	nested, err := (*bolt.Bucket)(b).CreateBucket(key)
	if err != nil {
		return nil, convertErr(err)
	}
	return (*bucket)(nested), nil
}

func (b *bucket) CreateBucketIfNotExists(key []byte) (walletdb.ReadWriteBucket, error) {
	nested, err := (*bolt.Bucket)(b).CreateBucketIfNotExists(key)
	if err != nil {
		return nil, convertErr(err)
	}
	return (*bucket)(nested), nil
}

func (b *bucket) DeleteNestedBucket(key []byte) error {
	return convertErr((*bolt.Bucket)(b).DeleteBucket(key))
}

func (b *bucket) ForEach(fn func(k, v []byte) error) error {
	return convertErr((*bolt.Bucket)(b).ForEach(fn))
}

func (b *bucket) Put(key, value []byte) error {
	return convertErr((*bolt.Bucket)(b).Put(key, value))
}

func (b *bucket) Get(key []byte) []byte {
	return (*bolt.Bucket)(b).Get(key)
}

func (b *bucket) Delete(key []byte) error {
	return convertErr((*bolt.Bucket)(b).Delete(key))
}

func (b *bucket) ReadCursor() walletdb.ReadCursor {
	return b.ReadWriteCursor()
}

func (b *bucket) ReadWriteCursor() walletdb.ReadWriteCursor {
	return (*cursor)((*bolt.Bucket)(b).Cursor())
}

// cursor implements walletdb.ReadWriteCursor over a bbolt cursor.
//
// Open cursors are not tracked across bucket mutations; any modification
// other than cursor.Delete invalidates the cursor and it must be
// repositioned.
type cursor bolt.Cursor

func (c *cursor) Delete() error {
	return convertErr((*bolt.Cursor)(c).Delete())
}

func (c *cursor) First() (key, value []byte) { return (*bolt.Cursor)(c).First() }
func (c *cursor) Last() (key, value []byte)  { return (*bolt.Cursor)(c).Last() }
func (c *cursor) Next() (key, value []byte)  { return (*bolt.Cursor)(c).Next() }
func (c *cursor) Prev() (key, value []byte)  { return (*bolt.Cursor)(c).Prev() }

func (c *cursor) Seek(seek []byte) (key, value []byte) {
	return (*bolt.Cursor)(c).Seek(seek)
}

func (c *cursor) Close() {}

// db implements walletdb.DB over a *bbolt.DB.
type db bolt.DB

var _ walletdb.DB = (*db)(nil)

func (d *db) beginTx(writable bool) (*transaction, error) {
	boltTx, err := (*bolt.DB)(d).Begin(writable)
	if err != nil {
		return nil, convertErr(err)
	}
	return &transaction{boltTx: boltTx}, nil
}

func (d *db) BeginReadTx() (walletdb.ReadTx, error) {
	return d.beginTx(false)
}

func (d *db) BeginReadWriteTx() (walletdb.ReadWriteTx, error) {
	return d.beginTx(true)
}

// FlushDB is part of the walletdb.DB interface. bbolt already syncs on every
// commit (unless NoSync is set), so this performs a best-effort explicit
// sync of the underlying file for engines where NoSync was configured.
func (d *db) FlushDB() error {
	return convertErr((*bolt.DB)(d).Sync())
}

func (d *db) Close() error {
	return convertErr((*bolt.DB)(d).Close())
}
