// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package walletdb provides the abstract transactional, bucketed key/value
// store that the wallet persistence core is layered on top of. It names the
// contract an embedded B-tree KV engine must satisfy; it does not implement
// one. See the bdb subpackage for a concrete driver.
//
// This interface was inspired heavily by the excellent boltdb project at
// https://github.com/boltdb/bolt by Ben B. Johnson.
package walletdb

import (
	"context"

	"github.com/umbracoin/errors"
)

// ReadTx represents a database transaction that can only be used for reads.
// If a database update must occur, use a ReadWriteTx.
type ReadTx interface {
	// ReadBucket opens the root bucket for read only access. Returns nil if
	// the bucket described by key does not exist.
	ReadBucket(key []byte) ReadBucket

	// Rollback closes the transaction, discarding any changes made by a
	// write transaction.
	Rollback() error
}

// ReadWriteTx represents a database transaction that can be used for both
// reads and writes.
type ReadWriteTx interface {
	ReadTx

	// ReadWriteBucket opens the root bucket for read/write access. Returns
	// nil if the bucket described by key does not exist.
	ReadWriteBucket(key []byte) ReadWriteBucket

	// CreateTopLevelBucket creates the top level bucket for key if it does
	// not exist. The newly created bucket is returned.
	CreateTopLevelBucket(key []byte) (ReadWriteBucket, error)

	// DeleteTopLevelBucket deletes the top level bucket for key. Errors if
	// the bucket cannot be found.
	DeleteTopLevelBucket(key []byte) error

	// Commit commits all changes made through the transaction's root
	// buckets and their sub-buckets to persistent storage.
	Commit() error
}

// ReadBucket represents a bucket that is only allowed to perform read
// operations.
type ReadBucket interface {
	// NestedReadBucket retrieves a nested bucket with the given key. Returns
	// nil if the bucket does not exist.
	NestedReadBucket(key []byte) ReadBucket

	// ForEach invokes fn with every key/value pair in the bucket. The value
	// is only valid for the duration of the call.
	ForEach(fn func(k, v []byte) error) error

	// Get returns the value for key, or nil if it does not exist. The
	// returned slice is only valid during the transaction.
	Get(key []byte) []byte

	// ReadCursor returns a cursor over the bucket's key/value pairs.
	ReadCursor() ReadCursor
}

// ReadWriteBucket represents a bucket that is allowed to perform both read
// and write operations.
type ReadWriteBucket interface {
	ReadBucket

	// NestedReadWriteBucket retrieves a nested bucket with the given key.
	// Returns nil if the bucket does not exist.
	NestedReadWriteBucket(key []byte) ReadWriteBucket

	// CreateBucket creates and returns a new nested bucket. Errors with code
	// Exist if the bucket already exists.
	CreateBucket(key []byte) (ReadWriteBucket, error)

	// CreateBucketIfNotExists creates and returns a new nested bucket if one
	// does not already exist.
	CreateBucketIfNotExists(key []byte) (ReadWriteBucket, error)

	// DeleteNestedBucket removes a nested bucket. Errors with code NotExist
	// if the bucket does not exist.
	DeleteNestedBucket(key []byte) error

	// Put saves the key/value pair to the bucket, overwriting any existing
	// value.
	Put(key, value []byte) error

	// Delete removes key from the bucket. Deleting a key that does not
	// exist is not an error.
	Delete(key []byte) error

	// ReadWriteCursor returns a cursor allowing iteration and in-place
	// deletion over the bucket's key/value pairs. Only one cursor may be
	// open at a time and must be closed before the transaction ends.
	ReadWriteCursor() ReadWriteCursor
}

// ReadCursor represents a read-only bucket cursor.
type ReadCursor interface {
	// First positions the cursor at the first key/value pair and returns it.
	First() (key, value []byte)

	// Last positions the cursor at the last key/value pair and returns it.
	Last() (key, value []byte)

	// Next advances the cursor and returns the new pair.
	Next() (key, value []byte)

	// Prev moves the cursor backward and returns the new pair.
	Prev() (key, value []byte)

	// Seek positions the cursor at seek, or at the next key after seek if
	// seek does not exist, and returns the pair found.
	Seek(seek []byte) (key, value []byte)

	// Close closes the cursor.
	Close()
}

// ReadWriteCursor additionally allows deleting the pair the cursor is
// positioned at.
type ReadWriteCursor interface {
	ReadCursor

	// Delete removes the current key/value pair without invalidating the
	// cursor.
	Delete() error
}

// BucketIsEmpty reports whether bucket has no key/value pairs or nested
// buckets.
func BucketIsEmpty(bucket ReadBucket) bool {
	c := bucket.ReadCursor()
	k, v := c.First()
	c.Close()
	return k == nil && v == nil
}

// DB represents an ACID database. All access is performed through read or
// read+write transactions.
type DB interface {
	// BeginReadTx opens a database read transaction.
	BeginReadTx() (ReadTx, error)

	// BeginReadWriteTx opens a database read+write transaction.
	BeginReadWriteTx() (ReadWriteTx, error)

	// FlushDB forces any buffered writes to stable storage. Safe to call
	// even when the engine already syncs on every commit.
	FlushDB() error

	// Close cleanly shuts down the database and syncs all data.
	Close() error
}

// View opens a read transaction and runs f with it. The transaction is
// rolled back after f returns or panics.
func View(ctx context.Context, db DB, f func(tx ReadTx) error) (err error) {
	tx, err := db.BeginReadTx()
	if err != nil {
		return err
	}
	defer func() {
		rollbackErr := tx.Rollback()
		if err == nil {
			err = rollbackErr
		}
	}()
	return f(tx)
}

// Update opens a read/write transaction and runs f with it. If f returns nil
// the transaction is committed; otherwise, or on panic, it is rolled back.
func Update(ctx context.Context, db DB, f func(tx ReadWriteTx) error) (err error) {
	const op errors.Op = "walletdb.Update"

	tx, err := db.BeginReadWriteTx()
	if err != nil {
		return errors.E(op, err)
	}

	panicked := true
	defer func() {
		if panicked || err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = f(tx)
	panicked = false
	return err
}

// Driver describes a backend driver registering itself with this package.
type Driver struct {
	// DbType uniquely identifies a database driver.
	DbType string

	// Create invokes the driver to create a new database.
	Create func(args ...interface{}) (DB, error)

	// Open invokes the driver to open an existing database.
	Open func(args ...interface{}) (DB, error)
}

var drivers = make(map[string]*Driver)

// RegisterDriver adds a backend database driver to the set of available
// drivers. Errors with code Exist if the driver is already registered.
func RegisterDriver(driver Driver) error {
	const op errors.Op = "walletdb.RegisterDriver"
	if _, exists := drivers[driver.DbType]; exists {
		return errors.E(op, errors.Exist, errors.Errorf("driver %q already registered", driver.DbType))
	}
	drivers[driver.DbType] = &driver
	return nil
}

// SupportedDrivers returns the names of all registered drivers.
func SupportedDrivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

// Create initializes and opens a database for the named driver type.
func Create(dbType string, args ...interface{}) (DB, error) {
	const op errors.Op = "walletdb.Create"
	drv, exists := drivers[dbType]
	if !exists {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("driver %q not registered", dbType))
	}
	return drv.Create(args...)
}

// Open opens an existing database for the named driver type.
func Open(dbType string, args ...interface{}) (DB, error) {
	const op errors.Op = "walletdb.Open"
	drv, exists := drivers[dbType]
	if !exists {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("driver %q not registered", dbType))
	}
	return drv.Open(args...)
}
