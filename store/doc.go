// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store implements the wallet persistence core: a typed,
// record-oriented overlay over a walletdb.DB that persists keys, encrypted
// keys, master keys, transactions, address book entries, HD chain state,
// the key pool, script metadata, and bookkeeping records under one flat
// tagged keyspace.
//
// No tag carries a record header; the ASCII tag prefixing every key is the
// sole discriminator (see tags.go). Values are encoded with the codec in
// codec.go, a fixed-endianness, length-prefixed format that must remain
// byte-identical to the legacy wire format it descends from.
package store
