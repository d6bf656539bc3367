// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/umbracoin/errors"
)

// A fresh encrypted wallet round-trips through LoadWallet: the crypted key
// comes back, the plaintext form stays empty, and the master key that
// encrypted it is in the sink's master-key map.
func TestLoadWallet_EncryptedRoundTrip(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)

	require.NoError(t, batch.WriteMasterKey(&MasterKeyRecord{ID: 1, EncryptedKey: []byte("secret")}))
	pub := []byte("pubkey-P")
	require.NoError(t, batch.WriteCryptedKey(pub, []byte("encrypted"), &KeyMetadata{CreateTime: 100}))

	loader := &Loader{}
	sink := NewMemorySink()
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, LoadOk, result)
	require.True(t, sink.Encrypted)
	require.Len(t, sink.CryptedKeys, 1)
	require.Contains(t, sink.CryptedKeys, string(pub))
	require.Empty(t, sink.Keys)
	require.Contains(t, sink.MasterKeys, uint32(1))
	require.Equal(t, []byte("secret"), sink.MasterKeys[1].EncryptedKey)
	require.Equal(t, uint32(1), sink.MasterKeyMaxID)
}

// Address book entries (`name`/`purpose`) round-trip through LoadWallet
// into the sink's address book.
func TestLoadWallet_AddressBookRoundTrip(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)

	require.NoError(t, batch.WriteName("addr1", "my label"))
	require.NoError(t, batch.WritePurpose("addr1", "receive"))
	require.NoError(t, batch.WriteName("addr2", "other label"))

	loader := &Loader{}
	sink := NewMemorySink()
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, LoadOk, result)

	require.Contains(t, sink.AddressBook, "addr1")
	require.Equal(t, "my label", sink.AddressBook["addr1"].Label)
	require.Equal(t, "receive", sink.AddressBook["addr1"].Purpose)
	require.Contains(t, sink.AddressBook, "addr2")
	require.Equal(t, "other label", sink.AddressBook["addr2"].Label)
}

// A nonzero flags value round-trips through LoadWallet rather than being
// rejected as TooNew: whether a flag bit is tolerable is a wallet-level
// judgment reported via Sink.SetWalletFlags's return value, not a fixed
// bitmask in the persistence core.
func TestLoadWallet_FlagsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	require.NoError(t, batch.WriteFlags(0x1))

	loader := &Loader{}
	sink := NewMemorySink()
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, LoadOk, result)
	require.Equal(t, uint64(0x1), sink.Flags)
}

// A Sink that rejects a flags value as TooNew propagates that
// classification out of LoadWallet.
func TestLoadWallet_FlagsRejectedByWallet(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	require.NoError(t, batch.WriteFlags(0x2))

	loader := &Loader{}
	sink := &rejectFlagsSink{MemorySink: NewMemorySink()}
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, TooNew, result)
}

type rejectFlagsSink struct {
	*MemorySink
}

func (s *rejectFlagsSink) SetWalletFlags(flags uint64) error {
	return errors.E(errors.TooNew, errors.Errorf("unknown flag bits"))
}

// A duplicate master-key id is Corrupt. A flat KV bucket cannot itself
// hold two values under one key, so this exercises
// the loader's duplicate-id bookkeeping directly at the dispatch level —
// the same code path a tampered file with colliding encoded keys would hit.
func TestLoadWallet_DuplicateMasterKeyID(t *testing.T) {
	loader := &Loader{}
	st := &loadState{masterKeyIDs: make(map[uint32]bool)}
	sink := NewMemorySink()

	rawKey := MasterKeyKey(1)
	value := (&MasterKeyRecord{ID: 1, EncryptedKey: []byte("a")}).EncodeValue()

	loader.dispatch(st, sink, rawKey, value)
	require.False(t, st.sawCorruption)

	loader.dispatch(st, sink, rawKey, value)
	require.True(t, st.sawCorruption)
}

// A well-formed key plus a tx that fails verification yields
// NonCriticalError, with the good key still loaded.
func TestLoadWallet_ToleratedNonCriticalError(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)

	pub := []byte("pub-good")
	require.NoError(t, batch.WriteKey(pub, []byte("priv"), mustHash(0), false, &KeyMetadata{CreateTime: 1}))
	require.NoError(t, batch.WriteTx(&TxRecord{Hash: mustHash(5), RawTx: []byte("badtx"), OrderPos: 0}))

	loader := &Loader{
		KeyValidator: func(pubKey, privKey []byte) bool { return true },
		TxVerifier: func(rawTx []byte) error {
			return errors.New("tx verification failed")
		},
	}
	sink := NewMemorySink()
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, NonCriticalError, result)
	require.Contains(t, sink.Keys, string(pub))
}

// minversion beyond FeatureLatest is TooNew with no dispatch.
func TestLoadWallet_TooNew(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	require.NoError(t, batch.WriteMinVersion(FeatureLatest+1))
	require.NoError(t, batch.WriteKey([]byte("pub"), []byte("priv"), mustHash(0), false, &KeyMetadata{}))

	loader := &Loader{KeyValidator: func(pubKey, privKey []byte) bool { return true }}
	sink := NewMemorySink()
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, TooNew, result)
	require.Empty(t, sink.Keys)
}

func TestLoadWallet_LegacyTimestampRepairBand(t *testing.T) {
	rec := &TxRecord{Hash: mustHash(1), TimeReceivedIsTxTime: 31500}
	require.True(t, rec.NeedsLegacyRepair())
	rec.TimeReceivedIsTxTime = 31404
	require.True(t, rec.NeedsLegacyRepair())
	rec.TimeReceivedIsTxTime = 31703
	require.True(t, rec.NeedsLegacyRepair())
	rec.TimeReceivedIsTxTime = 31704
	require.False(t, rec.NeedsLegacyRepair())
	rec.TimeReceivedIsTxTime = 31403
	require.False(t, rec.NeedsLegacyRepair())
}

// A non-empty bestblock wins over bestblock_nomerkle; an empty bestblock
// with a valid bestblock_nomerkle yields the latter.
func TestLoadWallet_BestBlockPrecedence(t *testing.T) {
	t.Run("nonempty bestblock wins", func(t *testing.T) {
		db := newTestDB(t)
		batch := NewBatch(db)
		require.NoError(t, batch.WriteIC(BestBlockKey(), (&BestBlockRecord{Locator: []byte("legacy-locator")}).EncodeValue(), true))
		require.NoError(t, batch.WriteIC(BestBlockNoMerkleKey(), (&BestBlockRecord{Locator: []byte("nomerkle-locator")}).EncodeValue(), true))

		loader := &Loader{}
		sink := NewMemorySink()
		result, err := loader.LoadWallet(db, sink, NewLockToken())
		require.NoError(t, err)
		require.Equal(t, LoadOk, result)
		require.True(t, sink.SawBestBlock)
		require.Equal(t, []byte("legacy-locator"), sink.BestBlock)
	})

	t.Run("empty bestblock falls back to nomerkle", func(t *testing.T) {
		db := newTestDB(t)
		batch := NewBatch(db)
		require.NoError(t, batch.WriteBestBlock([]byte("real-locator")))

		loader := &Loader{}
		sink := NewMemorySink()
		result, err := loader.LoadWallet(db, sink, NewLockToken())
		require.NoError(t, err)
		require.Equal(t, LoadOk, result)
		require.True(t, sink.SawBestBlock)
		require.Equal(t, []byte("real-locator"), sink.BestBlock)
	})

	t.Run("neither present yields nil locator but SetBestBlock still called", func(t *testing.T) {
		db := newTestDB(t)
		loader := &Loader{}
		sink := NewMemorySink()
		result, err := loader.LoadWallet(db, sink, NewLockToken())
		require.NoError(t, err)
		require.Equal(t, LoadOk, result)
		require.True(t, sink.SawBestBlock)
		require.Nil(t, sink.BestBlock)
	})
}

// A key record carrying an integrity hash is accepted when the hash
// matches sha256(pubKey||privKey) and rejected as Corrupt when it doesn't,
// without ever consulting KeyValidator.
func TestLoadWallet_KeyIntegrityHash(t *testing.T) {
	t.Run("matching hash loads the key", func(t *testing.T) {
		db := newTestDB(t)
		batch := NewBatch(db)
		pub := []byte("pub-hashed")
		priv := []byte("priv-hashed")
		hash := sha256.Sum256(append(append([]byte{}, pub...), priv...))
		require.NoError(t, batch.WriteKey(pub, priv, hash, true, &KeyMetadata{CreateTime: 1}))

		loader := &Loader{}
		sink := NewMemorySink()
		result, err := loader.LoadWallet(db, sink, NewLockToken())
		require.NoError(t, err)
		require.Equal(t, LoadOk, result)
		require.Contains(t, sink.Keys, string(pub))
	})

	t.Run("mismatching hash is corrupt", func(t *testing.T) {
		db := newTestDB(t)
		batch := NewBatch(db)
		pub := []byte("pub-tampered")
		priv := []byte("priv-tampered")
		var wrongHash [32]byte
		wrongHash[0] = 0xff
		require.NoError(t, batch.WriteKey(pub, priv, wrongHash, true, &KeyMetadata{CreateTime: 1}))

		loader := &Loader{}
		sink := NewMemorySink()
		result, err := loader.LoadWallet(db, sink, NewLockToken())
		require.NoError(t, err)
		require.Equal(t, Corrupt, result)
		require.Empty(t, sink.Keys)
	})
}

func TestWriteCryptedKeyErasesPlaintextForms(t *testing.T) {
	db := newTestDB(t)
	batch := NewBatch(db)
	pub := []byte("pub-enc")

	require.NoError(t, batch.WriteKey(pub, []byte("priv"), mustHash(0), false, &KeyMetadata{}))
	require.NoError(t, batch.WriteCryptedKey(pub, []byte("ct"), &KeyMetadata{}))

	loader := &Loader{KeyValidator: func(pubKey, privKey []byte) bool { return true }}
	sink := NewMemorySink()
	result, err := loader.LoadWallet(db, sink, NewLockToken())
	require.NoError(t, err)
	require.Equal(t, LoadOk, result)
	require.Empty(t, sink.Keys, "WriteCryptedKey must erase any prior key/wkey for the same public key")
	require.Contains(t, sink.CryptedKeys, string(pub))
}
