// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"crypto/sha256"

	"github.com/umbracoin/walletdb"
	"github.com/umbracoin/errors"
)

// LoadResult is the outcome of a LoadWallet call, returned to the caller
// which maps it to a user-facing message.
type LoadResult int

const (
	LoadOk LoadResult = iota
	NonCriticalError
	TooNew
	Corrupt
	NeedRewrite
	LoadFail
)

func (r LoadResult) String() string {
	switch r {
	case LoadOk:
		return "LoadOk"
	case NonCriticalError:
		return "NonCriticalError"
	case TooNew:
		return "TooNew"
	case Corrupt:
		return "Corrupt"
	case NeedRewrite:
		return "NeedRewrite"
	case LoadFail:
		return "LoadFail"
	default:
		return "unknown"
	}
}

// FeatureLatest is the newest minversion this implementation can load.
// A file whose minversion record exceeds this is TooNew.
const FeatureLatest uint32 = 160000

// CurrentVersion is the writer version this implementation stamps onto a
// rewritten file, as a post-scan action: rewrite version if the file's
// writer version is below it and no corruption occurred.
const CurrentVersion uint32 = 160000

// legacyEncryptedRewriteVersions are the historical encrypted-format
// versions that require a full-database rewrite on load.
var legacyEncryptedRewriteVersions = map[uint32]bool{40000: true, 50000: true}

// LockToken proves that the caller holds the wallet's exclusive lock for
// the duration of a LoadWallet call, a borrowed-guard token passed into the
// loader rather than the loader acquiring its own lock. Obtain one only
// while actually holding that lock.
type LockToken struct{}

// NewLockToken constructs a LockToken. Call this only while already
// holding the wallet's exclusive lock.
func NewLockToken() LockToken { return LockToken{} }

// Loader drives the full-database scan. Cryptographic and consensus
// primitives are injected rather than linked: this package never derives
// a key or validates a transaction itself.
type Loader struct {
	// KeyValidator re-derives a public key from a private key and reports
	// whether it matches pubKey. Used only when a key/wkey record lacks
	// its integrity hash. A nil validator accepts every key.
	KeyValidator func(pubKey, privKey []byte) bool

	// TxVerifier performs the consensus check on a raw transaction. A nil
	// verifier accepts every transaction.
	TxVerifier func(rawTx []byte) error
}

type loadState struct {
	nKeys, nCKeys, nWatchKeys, nKeyMeta int
	masterKeyIDs                       map[uint32]bool
	masterKeyMaxID                     uint32
	unorderedTxSeen                    bool
	rewriteTxs                         []*TxRecord
	fileVersion                        uint32
	sawVersion                         bool
	encrypted                          bool
	sawCorruption                      bool
	sawTooNew                          bool
	sawNonCritical                     bool
	unknownCount                       int
	firstKeyTime                       int64
	bestBlockLocator                   []byte
	bestBlockNoMerkleLocator           []byte
}

// LoadWallet performs the full-database scan, dispatching every decodable
// record into sink. _ is a LockToken proving the caller holds the wallet's
// exclusive lock for the duration of the call.
func (l *Loader) LoadWallet(db *DB, sink Sink, _ LockToken) (LoadResult, error) {
	const op errors.Op = "store.Loader.LoadWallet"

	st := &loadState{masterKeyIDs: make(map[uint32]bool)}

	// minversion gate: a file requiring a newer implementation is
	// rejected before any record is dispatched.
	minVersionRaw, err := NewBatch(db).ReadRaw(MinVersionKey())
	if err != nil {
		return LoadFail, errors.E(op, errors.IO, err)
	}
	if minVersionRaw != nil {
		minVersion, err := DecodeUint32Value(minVersionRaw)
		if err != nil {
			return LoadFail, errors.E(op, err)
		}
		if minVersion > FeatureLatest {
			return TooNew, nil
		}
	}

	err = walletdb.View(nil, db.DB, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(rootBucket)
		if bucket == nil {
			return nil
		}
		c := bucket.ReadCursor()
		defer c.Close()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			l.dispatch(st, sink, k, v)
		}
		return nil
	})
	if err != nil {
		return LoadFail, errors.E(op, errors.IO, err)
	}

	// Post-scan actions.
	if st.unorderedTxSeen {
		if err := sink.ReorderTransactions(); err != nil {
			st.sawNonCritical = true
		}
	}
	for _, rec := range st.rewriteTxs {
		rec.TimeReceivedIsTxTime = 0
		_ = NewBatch(db).WriteTx(rec)
	}
	if !st.sawCorruption && st.sawVersion && st.fileVersion < CurrentVersion {
		_ = NewBatch(db).WriteVersion(CurrentVersion)
	}
	if st.encrypted && st.sawVersion && legacyEncryptedRewriteVersions[st.fileVersion] {
		return NeedRewrite, nil
	}
	if st.nKeys+st.nCKeys+st.nWatchKeys != st.nKeyMeta {
		sink.MarkFirstKeyTimeUnreliable()
	}
	if st.firstKeyTime != 0 {
		sink.UpdateTimeFirstKey(st.firstKeyTime)
	}
	// A non-empty bestblock locator wins over bestblock_nomerkle; the
	// writer never produces one, so this branch exists only for files
	// produced by older writers.
	winningLocator := st.bestBlockNoMerkleLocator
	if len(st.bestBlockLocator) > 0 {
		winningLocator = st.bestBlockLocator
	}
	if err := sink.SetBestBlock(winningLocator); err != nil {
		st.sawNonCritical = true
	}
	sink.SetMasterKeyMaxID(st.masterKeyMaxID)

	switch {
	case st.sawTooNew:
		return TooNew, nil
	case st.sawCorruption:
		return Corrupt, nil
	case st.sawNonCritical:
		return NonCriticalError, nil
	default:
		return LoadOk, nil
	}
}

// dispatch decodes and handles a single (key, value) pair, classifying any
// failure into st by severity. It never returns an error: failures are
// recorded in st and scanning continues — classify, log, and keep going
// rather than aborting the whole load over one bad record.
func (l *Loader) dispatch(st *loadState, sink Sink, rawKey, value []byte) {
	tag, subKey, err := decodeTag(rawKey)
	if err != nil {
		log.Warnf("store: undecodable record key, treating as corrupt: %v", err)
		st.sawCorruption = true
		return
	}

	switch tag {
	case TagName:
		address, perr := newReader(subKey).getVarString()
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		rec, derr := DecodeNameValue(address, value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.SetAddressBookName(address, rec.Label); err != nil {
			st.sawNonCritical = true
		}

	case TagPurpose:
		address, perr := newReader(subKey).getVarString()
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		rec, derr := DecodePurposeValue(address, value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.SetAddressBookPurpose(address, rec.Purpose); err != nil {
			st.sawNonCritical = true
		}

	case TagTx:
		if len(subKey) != 32 {
			st.sawNonCritical = true
			return
		}
		var hash [32]byte
		copy(hash[:], subKey)
		rec, derr := DecodeTxValue(hash, value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if l.TxVerifier != nil {
			if verr := l.TxVerifier(rec.RawTx); verr != nil {
				st.sawNonCritical = true
			}
		}
		if rec.NeedsLegacyRepair() {
			st.rewriteTxs = append(st.rewriteTxs, rec)
		}
		if rec.OrderPos == UnorderedPos {
			st.unorderedTxSeen = true
		}
		if err := sink.LoadToWallet(rec); err != nil {
			st.sawNonCritical = true
		}

	case TagKey:
		pubKey, perr := newReader(subKey).getVarBytes()
		if perr != nil {
			st.sawCorruption = true
			return
		}
		rec, derr := DecodeKeyValue(pubKey, value)
		if derr != nil {
			st.sawCorruption = true
			return
		}
		if !l.verifyKeyIntegrity(rec.PubKey, rec.PrivKey, rec.Hash, rec.HasHash) {
			st.sawCorruption = true
			return
		}
		st.nKeys++
		if err := sink.LoadKey(rec.PubKey, rec.PrivKey); err != nil {
			st.sawCorruption = true
		}

	case TagWKey:
		pubKey, perr := newReader(subKey).getVarBytes()
		if perr != nil {
			st.sawCorruption = true
			return
		}
		rec, derr := DecodeWKeyValue(pubKey, value)
		if derr != nil {
			st.sawCorruption = true
			return
		}
		var zero [32]byte
		if !l.verifyKeyIntegrity(rec.PubKey, rec.PrivKey, zero, false) {
			st.sawCorruption = true
			return
		}
		st.nKeys++
		if err := sink.LoadKey(rec.PubKey, rec.PrivKey); err != nil {
			st.sawCorruption = true
		}

	case TagCKey:
		pubKey, perr := newReader(subKey).getVarBytes()
		if perr != nil {
			st.sawCorruption = true
			return
		}
		rec, derr := DecodeCKeyValue(pubKey, value)
		if derr != nil {
			st.sawCorruption = true
			return
		}
		st.nCKeys++
		st.encrypted = true
		sink.MarkEncrypted()
		if err := sink.LoadCryptedKey(rec.PubKey, rec.EncryptedKey); err != nil {
			st.sawCorruption = true
		}

	case TagMKey:
		id, perr := newReader(subKey).getUint32()
		if perr != nil {
			st.sawCorruption = true
			return
		}
		if st.masterKeyIDs[id] {
			st.sawCorruption = true
			return
		}
		rec, derr := DecodeMasterKeyValue(id, value)
		if derr != nil {
			st.sawCorruption = true
			return
		}
		st.masterKeyIDs[id] = true
		if id > st.masterKeyMaxID {
			st.masterKeyMaxID = id
		}
		if err := sink.LoadMasterKey(id, rec); err != nil {
			st.sawCorruption = true
		}

	case TagKeyMeta:
		pubKey, perr := newReader(subKey).getVarBytes()
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		meta, derr := DecodeKeyMetadataValue(value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		st.nKeyMeta++
		if st.firstKeyTime == 0 || meta.CreateTime < st.firstKeyTime {
			st.firstKeyTime = meta.CreateTime
		}
		if err := sink.LoadKeyMetadata(pubKey, meta); err != nil {
			st.sawNonCritical = true
		}

	case TagWatchMeta:
		script, perr := newReader(subKey).getVarBytes()
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		meta, derr := DecodeKeyMetadataValue(value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.LoadScriptMetadata(script, meta); err != nil {
			st.sawNonCritical = true
		}

	case TagWatchScript:
		script, perr := newReader(subKey).getVarBytes()
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		st.nWatchKeys++
		if err := sink.LoadWatchOnly(script); err != nil {
			st.sawNonCritical = true
		}

	case TagCScript:
		if len(subKey) != 20 {
			st.sawNonCritical = true
			return
		}
		var hash [20]byte
		copy(hash[:], subKey)
		rec, derr := DecodeCScriptValue(hash, value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.LoadCScript(rec); err != nil {
			st.sawNonCritical = true
		}

	case TagPool:
		index, perr := newReader(subKey).getUint64()
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		rec, derr := DecodeKeyPoolValue(index, value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.LoadKeyPool(rec); err != nil {
			st.sawNonCritical = true
		}

	case TagBestBlock:
		rec, derr := DecodeBestBlockValue(value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		st.bestBlockLocator = rec.Locator

	case TagBestBlockNoMerkle:
		rec, derr := DecodeBestBlockValue(value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		st.bestBlockNoMerkleLocator = rec.Locator

	case TagOrderPosNext, TagAcEntry:
		// Bookkeeping-only; no dispatch into the sink.

	case TagMinVersion:
		// Already handled before the scan began.

	case TagVersion:
		v, derr := DecodeUint32Value(value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		st.fileVersion = v
		st.sawVersion = true
		if err := sink.LoadMinVersion(v); err != nil {
			st.sawNonCritical = true
		}

	case TagDefaultKey:
		// Decode and validate, but the value is discarded — never
		// exposed on Sink.
		if _, derr := DecodeDefaultKeyValue(value); derr != nil {
			st.sawCorruption = true
		}

	case TagDestData:
		address, key, perr := decodeDestDataSubKey(subKey)
		if perr != nil {
			st.sawNonCritical = true
			return
		}
		rec, derr := DecodeDestDataValue(address, key, value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.LoadDestData(rec); err != nil {
			st.sawNonCritical = true
		}

	case TagHDChain:
		chain, derr := DecodeHDChainValue(value)
		if derr != nil {
			st.sawNonCritical = true
			return
		}
		if err := sink.SetHDChain(chain); err != nil {
			st.sawNonCritical = true
		}

	case TagFlags:
		flags, derr := DecodeFlagsValue(value)
		if derr != nil {
			st.sawTooNew = true
			return
		}
		// Whether an unrecognized flags bit is tolerable is the wallet's
		// judgment, not a fixed bitmask in the persistence core.
		if err := sink.SetWalletFlags(flags); err != nil {
			if errors.Is(errors.TooNew, err) {
				st.sawTooNew = true
			} else {
				st.sawNonCritical = true
			}
		}

	default:
		if handler, ok := lookupExtension(tag); ok {
			if err := handler(subKey, value); err != nil {
				st.sawNonCritical = true
			}
			return
		}
		st.unknownCount++
	}
}

// verifyKeyIntegrity recomputes and compares the integrity hash when
// present, otherwise falls back to the injected KeyValidator.
func (l *Loader) verifyKeyIntegrity(pubKey, privKey []byte, hash [32]byte, hasHash bool) bool {
	if hasHash {
		want := sha256.Sum256(append(append([]byte{}, pubKey...), privKey...))
		return want == hash
	}
	if l.KeyValidator == nil {
		return true
	}
	return l.KeyValidator(pubKey, privKey)
}
