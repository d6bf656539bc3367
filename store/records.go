// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/umbracoin/errors"
)

// encodeKey builds a full on-disk key: the tag as a var-string followed by
// the tag-specific sub-key fields, already encoded by the caller.
func encodeKey(tag Tag, subKey ...[]byte) []byte {
	w := newWriter()
	w.putVarString(string(tag))
	for _, f := range subKey {
		w.putRaw(f)
	}
	return w.Bytes()
}

// decodeTag reads the leading tag from a raw on-disk key, returning the
// tag and the remaining, tag-specific sub-key bytes. A failure here is
// always catastrophic: an undecodable key means the keyspace itself is
// corrupt, not just one record's payload.
func decodeTag(rawKey []byte) (Tag, []byte, error) {
	const op errors.Op = "store.decodeTag"
	r := newReader(rawKey)
	s, err := r.getVarString()
	if err != nil {
		return "", nil, errors.E(op, errors.Corrupt, err)
	}
	return Tag(s), rawKey[r.pos:], nil
}

// varBytesSubKey encodes a single variable-length sub-key field (an
// address string, a public key, a script, ...).
func varBytesSubKey(b []byte) []byte {
	w := newWriter()
	w.putVarBytes(b)
	return w.Bytes()
}

// fixedSubKey encodes a fixed-size sub-key field (a 32-byte hash, a 20-byte
// script hash, a 4-byte or 8-byte integer id) verbatim, with no length
// prefix, matching the legacy format's fixed-width keys.
func fixedSubKey(b []byte) []byte { return b }

// --- name / purpose --------------------------------------------------

// NameRecord is an address book display-name entry.
type NameRecord struct {
	Address string
	Label   string
}

func NameKey(address string) []byte {
	return encodeKey(TagName, varBytesSubKey([]byte(address)))
}

func (r *NameRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarString(r.Label)
	return w.Bytes()
}

func DecodeNameValue(address string, value []byte) (*NameRecord, error) {
	const op errors.Op = "store.DecodeNameValue"
	r := newReader(value)
	label, err := r.getVarString()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &NameRecord{Address: address, Label: label}, nil
}

// PurposeRecord is an address book purpose annotation (send/receive/...).
type PurposeRecord struct {
	Address string
	Purpose string
}

func PurposeKey(address string) []byte {
	return encodeKey(TagPurpose, varBytesSubKey([]byte(address)))
}

func (r *PurposeRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarString(r.Purpose)
	return w.Bytes()
}

func DecodePurposeValue(address string, value []byte) (*PurposeRecord, error) {
	const op errors.Op = "store.DecodePurposeValue"
	r := newReader(value)
	purpose, err := r.getVarString()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &PurposeRecord{Address: address, Purpose: purpose}, nil
}

// --- tx ----------------------------------------------------------------

// UnorderedPos is the sentinel OrderPos value marking a transaction that
// has not yet been assigned a position by ReorderTransactions.
const UnorderedPos int64 = -1

// LegacyTimestampBandLow and LegacyTimestampBandHigh bound the historical
// fTimeReceivedIsTxTime quirk window; values inside this band trigger the
// documented repair.
const (
	LegacyTimestampBandLow  = 31404
	LegacyTimestampBandHigh = 31703
)

// TxRecord is the wallet's view of a transaction.
type TxRecord struct {
	Hash                 [32]byte
	RawTx                []byte
	TimeReceivedIsTxTime uint32
	TimeReceived         uint64
	FromMe               bool
	Spent                []bool
	OrderPos             int64
	Values               map[string]string
}

func TxKey(hash [32]byte) []byte {
	return encodeKey(TagTx, fixedSubKey(hash[:]))
}

func (r *TxRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.RawTx)
	w.putUint32(r.TimeReceivedIsTxTime)
	w.putUint64(r.TimeReceived)
	w.putBool(r.FromMe)
	w.putCompactSize(uint64(len(r.Spent)))
	for _, s := range r.Spent {
		w.putBool(s)
	}
	w.putInt64(r.OrderPos)
	w.putCompactSize(uint64(len(r.Values)))
	for k, v := range r.Values {
		w.putVarString(k)
		w.putVarString(v)
	}
	return w.Bytes()
}

func DecodeTxValue(hash [32]byte, value []byte) (*TxRecord, error) {
	const op errors.Op = "store.DecodeTxValue"
	r := newReader(value)

	raw, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	quirk, err := r.getUint32()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	received, err := r.getUint64()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	fromMe, err := r.getBool()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	nSpent, err := r.getCompactSize()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	spent := make([]bool, nSpent)
	for i := range spent {
		spent[i], err = r.getBool()
		if err != nil {
			return nil, errors.E(op, errors.Corrupt, err)
		}
	}
	orderPos, err := r.getInt64()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	nValues, err := r.getCompactSize()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	values := make(map[string]string, nValues)
	for i := uint64(0); i < nValues; i++ {
		k, err := r.getVarString()
		if err != nil {
			return nil, errors.E(op, errors.Corrupt, err)
		}
		v, err := r.getVarString()
		if err != nil {
			return nil, errors.E(op, errors.Corrupt, err)
		}
		values[k] = v
	}

	return &TxRecord{
		Hash:                 hash,
		RawTx:                raw,
		TimeReceivedIsTxTime: quirk,
		TimeReceived:         received,
		FromMe:               fromMe,
		Spent:                spent,
		OrderPos:             orderPos,
		Values:               values,
	}, nil
}

// NeedsLegacyRepair reports whether r falls in the historical quirk band
// and must be repaired and queued for rewrite.
func (r *TxRecord) NeedsLegacyRepair() bool {
	return r.TimeReceivedIsTxTime >= LegacyTimestampBandLow &&
		r.TimeReceivedIsTxTime <= LegacyTimestampBandHigh
}

// --- key / wkey / ckey ---------------------------------------------------

// KeyRecord is a plaintext private key with its optional integrity tag.
type KeyRecord struct {
	PubKey     []byte
	PrivKey    []byte
	Hash       [32]byte
	HasHash    bool
}

func KeyKey(pubKey []byte) []byte {
	return encodeKey(TagKey, varBytesSubKey(pubKey))
}

func (r *KeyRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.PrivKey)
	if r.HasHash {
		w.putRaw(r.Hash[:])
	}
	return w.Bytes()
}

func DecodeKeyValue(pubKey []byte, value []byte) (*KeyRecord, error) {
	const op errors.Op = "store.DecodeKeyValue"
	r := newReader(value)
	priv, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	rec := &KeyRecord{PubKey: pubKey, PrivKey: priv}
	hash, ok, err := r.optionalFixed(32)
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	if ok {
		copy(rec.Hash[:], hash)
		rec.HasHash = true
	}
	return rec, nil
}

// WKeyRecord is the legacy CWalletKey wrapper format.
type WKeyRecord struct {
	PubKey      []byte
	PrivKey     []byte
	TimeCreated int64
	TimeExpires int64
	Comment     string
}

func WKeyKey(pubKey []byte) []byte {
	return encodeKey(TagWKey, varBytesSubKey(pubKey))
}

func (r *WKeyRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.PrivKey)
	w.putInt64(r.TimeCreated)
	w.putInt64(r.TimeExpires)
	w.putVarString(r.Comment)
	return w.Bytes()
}

func DecodeWKeyValue(pubKey []byte, value []byte) (*WKeyRecord, error) {
	const op errors.Op = "store.DecodeWKeyValue"
	r := newReader(value)
	priv, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	created, err := r.getInt64()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	expires, err := r.getInt64()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	comment, err := r.getVarString()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &WKeyRecord{
		PubKey: pubKey, PrivKey: priv,
		TimeCreated: created, TimeExpires: expires, Comment: comment,
	}, nil
}

// CKeyRecord is the post-encryption form of a private key.
type CKeyRecord struct {
	PubKey       []byte
	EncryptedKey []byte
}

func CKeyKey(pubKey []byte) []byte {
	return encodeKey(TagCKey, varBytesSubKey(pubKey))
}

func (r *CKeyRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.EncryptedKey)
	return w.Bytes()
}

func DecodeCKeyValue(pubKey []byte, value []byte) (*CKeyRecord, error) {
	const op errors.Op = "store.DecodeCKeyValue"
	r := newReader(value)
	enc, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &CKeyRecord{PubKey: pubKey, EncryptedKey: enc}, nil
}

// --- mkey ----------------------------------------------------------------

// MasterKeyRecord holds KDF parameters and the AES-encrypted master secret.
type MasterKeyRecord struct {
	ID                   uint32
	EncryptedKey         []byte
	Salt                 []byte
	DerivationMethod     uint32
	DerivationIterations uint32
	OtherDerivationParams []byte
}

func MasterKeyKey(id uint32) []byte {
	w := newWriter()
	w.putUint32(id)
	return encodeKey(TagMKey, w.Bytes())
}

func (r *MasterKeyRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.EncryptedKey)
	w.putVarBytes(r.Salt)
	w.putUint32(r.DerivationMethod)
	w.putUint32(r.DerivationIterations)
	w.putVarBytes(r.OtherDerivationParams)
	return w.Bytes()
}

func DecodeMasterKeyValue(id uint32, value []byte) (*MasterKeyRecord, error) {
	const op errors.Op = "store.DecodeMasterKeyValue"
	r := newReader(value)
	enc, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	salt, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	method, err := r.getUint32()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	iters, err := r.getUint32()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	other, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &MasterKeyRecord{
		ID: id, EncryptedKey: enc, Salt: salt,
		DerivationMethod: method, DerivationIterations: iters,
		OtherDerivationParams: other,
	}, nil
}

// --- keymeta / watchmeta ---------------------------------------------------

// KeyMetadata carries creation time and HD derivation provenance for a key
// or watch-only script. Older files lack the trailing fields; per the
// optional-trailing-field rule they decode as zero values.
type KeyMetadata struct {
	Version              uint8
	CreateTime           int64
	HDKeypath            string
	HasHDMasterKeyID     bool
	HDMasterKeyID        [20]byte
	HasKeyOriginFP       bool
	KeyOriginFingerprint [4]byte
}

func KeyMetaKey(pubKey []byte) []byte {
	return encodeKey(TagKeyMeta, varBytesSubKey(pubKey))
}

func WatchMetaKey(script []byte) []byte {
	return encodeKey(TagWatchMeta, varBytesSubKey(script))
}

func (r *KeyMetadata) EncodeValue() []byte {
	w := newWriter()
	w.putUint8(r.Version)
	w.putInt64(r.CreateTime)
	w.putVarString(r.HDKeypath)
	if r.HasHDMasterKeyID {
		w.putRaw(r.HDMasterKeyID[:])
		if r.HasKeyOriginFP {
			w.putRaw(r.KeyOriginFingerprint[:])
		}
	}
	return w.Bytes()
}

func DecodeKeyMetadataValue(value []byte) (*KeyMetadata, error) {
	const op errors.Op = "store.DecodeKeyMetadataValue"
	r := newReader(value)
	version, err := r.getUint8()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	created, err := r.getInt64()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	path, _, err := r.optionalVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	m := &KeyMetadata{Version: version, CreateTime: created, HDKeypath: string(path)}
	masterID, ok, err := r.optionalFixed(20)
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	if ok {
		copy(m.HDMasterKeyID[:], masterID)
		m.HasHDMasterKeyID = true

		fp, ok, err := r.optionalFixed(4)
		if err != nil {
			return nil, errors.E(op, errors.Corrupt, err)
		}
		if ok {
			copy(m.KeyOriginFingerprint[:], fp)
			m.HasKeyOriginFP = true
		}
	}
	return m, nil
}

// --- watchs / cscript ---------------------------------------------------

func WatchScriptKey(script []byte) []byte {
	return encodeKey(TagWatchScript, varBytesSubKey(script))
}

// WatchScriptPresenceValue is the fixed single-byte presence marker stored
// under a watchs record.
var WatchScriptPresenceValue = []byte{'1'}

// Hash160 computes RIPEMD160(SHA256(data)), the legacy script/pubkey hash
// used to key cscript records.
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CScriptRecord is a P2SH redeem script keyed by its 20-byte hash.
type CScriptRecord struct {
	ScriptHash [20]byte
	Script     []byte
}

func CScriptKey(scriptHash [20]byte) []byte {
	return encodeKey(TagCScript, fixedSubKey(scriptHash[:]))
}

func (r *CScriptRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.Script)
	return w.Bytes()
}

func DecodeCScriptValue(scriptHash [20]byte, value []byte) (*CScriptRecord, error) {
	const op errors.Op = "store.DecodeCScriptValue"
	r := newReader(value)
	script, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &CScriptRecord{ScriptHash: scriptHash, Script: script}, nil
}

// --- pool ----------------------------------------------------------------

// KeyPoolRecord is a pre-generated reserve key.
type KeyPoolRecord struct {
	Index      uint64
	CreateTime int64
	PubKey     []byte
	Internal   bool
	HDKeypath  string
}

func KeyPoolKey(index uint64) []byte {
	w := newWriter()
	w.putUint64(index)
	return encodeKey(TagPool, w.Bytes())
}

func (r *KeyPoolRecord) EncodeValue() []byte {
	w := newWriter()
	w.putInt64(r.CreateTime)
	w.putVarBytes(r.PubKey)
	w.putBool(r.Internal)
	w.putVarString(r.HDKeypath)
	return w.Bytes()
}

func DecodeKeyPoolValue(index uint64, value []byte) (*KeyPoolRecord, error) {
	const op errors.Op = "store.DecodeKeyPoolValue"
	r := newReader(value)
	created, err := r.getInt64()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	pub, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	rec := &KeyPoolRecord{Index: index, CreateTime: created, PubKey: pub}
	internal, ok, err := func() (bool, bool, error) {
		if r.Empty() {
			return false, false, nil
		}
		v, err := r.getBool()
		return v, true, err
	}()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	if ok {
		rec.Internal = internal
	}
	if !r.Empty() {
		path, err := r.getVarString()
		if err != nil {
			return nil, errors.E(op, errors.Corrupt, err)
		}
		rec.HDKeypath = path
	}
	return rec, nil
}

// --- orderposnext / bestblock / version / defaultkey ---------------------

func OrderPosNextKey() []byte { return encodeKey(TagOrderPosNext) }

func EncodeInt64Value(v int64) []byte {
	w := newWriter()
	w.putInt64(v)
	return w.Bytes()
}

func DecodeInt64Value(value []byte) (int64, error) {
	const op errors.Op = "store.DecodeInt64Value"
	r := newReader(value)
	v, err := r.getInt64()
	if err != nil {
		return 0, errors.E(op, errors.Corrupt, err)
	}
	return v, nil
}

func BestBlockKey() []byte         { return encodeKey(TagBestBlock) }
func BestBlockNoMerkleKey() []byte { return encodeKey(TagBestBlockNoMerkle) }

// BestBlockRecord is an opaque block locator.
type BestBlockRecord struct {
	Locator []byte
}

func (r *BestBlockRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarBytes(r.Locator)
	return w.Bytes()
}

func DecodeBestBlockValue(value []byte) (*BestBlockRecord, error) {
	const op errors.Op = "store.DecodeBestBlockValue"
	r := newReader(value)
	locator, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &BestBlockRecord{Locator: locator}, nil
}

func MinVersionKey() []byte { return encodeKey(TagMinVersion) }
func VersionKey() []byte    { return encodeKey(TagVersion) }

func EncodeUint32Value(v uint32) []byte {
	w := newWriter()
	w.putUint32(v)
	return w.Bytes()
}

func DecodeUint32Value(value []byte) (uint32, error) {
	const op errors.Op = "store.DecodeUint32Value"
	r := newReader(value)
	v, err := r.getUint32()
	if err != nil {
		return 0, errors.E(op, errors.Corrupt, err)
	}
	return v, nil
}

func DefaultKeyKey() []byte { return encodeKey(TagDefaultKey) }

func EncodeDefaultKeyValue(pubKey []byte) []byte {
	w := newWriter()
	w.putVarBytes(pubKey)
	return w.Bytes()
}

func DecodeDefaultKeyValue(value []byte) ([]byte, error) {
	const op errors.Op = "store.DecodeDefaultKeyValue"
	r := newReader(value)
	pub, err := r.getVarBytes()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return pub, nil
}

// --- destdata --------------------------------------------------------

// DestDataRecord is an arbitrary per-address annotation.
type DestDataRecord struct {
	Address string
	Key     string
	Value   string
}

func DestDataKey(address, key string) []byte {
	return encodeKey(TagDestData, varBytesSubKey([]byte(address)), varBytesSubKey([]byte(key)))
}

func (r *DestDataRecord) EncodeValue() []byte {
	w := newWriter()
	w.putVarString(r.Value)
	return w.Bytes()
}

func DecodeDestDataValue(address, key string, value []byte) (*DestDataRecord, error) {
	const op errors.Op = "store.DecodeDestDataValue"
	r := newReader(value)
	v, err := r.getVarString()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	return &DestDataRecord{Address: address, Key: key, Value: v}, nil
}

// decodeDestDataSubKey decodes the (address, key) sub-key pair following the
// destdata tag.
func decodeDestDataSubKey(subKey []byte) (address, key string, err error) {
	const op errors.Op = "store.decodeDestDataSubKey"
	r := newReader(subKey)
	address, err = r.getVarString()
	if err != nil {
		return "", "", errors.E(op, errors.Corrupt, err)
	}
	key, err = r.getVarString()
	if err != nil {
		return "", "", errors.E(op, errors.Corrupt, err)
	}
	return address, key, nil
}

// --- hdchain --------------------------------------------------------

// HDChainRecord is the wallet's HD chain state.
type HDChainRecord struct {
	SeedID           [20]byte
	Version          uint32
	ExternalCounter  uint32
	InternalCounter  uint32
	Crypted          bool
}

func HDChainKey() []byte { return encodeKey(TagHDChain) }

func (r *HDChainRecord) EncodeValue() []byte {
	w := newWriter()
	w.putRaw(r.SeedID[:])
	w.putUint32(r.Version)
	w.putUint32(r.ExternalCounter)
	w.putUint32(r.InternalCounter)
	w.putBool(r.Crypted)
	return w.Bytes()
}

func DecodeHDChainValue(value []byte) (*HDChainRecord, error) {
	const op errors.Op = "store.DecodeHDChainValue"
	r := newReader(value)
	seedID, err := r.take(20)
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	version, err := r.getUint32()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	ext, err := r.getUint32()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	internal, err := r.getUint32()
	if err != nil {
		return nil, errors.E(op, errors.Corrupt, err)
	}
	rec := &HDChainRecord{Version: version, ExternalCounter: ext, InternalCounter: internal}
	copy(rec.SeedID[:], seedID)
	if !r.Empty() {
		crypted, err := r.getBool()
		if err != nil {
			return nil, errors.E(op, errors.Corrupt, err)
		}
		rec.Crypted = crypted
	}
	return rec, nil
}

// --- flags --------------------------------------------------------

func FlagsKey() []byte { return encodeKey(TagFlags) }

func EncodeFlagsValue(v uint64) []byte {
	w := newWriter()
	w.putUint64(v)
	return w.Bytes()
}

func DecodeFlagsValue(value []byte) (uint64, error) {
	const op errors.Op = "store.DecodeFlagsValue"
	r := newReader(value)
	v, err := r.getUint64()
	if err != nil {
		return 0, errors.E(op, errors.Corrupt, err)
	}
	return v, nil
}

func AcEntryKey() []byte { return encodeKey(TagAcEntry) }
