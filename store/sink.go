// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// Sink is the narrow callback surface the loader dispatches decoded records
// into. It stands in for the in-memory wallet object, which this package
// treats as an external collaborator — no concrete wallet type is
// implemented here.
type Sink interface {
	LoadKey(pubKey, privKey []byte) error
	LoadCryptedKey(pubKey, encryptedKey []byte) error
	LoadKeyMetadata(pubKey []byte, meta *KeyMetadata) error
	LoadScriptMetadata(scriptHash []byte, meta *KeyMetadata) error
	LoadCScript(rec *CScriptRecord) error
	LoadWatchOnly(script []byte) error
	LoadKeyPool(rec *KeyPoolRecord) error
	LoadToWallet(tx *TxRecord) error
	LoadDestData(rec *DestDataRecord) error
	// SetAddressBookName and SetAddressBookPurpose restore a `name`/
	// `purpose` record into the wallet's address book.
	SetAddressBookName(address, label string) error
	SetAddressBookPurpose(address, purpose string) error
	// LoadMasterKey restores a decoded mkey record into the wallet's
	// master-key map.
	LoadMasterKey(id uint32, rec *MasterKeyRecord) error
	// SetMasterKeyMaxID reports the maximum mkey id observed during the
	// scan, once, after the scan completes.
	SetMasterKeyMaxID(id uint32)
	SetHDChain(chain *HDChainRecord) error
	SetWalletFlags(flags uint64) error
	// SetBestBlock receives the winning locator after both bestblock and
	// bestblock_nomerkle have been scanned: a non-empty bestblock wins;
	// otherwise bestblock_nomerkle. Called once per load, even if neither
	// record was present (with a nil locator), so the sink can
	// distinguish "no best block on file" from "not yet told."
	SetBestBlock(locator []byte) error
	LoadMinVersion(version uint32) error
	ReorderTransactions() error
	UpdateTimeFirstKey(createTime int64)

	AddressBookEntries() map[string]struct{ Label, Purpose string }
	MasterKeyCount() int

	// MarkEncrypted records that a ckey was observed.
	MarkEncrypted()
	// MarkFirstKeyTimeUnreliable records the nKeys+nCKeys+nWatchKeys !=
	// nKeyMeta condition observed during the scan's post-scan actions.
	MarkFirstKeyTimeUnreliable()
}

// MemorySink is a minimal, exercised Sink implementation that records
// everything the loader dispatches, for inspecting a wallet file's contents
// end to end without a running wallet process: a persistence-core repo
// needs a testable default Sink, not only an interface.
type MemorySink struct {
	Keys         map[string][]byte
	CryptedKeys  map[string][]byte
	KeyMeta      map[string]*KeyMetadata
	ScriptMeta   map[string]*KeyMetadata
	CScripts     []*CScriptRecord
	WatchOnly    [][]byte
	KeyPool      []*KeyPoolRecord
	Transactions []*TxRecord
	DestData     []*DestDataRecord
	HDChain      *HDChainRecord
	Flags        uint64
	MinVersion   uint32
	BestBlock    []byte
	SawBestBlock bool

	AddressBook    map[string]struct{ Label, Purpose string }
	MasterKeys     map[uint32]*MasterKeyRecord
	MasterKeyMaxID uint32

	Encrypted              bool
	FirstKeyTimeUnreliable bool
	Reordered              bool
	FirstKeyTime           int64
}

// NewMemorySink returns an empty, ready-to-use MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		Keys:        make(map[string][]byte),
		CryptedKeys: make(map[string][]byte),
		KeyMeta:     make(map[string]*KeyMetadata),
		ScriptMeta:  make(map[string]*KeyMetadata),
		AddressBook: make(map[string]struct{ Label, Purpose string }),
		MasterKeys:  make(map[uint32]*MasterKeyRecord),
	}
}

func (s *MemorySink) LoadKey(pubKey, privKey []byte) error {
	s.Keys[string(pubKey)] = privKey
	return nil
}

func (s *MemorySink) LoadCryptedKey(pubKey, encryptedKey []byte) error {
	s.CryptedKeys[string(pubKey)] = encryptedKey
	return nil
}

func (s *MemorySink) LoadKeyMetadata(pubKey []byte, meta *KeyMetadata) error {
	s.KeyMeta[string(pubKey)] = meta
	return nil
}

func (s *MemorySink) LoadScriptMetadata(scriptHash []byte, meta *KeyMetadata) error {
	s.ScriptMeta[string(scriptHash)] = meta
	return nil
}

func (s *MemorySink) LoadCScript(rec *CScriptRecord) error {
	s.CScripts = append(s.CScripts, rec)
	return nil
}

func (s *MemorySink) LoadWatchOnly(script []byte) error {
	s.WatchOnly = append(s.WatchOnly, script)
	return nil
}

func (s *MemorySink) LoadKeyPool(rec *KeyPoolRecord) error {
	s.KeyPool = append(s.KeyPool, rec)
	return nil
}

func (s *MemorySink) LoadToWallet(tx *TxRecord) error {
	s.Transactions = append(s.Transactions, tx)
	return nil
}

func (s *MemorySink) LoadDestData(rec *DestDataRecord) error {
	s.DestData = append(s.DestData, rec)
	return nil
}

func (s *MemorySink) SetAddressBookName(address, label string) error {
	entry := s.AddressBook[address]
	entry.Label = label
	s.AddressBook[address] = entry
	return nil
}

func (s *MemorySink) SetAddressBookPurpose(address, purpose string) error {
	entry := s.AddressBook[address]
	entry.Purpose = purpose
	s.AddressBook[address] = entry
	return nil
}

func (s *MemorySink) LoadMasterKey(id uint32, rec *MasterKeyRecord) error {
	s.MasterKeys[id] = rec
	return nil
}

func (s *MemorySink) SetMasterKeyMaxID(id uint32) {
	s.MasterKeyMaxID = id
}

func (s *MemorySink) SetHDChain(chain *HDChainRecord) error {
	s.HDChain = chain
	return nil
}

func (s *MemorySink) SetWalletFlags(flags uint64) error {
	s.Flags = flags
	return nil
}

func (s *MemorySink) SetBestBlock(locator []byte) error {
	s.BestBlock = locator
	s.SawBestBlock = true
	return nil
}

func (s *MemorySink) LoadMinVersion(version uint32) error {
	s.MinVersion = version
	return nil
}

func (s *MemorySink) ReorderTransactions() error {
	s.Reordered = true
	return nil
}

func (s *MemorySink) UpdateTimeFirstKey(createTime int64) {
	if s.FirstKeyTime == 0 || createTime < s.FirstKeyTime {
		s.FirstKeyTime = createTime
	}
}

func (s *MemorySink) AddressBookEntries() map[string]struct{ Label, Purpose string } {
	return s.AddressBook
}

func (s *MemorySink) MasterKeyCount() int { return len(s.MasterKeys) }

func (s *MemorySink) MarkEncrypted() { s.Encrypted = true }

func (s *MemorySink) MarkFirstKeyTimeUnreliable() { s.FirstKeyTimeUnreliable = true }
