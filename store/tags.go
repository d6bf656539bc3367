// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// Tag is the ASCII discriminator that begins every record key. It is the
// sole thing that identifies a record's kind; no separate header exists.
type Tag string

// The core record taxonomy. Every tag here is reserved; unrecognized tags
// encountered on disk are unknown records (invariant 1) and are counted,
// never rejected.
const (
	TagName              Tag = "name"
	TagPurpose           Tag = "purpose"
	TagTx                Tag = "tx"
	TagKey               Tag = "key"
	TagWKey              Tag = "wkey"
	TagCKey              Tag = "ckey"
	TagMKey              Tag = "mkey"
	TagKeyMeta           Tag = "keymeta"
	TagWatchMeta         Tag = "watchmeta"
	TagWatchScript       Tag = "watchs"
	TagCScript           Tag = "cscript"
	TagPool              Tag = "pool"
	TagOrderPosNext      Tag = "orderposnext"
	TagBestBlock         Tag = "bestblock"
	TagBestBlockNoMerkle Tag = "bestblock_nomerkle"
	TagMinVersion        Tag = "minversion"
	TagVersion           Tag = "version"
	TagDefaultKey        Tag = "defaultkey"
	TagDestData          Tag = "destdata"
	TagHDChain           Tag = "hdchain"
	TagFlags             Tag = "flags"
	TagAcEntry           Tag = "acentry"
)

// keyBearing is the set of tags whose loss is catastrophic corruption
// (glossary: "key-bearing record").
var keyBearing = map[Tag]bool{
	TagKey:        true,
	TagWKey:       true,
	TagMKey:       true,
	TagCKey:       true,
	TagDefaultKey: true,
}

// IsKeyBearing reports whether tag identifies a key-bearing record.
func IsKeyBearing(tag Tag) bool {
	return keyBearing[tag]
}

// coreTags is the fixed set of tags this package dispatches directly,
// distinct from tags registered by extensions (see extension.go).
var coreTags = map[Tag]bool{
	TagName: true, TagPurpose: true, TagTx: true, TagKey: true, TagWKey: true,
	TagCKey: true, TagMKey: true, TagKeyMeta: true, TagWatchMeta: true,
	TagWatchScript: true, TagCScript: true, TagPool: true, TagOrderPosNext: true,
	TagBestBlock: true, TagBestBlockNoMerkle: true, TagMinVersion: true,
	TagVersion: true, TagDefaultKey: true, TagDestData: true, TagHDChain: true,
	TagFlags: true, TagAcEntry: true,
}
