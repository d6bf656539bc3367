// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "github.com/umbracoin/errors"

// ExtensionHandler decodes and dispatches a single record belonging to a
// tag registered by an extension module. subKey is the tag-specific
// sub-key bytes following the leading tag (already stripped).
type ExtensionHandler func(subKey, value []byte) error

var extensions = make(map[Tag]ExtensionHandler)

// RegisterExtension adds a record kind outside the core taxonomy to the
// loader's dispatch table. Extension tags coexist in the same keyspace as
// core records; the core continues to tolerate the extension being absent,
// since an unregistered tag is simply an unknown record.
//
// RegisterExtension is not safe for concurrent use with LoadWallet; call it
// during program initialization before any load begins.
func RegisterExtension(tag Tag, handler ExtensionHandler) error {
	const op errors.Op = "store.RegisterExtension"
	if coreTags[tag] {
		return errors.E(op, errors.Invalid, errors.Errorf("tag %q is reserved by the core taxonomy", tag))
	}
	if _, exists := extensions[tag]; exists {
		return errors.E(op, errors.Exist, errors.Errorf("extension tag %q already registered", tag))
	}
	extensions[tag] = handler
	return nil
}

func lookupExtension(tag Tag) (ExtensionHandler, bool) {
	h, ok := extensions[tag]
	return h, ok
}
