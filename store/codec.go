// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"io"

	"github.com/umbracoin/errors"
)

// writer accumulates an encoded record. Encoding never fails; a []byte
// builder is sufficient.
type writer struct {
	buf []byte
}

func newWriter() *writer { return &writer{} }

func (w *writer) Bytes() []byte { return w.buf }

// putCompactSize appends n encoded as a legacy CompactSize integer:
// values below 0xfd take one byte; up to 0xffff take a 0xfd prefix and two
// little-endian bytes; up to 0xffffffff take a 0xfe prefix and four
// little-endian bytes; anything larger takes a 0xff prefix and eight
// little-endian bytes. This framing must stay byte-identical to the format
// legacy wallet files were written with.
func (w *writer) putCompactSize(n uint64) {
	switch {
	case n < 0xfd:
		w.buf = append(w.buf, byte(n))
	case n <= 0xffff:
		w.buf = append(w.buf, 0xfd)
		w.buf = appendUint16(w.buf, uint16(n))
	case n <= 0xffffffff:
		w.buf = append(w.buf, 0xfe)
		w.buf = appendUint32(w.buf, uint32(n))
	default:
		w.buf = append(w.buf, 0xff)
		w.buf = appendUint64(w.buf, n)
	}
}

func (w *writer) putVarBytes(b []byte) {
	w.putCompactSize(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) putVarString(s string) {
	w.putVarBytes([]byte(s))
}

func (w *writer) putUint8(v uint8) { w.buf = append(w.buf, v) }

func (w *writer) putUint32(v uint32) { w.buf = appendUint32(w.buf, v) }

func (w *writer) putUint64(v uint64) { w.buf = appendUint64(w.buf, v) }

func (w *writer) putInt64(v int64) { w.buf = appendUint64(w.buf, uint64(v)) }

func (w *writer) putBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) putRaw(b []byte) { w.buf = append(w.buf, b...) }

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

// reader consumes an encoded record, tracking the read offset. All methods
// return a Corrupt-kind error on short reads.
type reader struct {
	buf []byte
	pos int
}

func newReader(b []byte) *reader { return &reader{buf: b} }

// Empty reports whether the reader has consumed the entire buffer. Used to
// implement the optional-trailing-field rule.
func (r *reader) Empty() bool { return r.pos >= len(r.buf) }

func (r *reader) take(n int) ([]byte, error) {
	const op errors.Op = "store.reader.take"
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errors.E(op, errors.Corrupt, io.ErrUnexpectedEOF)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) getCompactSize() (uint64, error) {
	const op errors.Op = "store.reader.getCompactSize"
	prefix, err := r.take(1)
	if err != nil {
		return 0, errors.E(op, err)
	}
	switch prefix[0] {
	case 0xfd:
		b, err := r.take(2)
		if err != nil {
			return 0, errors.E(op, err)
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 0xfe:
		b, err := r.take(4)
		if err != nil {
			return 0, errors.E(op, err)
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 0xff:
		b, err := r.take(8)
		if err != nil {
			return 0, errors.E(op, err)
		}
		return binary.LittleEndian.Uint64(b), nil
	default:
		return uint64(prefix[0]), nil
	}
}

// maxAllocSize bounds a single length-prefixed field to guard against a
// corrupt size prefix causing an enormous allocation.
const maxAllocSize = 32 * 1024 * 1024

func (r *reader) getVarBytes() ([]byte, error) {
	const op errors.Op = "store.reader.getVarBytes"
	n, err := r.getCompactSize()
	if err != nil {
		return nil, errors.E(op, err)
	}
	if n > maxAllocSize {
		return nil, errors.E(op, errors.Corrupt, errors.Errorf("size prefix %d exceeds maximum", n))
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, errors.E(op, err)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *reader) getVarString() (string, error) {
	b, err := r.getVarBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) getUint8() (uint8, error) {
	const op errors.Op = "store.reader.getUint8"
	b, err := r.take(1)
	if err != nil {
		return 0, errors.E(op, err)
	}
	return b[0], nil
}

func (r *reader) getUint32() (uint32, error) {
	const op errors.Op = "store.reader.getUint32"
	b, err := r.take(4)
	if err != nil {
		return 0, errors.E(op, err)
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) getUint64() (uint64, error) {
	const op errors.Op = "store.reader.getUint64"
	b, err := r.take(8)
	if err != nil {
		return 0, errors.E(op, err)
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) getInt64() (int64, error) {
	v, err := r.getUint64()
	return int64(v), err
}

func (r *reader) getBool() (bool, error) {
	b, err := r.getUint8()
	return b != 0, err
}

// optionalUint32 decodes a trailing uint32 field, per the optional-trailing-
// field rule: reaching end-of-stream before the field is not an error.
func (r *reader) optionalUint32() (uint32, bool, error) {
	if r.Empty() {
		return 0, false, nil
	}
	v, err := r.getUint32()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// optionalVarBytes decodes a trailing variable-length field, treating
// end-of-stream as "absent" rather than an error.
func (r *reader) optionalVarBytes() ([]byte, bool, error) {
	if r.Empty() {
		return nil, false, nil
	}
	b, err := r.getVarBytes()
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// optionalFixed decodes a trailing fixed-size field, treating end-of-stream
// (or a short remainder) as "absent" rather than an error. The integrity
// hash trailing a key record is the canonical use of this rule.
func (r *reader) optionalFixed(n int) ([]byte, bool, error) {
	if r.pos+n > len(r.buf) {
		return nil, false, nil
	}
	b, err := r.take(n)
	if err != nil {
		return nil, false, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}
