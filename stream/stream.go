/*
 * stream.go, part of sire-go.
 *
 *
 * Copyright 2026 The sire-go Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package stream implements the binary format used to save and load every
// versioned object of the library. Each object is written as a type magic
// number and a schema version followed by its fields, in little endian.
// Readers refuse schema versions they don't know with a sire.VersionError.
//
// Writer and Reader keep the first error they hit and ignore every later call,
// so a Save or Load function can write or read all its fields and check Err once.
package stream

import (
	"encoding/binary"
	"io"
	"math"

	sire "github.com/chrys-athome/sire-sub022"
)

// MaxLen is the largest slice or string length a Reader accepts.
const MaxLen = 1 << 28

// Writer writes the binary format to an io.Writer.
type Writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error found while writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// Magic starts a new object with the given type magic number and schema version.
func (w *Writer) Magic(magic uint32, schema uint16) {
	binary.LittleEndian.PutUint32(w.buf[:4], magic)
	binary.LittleEndian.PutUint16(w.buf[4:6], schema)
	w.write(w.buf[:6])
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], v)
	w.write(w.buf[:])
}

func (w *Writer) Int(v int) {
	w.Uint64(uint64(int64(v)))
}

func (w *Writer) Float64(v float64) {
	w.Uint64(math.Float64bits(v))
}

func (w *Writer) Bool(v bool) {
	if v {
		w.buf[0] = 1
	} else {
		w.buf[0] = 0
	}
	w.write(w.buf[:1])
}

func (w *Writer) String(s string) {
	w.Int(len(s))
	w.write([]byte(s))
}

func (w *Writer) Bytes(b []byte) {
	w.Int(len(b))
	w.write(b)
}

func (w *Writer) Float64s(f []float64) {
	w.Int(len(f))
	for _, v := range f {
		w.Float64(v)
	}
}

func (w *Writer) Uint64s(u []uint64) {
	w.Int(len(u))
	for _, v := range u {
		w.Uint64(v)
	}
}

func (w *Writer) Version(v sire.Version) {
	w.Uint64(v.Major)
	w.Uint64(v.Minor)
}

// Fail records err as the writer error, if there was none.
// Save functions use it to report problems with the object being saved.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Reader reads the binary format from an io.Reader.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error found while reading.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err as the reader error, if there was none.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) read(b []byte) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return false
	}
	return true
}

// Magic reads the header of an object, checks that it has the expected
// magic number and that its schema is one of the supported ones, and returns
// the schema. It returns 0 after any failure.
func (r *Reader) Magic(magic uint32, supported ...uint16) uint16 {
	if !r.read(r.buf[:6]) {
		return 0
	}
	got := binary.LittleEndian.Uint32(r.buf[:4])
	schema := binary.LittleEndian.Uint16(r.buf[4:6])
	if got != magic {
		r.err = sire.Errorf(sire.VersionError, "stream.Magic", "wrong type magic %#x, expected %#x", got, magic)
		return 0
	}
	for _, s := range supported {
		if s == schema {
			return schema
		}
	}
	r.err = sire.Errorf(sire.VersionError, "stream.Magic", "unsupported schema version %d for magic %#x (supported: %v)", schema, magic, supported)
	return 0
}

func (r *Reader) Uint64() uint64 {
	if !r.read(r.buf[:]) {
		return 0
	}
	return binary.LittleEndian.Uint64(r.buf[:])
}

func (r *Reader) Int() int {
	return int(int64(r.Uint64()))
}

func (r *Reader) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}

func (r *Reader) Bool() bool {
	if !r.read(r.buf[:1]) {
		return false
	}
	return r.buf[0] != 0
}

// Len reads a slice length and checks it.
func (r *Reader) Len() int {
	n := r.Int()
	if r.err == nil && (n < 0 || n > MaxLen) {
		r.err = sire.Errorf(sire.InvalidIndex, "stream.Len", "impossible length %d", n)
	}
	if r.err != nil {
		return 0
	}
	return n
}

func (r *Reader) String() string {
	return string(r.Bytes())
}

func (r *Reader) Bytes() []byte {
	n := r.Len()
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	if !r.read(b) {
		return nil
	}
	return b
}

func (r *Reader) Float64s() []float64 {
	n := r.Len()
	if n == 0 {
		return nil
	}
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = r.Float64()
	}
	return ret
}

func (r *Reader) Uint64s() []uint64 {
	n := r.Len()
	if n == 0 {
		return nil
	}
	ret := make([]uint64, n)
	for i := range ret {
		ret[i] = r.Uint64()
	}
	return ret
}

func (r *Reader) Version() sire.Version {
	return sire.Version{Major: r.Uint64(), Minor: r.Uint64()}
}
