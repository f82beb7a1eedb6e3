// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nulls wrap up functions for the manipulation of bitmap library roaring.
// A column uses Nulls to record which of its rows are NULL.
//
// The bitmap stores null rows, so a column without nulls costs nothing. The
// exported forms (Validity, Bitmap) use the opposite convention, 1 = valid,
// which is the Arrow validity layout.
package nulls

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
)

type Nulls struct {
	np     *roaring64.Bitmap
	length int
	// count caches np.GetCardinality().
	count int
}

// NewWithSize returns a mask of size rows, all valid.
func NewWithSize(size int) *Nulls {
	return &Nulls{
		np:     roaring64.New(),
		length: size,
	}
}

// Build returns a mask of size rows where rows are null.
func Build(size int, rows ...uint64) *Nulls {
	nsp := NewWithSize(size)
	for _, row := range rows {
		if row < uint64(size) && !nsp.np.Contains(row) {
			nsp.np.Add(row)
			nsp.count++
		}
	}
	return nsp
}

// FromValidity builds a mask from one flag per row, true = valid.
func FromValidity(valid []bool) *Nulls {
	nsp := NewWithSize(len(valid))
	for i, ok := range valid {
		if !ok {
			nsp.np.Add(uint64(i))
			nsp.count++
		}
	}
	return nsp
}

// FromBitmap builds a mask from a packed LSB-first validity bitmap.
func FromBitmap(bits []byte, length int) (*Nulls, error) {
	if length < 0 || len(bits)*8 < length {
		return nil, moerr.NewInvalidInputNoCtx("validity bitmap of %d bytes for %d rows", len(bits), length)
	}
	nsp := NewWithSize(length)
	for i := 0; i < length; i++ {
		if bits[i>>3]&(1<<(uint(i)&7)) == 0 {
			nsp.np.Add(uint64(i))
			nsp.count++
		}
	}
	return nsp, nil
}

func (nsp *Nulls) Len() int {
	return nsp.length
}

// NullCount is O(1).
func (nsp *Nulls) NullCount() int {
	return nsp.count
}

func (nsp *Nulls) check(i int) error {
	if i < 0 || i >= nsp.length {
		return moerr.NewOutOfRangeNoCtx("null mask", "index %d, length %d", i, nsp.length)
	}
	return nil
}

func (nsp *Nulls) SetValid(i int, valid bool) error {
	if err := nsp.check(i); err != nil {
		return err
	}
	row := uint64(i)
	isNull := nsp.np.Contains(row)
	switch {
	case valid && isNull:
		nsp.np.Remove(row)
		nsp.count--
	case !valid && !isNull:
		nsp.np.Add(row)
		nsp.count++
	}
	return nil
}

func (nsp *Nulls) IsValid(i int) (bool, error) {
	if err := nsp.check(i); err != nil {
		return false, err
	}
	return !nsp.np.Contains(uint64(i)), nil
}

// Contains reports whether row is null, it does no bounds check.
func (nsp *Nulls) Contains(row uint64) bool {
	return nsp.count > 0 && nsp.np.Contains(row)
}

// Rows returns the null rows in ascending order.
func (nsp *Nulls) Rows() []uint64 {
	return nsp.np.ToArray()
}

func (nsp *Nulls) Validity() []bool {
	valid := make([]bool, nsp.length)
	for i := range valid {
		valid[i] = true
	}
	itr := nsp.np.Iterator()
	for itr.HasNext() {
		valid[itr.Next()] = false
	}
	return valid
}

// Bitmap returns the packed validity bitmap, 1 = valid, LSB first.
func (nsp *Nulls) Bitmap() []byte {
	bits := make([]byte, (nsp.length+7)/8)
	for i := 0; i < nsp.length; i++ {
		bits[i>>3] |= 1 << (uint(i) & 7)
	}
	itr := nsp.np.Iterator()
	for itr.HasNext() {
		row := itr.Next()
		bits[row>>3] &^= 1 << (row & 7)
	}
	return bits
}

func (nsp *Nulls) Clone() *Nulls {
	if nsp == nil {
		return nil
	}
	return &Nulls{
		np:     nsp.np.Clone(),
		length: nsp.length,
		count:  nsp.count,
	}
}

// Filter returns the mask of the rows picked by sels, in sels order.
func (nsp *Nulls) Filter(sels []int64) *Nulls {
	r := NewWithSize(len(sels))
	if nsp.count == 0 {
		return r
	}
	for i, sel := range sels {
		if nsp.np.Contains(uint64(sel)) {
			r.np.Add(uint64(i))
			r.count++
		}
	}
	return r
}

// Show serializes the mask as its length followed by the roaring bitmap.
func (nsp *Nulls) Show() ([]byte, error) {
	var buf bytes.Buffer
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(nsp.length))
	buf.Write(hdr[:])
	if _, err := nsp.np.WriteTo(&buf); err != nil {
		return nil, moerr.ConvertGoError(moerr.Context(), err)
	}
	return buf.Bytes(), nil
}

// Read is the inverse of Show.
func (nsp *Nulls) Read(data []byte) error {
	if len(data) < 8 {
		return moerr.NewInvalidInputNoCtx("null mask of %d bytes", len(data))
	}
	np := roaring64.New()
	if _, err := np.ReadFrom(bytes.NewReader(data[8:])); err != nil {
		return moerr.ConvertGoError(moerr.Context(), err)
	}
	length := int(binary.LittleEndian.Uint64(data[:8]))
	if !np.IsEmpty() && np.Maximum() >= uint64(length) {
		return moerr.NewInvalidInputNoCtx("null row %d beyond length %d", np.Maximum(), length)
	}
	nsp.np = np
	nsp.length = length
	nsp.count = int(np.GetCardinality())
	return nil
}

func (nsp *Nulls) String() string {
	return fmt.Sprintf("%v", nsp.np.ToArray())
}

// Any reports whether nsp has a null row, a nil mask has none.
func Any(nsp *Nulls) bool {
	return nsp != nil && nsp.count > 0
}

// Contains reports whether row is null in nsp, a nil mask contains nothing.
func Contains(nsp *Nulls, row uint64) bool {
	return nsp != nil && nsp.Contains(row)
}

// Or returns the union of the null rows of nsp and m over length rows.
// It returns nil when neither side has a null.
func Or(nsp, m *Nulls, length int) *Nulls {
	if !Any(nsp) && !Any(m) {
		return nil
	}
	r := NewWithSize(length)
	if Any(nsp) {
		r.np.Or(nsp.np)
	}
	if Any(m) {
		r.np.Or(m.np)
	}
	r.count = int(r.np.GetCardinality())
	return r
}
