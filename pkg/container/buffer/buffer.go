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

// Package buffer holds the fixed-length typed memory region under a column.
//
// A Buffer either owns its region, in which case the bytes come from an
// mpool.MPool and are returned exactly once by Free, or borrows caller memory
// through Wrap. A borrowed region must stay valid, and must not be written by
// anyone else, for as long as the Buffer is reachable.
package buffer

import (
	"sync/atomic"
	"unsafe"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

type Buffer struct {
	typ    types.T
	length int
	data   []byte

	// mp is nil for a borrowed region.
	mp    *mpool.MPool
	freed atomic.Bool
}

// Allocate returns an owned, zeroed buffer of length elements.
func Allocate(typ types.T, length int, mp *mpool.MPool) (*Buffer, error) {
	if !typ.IsFixedLen() {
		return nil, moerr.NewNotSupportedNoCtx("buffer of type %s", typ)
	}
	if length < 0 {
		return nil, moerr.NewInvalidInputNoCtx("buffer length %d", length)
	}
	data, err := mp.Alloc(length * typ.TypeLen())
	if err != nil {
		return nil, err
	}
	return &Buffer{
		typ:    typ,
		length: length,
		data:   data,
		mp:     mp,
	}, nil
}

// Wrap borrows vals without copying.
func Wrap[T types.FixedSizeT](vals []T) *Buffer {
	return &Buffer{
		typ:    types.TypeOf[T](),
		length: len(vals),
		data:   types.EncodeSlice(vals),
	}
}

// WrapBytes borrows a raw region holding length elements of typ.
func WrapBytes(typ types.T, data []byte, length int) (*Buffer, error) {
	if !typ.IsFixedLen() {
		return nil, moerr.NewNotSupportedNoCtx("buffer of type %s", typ)
	}
	if length < 0 || len(data) < length*typ.TypeLen() {
		return nil, moerr.NewInvalidInputNoCtx("%d bytes cannot hold %d %s", len(data), length, typ)
	}
	return &Buffer{
		typ:    typ,
		length: length,
		data:   data[:length*typ.TypeLen()],
	}, nil
}

// Broadcast returns an owned buffer holding v length times.
func Broadcast[T types.FixedSizeT](v T, length int, mp *mpool.MPool) (*Buffer, error) {
	b, err := Allocate(types.TypeOf[T](), length, mp)
	if err != nil {
		return nil, err
	}
	vs := MustSlice[T](b)
	for i := range vs {
		vs[i] = v
	}
	return b, nil
}

func (b *Buffer) Type() types.T {
	return b.typ
}

func (b *Buffer) Len() int {
	return b.length
}

func (b *Buffer) Owned() bool {
	return b.mp != nil
}

func (b *Buffer) Freed() bool {
	return b.freed.Load()
}

// Bytes returns the raw region, nil once the buffer is freed.
func (b *Buffer) Bytes() []byte {
	if b.freed.Load() {
		return nil
	}
	return b.data
}

// Free releases the region. Only the first call has any effect.
func (b *Buffer) Free() {
	if !b.freed.CompareAndSwap(false, true) {
		return
	}
	if b.mp != nil {
		b.mp.Free(b.data)
	}
	b.data = nil
}

// Clone returns an owned copy of b.
func (b *Buffer) Clone(mp *mpool.MPool) (*Buffer, error) {
	if err := b.check(0, true); err != nil {
		return nil, err
	}
	nb, err := Allocate(b.typ, b.length, mp)
	if err != nil {
		return nil, err
	}
	copy(nb.data, b.data)
	return nb, nil
}

func (b *Buffer) check(i int, skipIndex bool) error {
	if b.freed.Load() {
		return moerr.NewInvalidStateNoCtx("buffer of %s has been freed", b.typ)
	}
	if !skipIndex && (i < 0 || i >= b.length) {
		return moerr.NewOutOfRangeNoCtx(b.typ.String(), "index %d, length %d", i, b.length)
	}
	return nil
}

func checkType[T types.FixedSizeT](b *Buffer) error {
	if typ := types.TypeOf[T](); typ != b.typ {
		return moerr.NewTypeMismatchNoCtx("buffer of %s accessed as %s", b.typ, typ)
	}
	return nil
}

// MustSlice returns the typed view of the region, it panics on a type mismatch.
func MustSlice[T types.FixedSizeT](b *Buffer) []T {
	if err := checkType[T](b); err != nil {
		panic(err)
	}
	if b.freed.Load() || b.length == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b.data[0])), b.length)
}

func Read[T types.FixedSizeT](b *Buffer, i int) (T, error) {
	var zero T
	if err := checkType[T](b); err != nil {
		return zero, err
	}
	if err := b.check(i, false); err != nil {
		return zero, err
	}
	return MustSlice[T](b)[i], nil
}

func Write[T types.FixedSizeT](b *Buffer, i int, v T) error {
	if err := checkType[T](b); err != nil {
		return err
	}
	if err := b.check(i, false); err != nil {
		return err
	}
	MustSlice[T](b)[i] = v
	return nil
}

// Get is the untyped form of Read.
func (b *Buffer) Get(i int) (any, error) {
	switch b.typ {
	case types.T_bool:
		return Read[bool](b, i)
	case types.T_int8:
		return Read[int8](b, i)
	case types.T_int16:
		return Read[int16](b, i)
	case types.T_int32:
		return Read[int32](b, i)
	case types.T_int64:
		return Read[int64](b, i)
	case types.T_uint8:
		return Read[uint8](b, i)
	case types.T_uint16:
		return Read[uint16](b, i)
	case types.T_uint32:
		return Read[uint32](b, i)
	case types.T_uint64:
		return Read[uint64](b, i)
	case types.T_float32:
		return Read[float32](b, i)
	case types.T_float64:
		return Read[float64](b, i)
	}
	return nil, moerr.NewNotSupportedNoCtx("buffer of type %s", b.typ)
}

// Set is the untyped form of Write, v must have the buffer's exact Go type.
func (b *Buffer) Set(i int, v any) error {
	switch x := v.(type) {
	case bool:
		return Write(b, i, x)
	case int8:
		return Write(b, i, x)
	case int16:
		return Write(b, i, x)
	case int32:
		return Write(b, i, x)
	case int64:
		return Write(b, i, x)
	case uint8:
		return Write(b, i, x)
	case uint16:
		return Write(b, i, x)
	case uint32:
		return Write(b, i, x)
	case uint64:
		return Write(b, i, x)
	case float32:
		return Write(b, i, x)
	case float64:
		return Write(b, i, x)
	}
	return moerr.NewTypeMismatchNoCtx("buffer of %s cannot hold %T", b.typ, v)
}
