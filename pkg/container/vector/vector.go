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

package vector

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/buffer"
	"github.com/matrixorigin/gdfcore/pkg/container/dict"
	"github.com/matrixorigin/gdfcore/pkg/container/nulls"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

const (
	FLAT        = iota // flat vector represent a plain typed column
	CATEGORICAL        // codes into a category table
)

// UnknownNullCount skips the null count check of the constructors.
const UnknownNullCount = -1

// Vector represent a column
type Vector struct {
	// vector's class
	class int
	// type represent the type of column, the code type for a categorical
	typ    types.Type
	buf    *buffer.Buffer
	nsp    *nulls.Nulls // nil means no nulls
	length int

	// category table and order flag of a categorical
	cats    *dict.Dict
	ordered bool

	// view shares buf and nsp with another vector, Free does nothing.
	view bool

	conv  TypeConverter
	bcast Broadcaster
}

func newVector(class int, buf *buffer.Buffer, nsp *nulls.Nulls, opts ...Option) *Vector {
	v := &Vector{
		class: class,
		conv:  DefaultTypeConverter,
		bcast: DefaultBroadcaster,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.setBuffer(buf, nsp)
	return v
}

func (v *Vector) setBuffer(buf *buffer.Buffer, nsp *nulls.Nulls) {
	v.typ = types.New(buf.Type())
	v.buf = buf
	v.nsp = nsp
	v.length = buf.Len()
}

// derive builds a vector carrying v's collaborators.
func (v *Vector) derive(class int, buf *buffer.Buffer, nsp *nulls.Nulls) *Vector {
	w := &Vector{
		class: class,
		conv:  v.conv,
		bcast: v.bcast,
	}
	w.setBuffer(buf, nsp)
	return w
}

// NewFromSlice copies vals into a new column. valid may be nil, meaning no
// nulls. nullCount is checked against valid unless it is UnknownNullCount.
func NewFromSlice[T types.FixedSizeT](vals []T, valid []bool, nullCount int, mp *mpool.MPool, opts ...Option) (*Vector, error) {
	var nsp *nulls.Nulls
	if valid != nil {
		if len(valid) != len(vals) {
			return nil, moerr.NewSizeNotMatchNoCtx("%d values, %d validity flags", len(vals), len(valid))
		}
		nsp = nulls.FromValidity(valid)
	}
	return newFromSlice(vals, nsp, nullCount, mp, opts...)
}

// NewFromBitmap is NewFromSlice with a packed LSB-first validity bitmap, 1 = valid.
func NewFromBitmap[T types.FixedSizeT](vals []T, bitmap []byte, nullCount int, mp *mpool.MPool, opts ...Option) (*Vector, error) {
	var nsp *nulls.Nulls
	if bitmap != nil {
		var err error
		if nsp, err = nulls.FromBitmap(bitmap, len(vals)); err != nil {
			return nil, err
		}
	}
	return newFromSlice(vals, nsp, nullCount, mp, opts...)
}

func newFromSlice[T types.FixedSizeT](vals []T, nsp *nulls.Nulls, nullCount int, mp *mpool.MPool, opts ...Option) (*Vector, error) {
	if err := checkNullCount(nsp, nullCount); err != nil {
		return nil, err
	}
	buf, err := buffer.Allocate(types.TypeOf[T](), len(vals), mp)
	if err != nil {
		return nil, err
	}
	copy(buffer.MustSlice[T](buf), vals)
	return newVector(FLAT, buf, nsp, opts...), nil
}

func checkNullCount(nsp *nulls.Nulls, nullCount int) error {
	if nullCount == UnknownNullCount {
		return nil
	}
	actual := 0
	if nsp != nil {
		actual = nsp.NullCount()
	}
	if actual != nullCount {
		return moerr.NewInvalidInputNoCtx("null count %d, validity has %d nulls", nullCount, actual)
	}
	return nil
}

// NewConst broadcasts val to a column of length rows.
func NewConst[T types.FixedSizeT](val T, length int, mp *mpool.MPool, opts ...Option) (*Vector, error) {
	v := newVector(FLAT, buffer.Wrap[T](nil), nil, opts...)
	buf, err := v.bcast.Broadcast(val, v.typ.Oid, length, mp)
	if err != nil {
		return nil, err
	}
	v.setBuffer(buf, nil)
	return v, nil
}

func (v *Vector) Class() int {
	return v.class
}

func (v *Vector) IsCategorical() bool {
	return v.class == CATEGORICAL
}

// GetType returns the physical type, the code type for a categorical.
func (v *Vector) GetType() types.Type {
	return v.typ
}

func (v *Vector) Length() int {
	return v.length
}

func (v *Vector) HasNulls() bool {
	return nulls.Any(v.nsp)
}

func (v *Vector) NullCount() int {
	if v.nsp == nil {
		return 0
	}
	return v.nsp.NullCount()
}

// GetNulls returns the null mask, nil when the column has none.
// It belongs to v and must not be modified.
func (v *Vector) GetNulls() *nulls.Nulls {
	return v.nsp
}

// IsNull does no bounds check.
func (v *Vector) IsNull(i int) bool {
	return nulls.Contains(v.nsp, uint64(i))
}

// Freed reports whether the buffer of v has been released.
func (v *Vector) Freed() bool {
	return v.buf.Freed()
}

func (v *Vector) alive() error {
	if v.buf.Freed() {
		return moerr.NewInvalidStateNoCtx("column of %s has been freed", v.typ)
	}
	return nil
}

func (v *Vector) checkIndex(i int) error {
	if i < 0 || i >= v.length {
		return moerr.NewOutOfRangeNoCtx(v.typ.String(), "index %d, length %d", i, v.length)
	}
	return nil
}

// ElementAt returns the value at row i, ok is false for a null row.
// A categorical decodes its code, the sentinel code reads as null.
func (v *Vector) ElementAt(i int) (any, bool, error) {
	if err := v.checkIndex(i); err != nil {
		return nil, false, err
	}
	if v.IsNull(i) {
		return nil, false, nil
	}
	val, err := v.buf.Get(i)
	if err != nil {
		return nil, false, err
	}
	if v.class == CATEGORICAL {
		code, _ := codeOf(val)
		cat, ok := v.cats.Decode(code)
		return cat, ok, nil
	}
	return val, true, nil
}

// GetAt is the typed form of ElementAt over the physical values.
func GetAt[T types.FixedSizeT](v *Vector, i int) (T, bool, error) {
	var zero T
	if err := v.checkIndex(i); err != nil {
		return zero, false, err
	}
	val, err := buffer.Read[T](v.buf, i)
	if err != nil {
		return zero, false, err
	}
	if v.IsNull(i) {
		return zero, false, nil
	}
	return val, true, nil
}

// MustFixedCol returns the physical values without copying.
func MustFixedCol[T types.FixedSizeT](v *Vector) []T {
	return buffer.MustSlice[T](v.buf)
}

// ToSlice returns a copy of the physical values, null rows included.
func ToSlice[T types.FixedSizeT](v *Vector) ([]T, error) {
	if typ := types.TypeOf[T](); typ != v.typ.Oid {
		return nil, moerr.NewTypeMismatchNoCtx("column of %s read as %s", v.typ, typ)
	}
	if err := v.alive(); err != nil {
		return nil, err
	}
	return append([]T{}, MustFixedCol[T](v)...), nil
}

// Validity returns one flag per row, true = valid.
func (v *Vector) Validity() []bool {
	if v.nsp == nil {
		valid := make([]bool, v.length)
		for i := range valid {
			valid[i] = true
		}
		return valid
	}
	return v.nsp.Validity()
}

// ValidityBitmap returns the packed LSB-first validity bitmap, 1 = valid.
func (v *Vector) ValidityBitmap() []byte {
	if v.nsp == nil {
		return nulls.NewWithSize(v.length).Bitmap()
	}
	return v.nsp.Bitmap()
}

// Free returns an owned buffer to its pool. Views and freed vectors ignore it.
func (v *Vector) Free() {
	if v.view {
		return
	}
	v.buf.Free()
}

// Dup returns an owned deep copy of v.
func (v *Vector) Dup(mp *mpool.MPool) (*Vector, error) {
	buf, err := v.buf.Clone(mp)
	if err != nil {
		return nil, err
	}
	w := v.derive(v.class, buf, v.nsp.Clone())
	w.cats, w.ordered = v.cats, v.ordered
	return w, nil
}

// Shuffle gathers the rows picked by sels into a new vector.
func (v *Vector) Shuffle(sels []int64, mp *mpool.MPool) (*Vector, error) {
	if err := v.alive(); err != nil {
		return nil, err
	}
	for _, sel := range sels {
		if err := v.checkIndex(int(sel)); err != nil {
			return nil, err
		}
	}
	var (
		buf *buffer.Buffer
		err error
	)
	switch v.typ.Oid {
	case types.T_bool:
		buf, err = shuffleFixed[bool](v, sels, mp)
	case types.T_int8:
		buf, err = shuffleFixed[int8](v, sels, mp)
	case types.T_int16:
		buf, err = shuffleFixed[int16](v, sels, mp)
	case types.T_int32:
		buf, err = shuffleFixed[int32](v, sels, mp)
	case types.T_int64:
		buf, err = shuffleFixed[int64](v, sels, mp)
	case types.T_uint8:
		buf, err = shuffleFixed[uint8](v, sels, mp)
	case types.T_uint16:
		buf, err = shuffleFixed[uint16](v, sels, mp)
	case types.T_uint32:
		buf, err = shuffleFixed[uint32](v, sels, mp)
	case types.T_uint64:
		buf, err = shuffleFixed[uint64](v, sels, mp)
	case types.T_float32:
		buf, err = shuffleFixed[float32](v, sels, mp)
	case types.T_float64:
		buf, err = shuffleFixed[float64](v, sels, mp)
	default:
		return nil, moerr.NewInternalErrorNoCtx("unexpect type %s for function vector.Shuffle", v.typ)
	}
	if err != nil {
		return nil, err
	}
	var nsp *nulls.Nulls
	if v.HasNulls() {
		nsp = v.nsp.Filter(sels)
	}
	w := v.derive(v.class, buf, nsp)
	w.cats, w.ordered = v.cats, v.ordered
	return w, nil
}

func shuffleFixed[T types.FixedSizeT](v *Vector, sels []int64, mp *mpool.MPool) (*buffer.Buffer, error) {
	buf, err := buffer.Allocate(types.TypeOf[T](), len(sels), mp)
	if err != nil {
		return nil, err
	}
	vs := MustFixedCol[T](v)
	ws := buffer.MustSlice[T](buf)
	for i, sel := range sels {
		ws[i] = vs[sel]
	}
	return buf, nil
}

func (v *Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < v.length; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		val, ok, err := v.ElementAt(i)
		switch {
		case err != nil:
			return err.Error()
		case !ok:
			sb.WriteString("null")
		default:
			fmt.Fprintf(&sb, "%v", val)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
