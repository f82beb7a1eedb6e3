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
	"math"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/buffer"
	"github.com/matrixorigin/gdfcore/pkg/container/dict"
	"github.com/matrixorigin/gdfcore/pkg/container/nulls"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

// NewCategorical encodes values against their distinct values in first-seen
// order. nil and NaN become null rows.
func NewCategorical(values []any, ordered bool, mp *mpool.MPool, opts ...Option) (*Vector, error) {
	d, err := dict.New(nil)
	if err != nil {
		return nil, err
	}
	var nsp *nulls.Nulls
	codes := make([]int64, len(values))
	for i, x := range values {
		if isMissing(x) {
			if nsp == nil {
				nsp = nulls.NewWithSize(len(values))
			}
			_ = nsp.SetValid(i, false)
			codes[i] = types.CodeNull
			continue
		}
		if codes[i], err = d.FindOrInsert(x); err != nil {
			return nil, err
		}
	}
	buf, err := buffer.Allocate(types.SmallestCodeType(d.Len()), len(values), mp)
	if err != nil {
		return nil, err
	}
	switch buf.Type() {
	case types.T_int8:
		narrowCodes(codes, buffer.MustSlice[int8](buf))
	case types.T_int16:
		narrowCodes(codes, buffer.MustSlice[int16](buf))
	case types.T_int32:
		narrowCodes(codes, buffer.MustSlice[int32](buf))
	default:
		copy(buffer.MustSlice[int64](buf), codes)
	}
	v := newVector(CATEGORICAL, buf, nsp, opts...)
	v.cats, v.ordered = d, ordered
	return v, nil
}

func isMissing(x any) bool {
	switch f := x.(type) {
	case nil:
		return true
	case float32:
		return f != f
	case float64:
		return math.IsNaN(f)
	}
	return false
}

func narrowCodes[T types.Ints](codes []int64, dst []T) {
	for i, c := range codes {
		dst[i] = T(c)
	}
}

// NewCategoricalFromCodes builds a categorical from existing codes, which
// must be a []int8, []int16, []int32 or []int64. Every valid code must lie
// in [-1, len(categories)).
func NewCategoricalFromCodes(categories []any, ordered bool, codes any, valid []bool, mp *mpool.MPool, opts ...Option) (*Vector, error) {
	d, err := dict.New(categories)
	if err != nil {
		return nil, err
	}
	var buf *buffer.Buffer
	switch cs := codes.(type) {
	case []int8:
		buf, err = newCodeBuffer(cs, valid, d.Len(), mp)
	case []int16:
		buf, err = newCodeBuffer(cs, valid, d.Len(), mp)
	case []int32:
		buf, err = newCodeBuffer(cs, valid, d.Len(), mp)
	case []int64:
		buf, err = newCodeBuffer(cs, valid, d.Len(), mp)
	default:
		return nil, moerr.NewInvalidInputNoCtx("codes of type %T", codes)
	}
	if err != nil {
		return nil, err
	}
	var nsp *nulls.Nulls
	if valid != nil {
		nsp = nulls.FromValidity(valid)
	}
	v := newVector(CATEGORICAL, buf, nsp, opts...)
	v.cats, v.ordered = d, ordered
	return v, nil
}

func newCodeBuffer[T types.Ints](codes []T, valid []bool, n int, mp *mpool.MPool) (*buffer.Buffer, error) {
	if valid != nil && len(valid) != len(codes) {
		return nil, moerr.NewSizeNotMatchNoCtx("%d codes, %d validity flags", len(codes), len(valid))
	}
	for i, c := range codes {
		if valid != nil && !valid[i] {
			continue
		}
		if int64(c) < types.CodeNull || int64(c) >= int64(n) {
			return nil, moerr.NewInvalidInputNoCtx("code %d at row %d, %d categories", c, i, n)
		}
	}
	buf, err := buffer.Allocate(types.TypeOf[T](), len(codes), mp)
	if err != nil {
		return nil, err
	}
	copy(buffer.MustSlice[T](buf), codes)
	return buf, nil
}

func codeOf(val any) (int64, bool) {
	switch c := val.(type) {
	case int8:
		return int64(c), true
	case int16:
		return int64(c), true
	case int32:
		return int64(c), true
	case int64:
		return c, true
	}
	return types.CodeNull, false
}

// codeAt reads the code of row i as int64.
func (v *Vector) codeAt(i int) int64 {
	switch v.typ.Oid {
	case types.T_int8:
		return int64(MustFixedCol[int8](v)[i])
	case types.T_int16:
		return int64(MustFixedCol[int16](v)[i])
	case types.T_int32:
		return int64(MustFixedCol[int32](v)[i])
	}
	return MustFixedCol[int64](v)[i]
}

// sentinelRows returns the valid rows holding the sentinel code.
func (v *Vector) sentinelRows() []int {
	var rows []int
	for i := 0; i < v.length; i++ {
		if !v.IsNull(i) && v.codeAt(i) == types.CodeNull {
			rows = append(rows, i)
		}
	}
	return rows
}

// Encode returns the code of value, or -1 when value is no category.
func (v *Vector) Encode(value any) int64 {
	if v.class != CATEGORICAL {
		return types.CodeNull
	}
	return v.cats.Encode(value)
}

// Decode returns the category of code, ok is false for -1 or an unknown code.
func (v *Vector) Decode(code int64) (any, bool) {
	if v.class != CATEGORICAL {
		return nil, false
	}
	return v.cats.Decode(code)
}

// AsNumerical returns a flat view over the codes of a categorical, or over
// the values of a flat vector. The view shares the buffer and the null mask
// and must be treated as read-only.
func (v *Vector) AsNumerical() *Vector {
	return &Vector{
		class:  FLAT,
		typ:    v.typ,
		buf:    v.buf,
		nsp:    v.nsp,
		length: v.length,
		view:   true,
		conv:   v.conv,
		bcast:  v.bcast,
	}
}

// IsTypeEquivalent reports whether other has the same class and physical
// type. Category tables are not compared.
func (v *Vector) IsTypeEquivalent(other *Vector) bool {
	return v.class == other.class && v.typ.Eq(other.typ)
}

// SameCategories reports whether v and other are categoricals with equal
// category tables.
func (v *Vector) SameCategories(other *Vector) bool {
	return v.class == CATEGORICAL && other.class == CATEGORICAL && v.cats.Equal(other.cats)
}

// Categories returns a copy of the category table, nil for a flat vector.
func (v *Vector) Categories() []any {
	if v.class != CATEGORICAL {
		return nil
	}
	return v.cats.Values()
}

func (v *Vector) Ordered() bool {
	return v.class == CATEGORICAL && v.ordered
}

// Codes returns an owned flat copy of the codes.
func (v *Vector) Codes(mp *mpool.MPool) (*Vector, error) {
	if v.class != CATEGORICAL {
		return nil, moerr.NewInvalidInputNoCtx("codes of a flat column")
	}
	return v.AsNumerical().Dup(mp)
}

// NormalizeCompareValue broadcasts scalar to a vector comparable with v.
// A categorical encodes scalar against its table first, so a value outside
// the table becomes the sentinel code. A flat vector converts scalar to its
// type, and fails with TypeMismatch when the value does not fit.
func (v *Vector) NormalizeCompareValue(scalar any, mp *mpool.MPool) (*Vector, error) {
	if err := v.alive(); err != nil {
		return nil, err
	}
	if v.class == CATEGORICAL {
		code := v.Encode(scalar)
		val, err := scalarAs(code, v.typ.Oid, mp)
		if err != nil {
			return nil, err
		}
		buf, err := v.bcast.Broadcast(val, v.typ.Oid, v.length, mp)
		if err != nil {
			return nil, err
		}
		w := v.derive(CATEGORICAL, buf, nil)
		w.cats, w.ordered = v.cats, v.ordered
		return w, nil
	}
	val, err := scalarAs(scalar, v.typ.Oid, mp)
	if err != nil {
		return nil, err
	}
	buf, err := v.bcast.Broadcast(val, v.typ.Oid, v.length, mp)
	if err != nil {
		return nil, err
	}
	return v.derive(FLAT, buf, nil), nil
}

// scalarAs converts scalar to the Go type of to without losing its value.
func scalarAs(scalar any, to types.T, mp *mpool.MPool) (any, error) {
	nv, kind, err := dict.Normalize(scalar)
	if err != nil {
		return nil, moerr.NewTypeMismatchNoCtx("cannot compare %s with %T", to, scalar)
	}
	if (kind == dict.KindBool) != (to == types.T_bool) || kind == dict.KindString {
		return nil, moerr.NewTypeMismatchNoCtx("cannot compare %s with %T", to, scalar)
	}
	if f, ok := nv.(float64); ok && to.IsInteger() && f != math.Trunc(f) {
		return nil, moerr.NewTypeMismatchNoCtx("%v does not fit %s", scalar, to)
	}
	var src *Vector
	switch x := nv.(type) {
	case int64:
		src, err = NewFromSlice([]int64{x}, nil, 0, mp)
	case uint64:
		src, err = NewFromSlice([]uint64{x}, nil, 0, mp)
	case float64:
		src, err = NewFromSlice([]float64{x}, nil, 0, mp)
	case bool:
		return x, nil
	}
	if err != nil {
		return nil, err
	}
	defer src.Free()
	dst, err := src.Astype(to, mp)
	if err != nil {
		if moerr.IsMoErrCode(err, moerr.ErrOutOfRange) {
			return nil, moerr.NewTypeMismatchNoCtx("%v does not fit %s", scalar, to)
		}
		return nil, err
	}
	defer dst.Free()
	return dst.buf.Get(0)
}
