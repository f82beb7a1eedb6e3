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
	"github.com/matrixorigin/gdfcore/pkg/container/nulls"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

// Astype converts v to target. Integer results that overflow fail with
// OutOfRange, floats truncate toward zero. A categorical converts its codes.
func (v *Vector) Astype(target types.T, mp *mpool.MPool) (*Vector, error) {
	if err := v.alive(); err != nil {
		return nil, err
	}
	return classTable[v.class].astype(v, target, mp)
}

func flatAstype(v *Vector, target types.T, mp *mpool.MPool) (*Vector, error) {
	typ, err := v.conv.PhysicalType(target)
	if err != nil {
		return nil, err
	}
	if !types.Castable(v.typ.Oid, typ.Oid) {
		return nil, moerr.NewUnsupportedCastNoCtx(v.typ.String(), typ.String())
	}
	buf, err := castBuffer(v, typ.Oid, mp)
	if err != nil {
		return nil, err
	}
	return v.derive(FLAT, buf, v.nsp.Clone()), nil
}

func categoricalAstype(v *Vector, target types.T, mp *mpool.MPool) (*Vector, error) {
	return flatAstype(v.AsNumerical(), target, mp)
}

func castBuffer(v *Vector, to types.T, mp *mpool.MPool) (*buffer.Buffer, error) {
	if v.typ.Oid == to {
		return v.buf.Clone(mp)
	}
	out, err := buffer.Allocate(to, v.length, mp)
	if err != nil {
		return nil, err
	}
	switch to {
	case types.T_int8:
		err = castTo(v, buffer.MustSlice[int8](out))
	case types.T_int16:
		err = castTo(v, buffer.MustSlice[int16](out))
	case types.T_int32:
		err = castTo(v, buffer.MustSlice[int32](out))
	case types.T_int64:
		err = castTo(v, buffer.MustSlice[int64](out))
	case types.T_uint8:
		err = castTo(v, buffer.MustSlice[uint8](out))
	case types.T_uint16:
		err = castTo(v, buffer.MustSlice[uint16](out))
	case types.T_uint32:
		err = castTo(v, buffer.MustSlice[uint32](out))
	case types.T_uint64:
		err = castTo(v, buffer.MustSlice[uint64](out))
	case types.T_float32:
		err = castTo(v, buffer.MustSlice[float32](out))
	case types.T_float64:
		err = castTo(v, buffer.MustSlice[float64](out))
	default:
		err = moerr.NewUnsupportedCastNoCtx(v.typ.String(), to.String())
	}
	if err != nil {
		out.Free()
		return nil, err
	}
	return out, nil
}

// castTo widens every source value to int64, uint64 or float64 before
// narrowing it into dst.
func castTo[T types.Number](v *Vector, dst []T) error {
	from := v.typ.Oid
	switch {
	case from == types.T_bool:
		vs := MustFixedCol[bool](v)
		for i, x := range vs {
			if x {
				dst[i] = 1
			}
		}
		return nil
	case from.IsSignedInt():
		return fromInt64(signedValues(v), v.nsp, dst)
	case from.IsUnsignedInt():
		return fromUint64(unsignedValues(v), v.nsp, dst)
	case from.IsFloat():
		return fromFloat64(floatValues(v), v.nsp, dst)
	}
	return moerr.NewUnsupportedCastNoCtx(from.String(), types.TypeOf[T]().String())
}

func widen[F types.Number, W int64 | uint64 | float64](xs []F) []W {
	ws := make([]W, len(xs))
	for i, x := range xs {
		ws[i] = W(x)
	}
	return ws
}

func signedValues(v *Vector) []int64 {
	switch v.typ.Oid {
	case types.T_int8:
		return widen[int8, int64](MustFixedCol[int8](v))
	case types.T_int16:
		return widen[int16, int64](MustFixedCol[int16](v))
	case types.T_int32:
		return widen[int32, int64](MustFixedCol[int32](v))
	case types.T_int64:
		return MustFixedCol[int64](v)
	}
	return nil
}

func unsignedValues(v *Vector) []uint64 {
	switch v.typ.Oid {
	case types.T_uint8:
		return widen[uint8, uint64](MustFixedCol[uint8](v))
	case types.T_uint16:
		return widen[uint16, uint64](MustFixedCol[uint16](v))
	case types.T_uint32:
		return widen[uint32, uint64](MustFixedCol[uint32](v))
	case types.T_uint64:
		return MustFixedCol[uint64](v)
	}
	return nil
}

func floatValues(v *Vector) []float64 {
	switch v.typ.Oid {
	case types.T_float32:
		return widen[float32, float64](MustFixedCol[float32](v))
	case types.T_float64:
		return MustFixedCol[float64](v)
	}
	return nil
}

// intBounds returns the closed integer range of an integer oid.
func intBounds(t types.T) (lo int64, hi uint64) {
	switch t {
	case types.T_int8:
		return math.MinInt8, math.MaxInt8
	case types.T_int16:
		return math.MinInt16, math.MaxInt16
	case types.T_int32:
		return math.MinInt32, math.MaxInt32
	case types.T_int64:
		return math.MinInt64, math.MaxInt64
	case types.T_uint8:
		return 0, math.MaxUint8
	case types.T_uint16:
		return 0, math.MaxUint16
	case types.T_uint32:
		return 0, math.MaxUint32
	}
	return 0, math.MaxUint64
}

func intFits(x int64, to types.T) bool {
	if to.IsFloat() {
		return true
	}
	lo, hi := intBounds(to)
	return x >= lo && (x < 0 || uint64(x) <= hi)
}

func uintFits(x uint64, to types.T) bool {
	if to.IsFloat() {
		return true
	}
	_, hi := intBounds(to)
	return x <= hi
}

func floatFits(f float64, to types.T) bool {
	switch {
	case to == types.T_float64:
		return true
	case to == types.T_float32:
		return math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) <= math.MaxFloat32
	case math.IsNaN(f) || math.IsInf(f, 0):
		return false
	}
	lo, hi := intBounds(to)
	t := math.Trunc(f)
	// float64(hi)+1 rounds to 2^63 and 2^64 for the 64-bit types.
	return t >= float64(lo) && t < float64(hi)+1
}

func fromInt64[T types.Number](src []int64, nsp *nulls.Nulls, dst []T) error {
	to := types.TypeOf[T]()
	for i, x := range src {
		if nulls.Contains(nsp, uint64(i)) {
			continue
		}
		if !intFits(x, to) {
			return moerr.NewOutOfRangeNoCtx(to.String(), "value '%v'", x)
		}
		dst[i] = T(x)
	}
	return nil
}

func fromUint64[T types.Number](src []uint64, nsp *nulls.Nulls, dst []T) error {
	to := types.TypeOf[T]()
	for i, x := range src {
		if nulls.Contains(nsp, uint64(i)) {
			continue
		}
		if !uintFits(x, to) {
			return moerr.NewOutOfRangeNoCtx(to.String(), "value '%v'", x)
		}
		dst[i] = T(x)
	}
	return nil
}

func fromFloat64[T types.Number](src []float64, nsp *nulls.Nulls, dst []T) error {
	to := types.TypeOf[T]()
	for i, x := range src {
		if nulls.Contains(nsp, uint64(i)) {
			continue
		}
		if !floatFits(x, to) {
			return moerr.NewOutOfRangeNoCtx(to.String(), "value '%v'", x)
		}
		dst[i] = T(x)
	}
	return nil
}
