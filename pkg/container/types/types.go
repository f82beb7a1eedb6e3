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

package types

import (
	"fmt"
	"math"
)

// T is the physical scalar type of a column.
type T uint8

const (
	// any family
	T_any T = 0

	// bool family
	T_bool T = 10

	// numeric/integer family
	T_int8   T = 20
	T_int16  T = 21
	T_int32  T = 22
	T_int64  T = 23
	T_uint8  T = 25
	T_uint16 T = 26
	T_uint32 T = 27
	T_uint64 T = 28

	// numeric/float family
	T_float32 T = 30
	T_float64 T = 31

	// string family, only valid as a category value kind, never as buffer data.
	T_varchar T = 61
)

// CodeNull is the categorical sentinel code meaning "no matching category".
const CodeNull = -1

type Ints interface {
	int8 | int16 | int32 | int64
}

type UInts interface {
	uint8 | uint16 | uint32 | uint64
}

type Floats interface {
	float32 | float64
}

type Number interface {
	Ints | UInts | Floats
}

// FixedSizeT is every Go type a Buffer can hold.
type FixedSizeT interface {
	bool | Number
}

type Type struct {
	Oid T

	// Size of a single element in bytes, 0 for var-len kinds.
	Size int32
}

func New(oid T) Type {
	return Type{Oid: oid, Size: int32(oid.TypeLen())}
}

func (t T) ToType() Type {
	return New(t)
}

func (t Type) String() string {
	return t.Oid.String()
}

func (t Type) Eq(b Type) bool {
	return t.Oid == b.Oid && t.Size == b.Size
}

func (t Type) IsFixedLen() bool {
	return t.Oid.FixedLength() > 0
}

func (t Type) TypeSize() int {
	return int(t.Size)
}

// TypeOf maps a Go element type to its oid.
func TypeOf[E FixedSizeT]() T {
	var v E
	switch any(v).(type) {
	case bool:
		return T_bool
	case int8:
		return T_int8
	case int16:
		return T_int16
	case int32:
		return T_int32
	case int64:
		return T_int64
	case uint8:
		return T_uint8
	case uint16:
		return T_uint16
	case uint32:
		return T_uint32
	case uint64:
		return T_uint64
	case float32:
		return T_float32
	case float64:
		return T_float64
	}
	panic(fmt.Sprintf("unexpected element type %T", v))
}

func (t T) String() string {
	switch t {
	case T_any:
		return "any"
	case T_bool:
		return "bool"
	case T_int8:
		return "int8"
	case T_int16:
		return "int16"
	case T_int32:
		return "int32"
	case T_int64:
		return "int64"
	case T_uint8:
		return "uint8"
	case T_uint16:
		return "uint16"
	case T_uint32:
		return "uint32"
	case T_uint64:
		return "uint64"
	case T_float32:
		return "float32"
	case T_float64:
		return "float64"
	case T_varchar:
		return "str"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

// TypeLen returns type's length whose type oid is T
func (t T) TypeLen() int {
	switch t {
	case T_bool, T_int8, T_uint8:
		return 1
	case T_int16, T_uint16:
		return 2
	case T_int32, T_uint32, T_float32:
		return 4
	case T_int64, T_uint64, T_float64:
		return 8
	}
	return 0
}

// FixedLength dangerous code, use TypeLen() if you don't want -8, -16, -24
func (t T) FixedLength() int {
	return t.TypeLen()
}

func (t T) IsFixedLen() bool {
	return t.TypeLen() > 0
}

func (t T) IsSignedInt() bool {
	return t >= T_int8 && t <= T_int64
}

func (t T) IsUnsignedInt() bool {
	return t >= T_uint8 && t <= T_uint64
}

func (t T) IsInteger() bool {
	return t.IsSignedInt() || t.IsUnsignedInt()
}

func (t T) IsFloat() bool {
	return t == T_float32 || t == T_float64
}

func (t T) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

// IsCodeType reports whether t can hold categorical codes.
func (t T) IsCodeType() bool {
	return t.IsSignedInt()
}

// SmallestCodeType picks the narrowest signed integer able to index n categories.
func SmallestCodeType(n int) T {
	switch {
	case n <= math.MaxInt8:
		return T_int8
	case n <= math.MaxInt16:
		return T_int16
	case n <= math.MaxInt32:
		return T_int32
	default:
		return T_int64
	}
}

// Bounds returns the closed value range of an integer oid as float64.
func (t T) Bounds() (lo, hi float64) {
	switch t {
	case T_int8:
		return math.MinInt8, math.MaxInt8
	case T_int16:
		return math.MinInt16, math.MaxInt16
	case T_int32:
		return math.MinInt32, math.MaxInt32
	case T_int64:
		return math.MinInt64, math.MaxInt64
	case T_uint8:
		return 0, math.MaxUint8
	case T_uint16:
		return 0, math.MaxUint16
	case T_uint32:
		return 0, math.MaxUint32
	case T_uint64:
		return 0, math.MaxUint64
	case T_float32:
		return -math.MaxFloat32, math.MaxFloat32
	}
	return math.Inf(-1), math.Inf(1)
}
