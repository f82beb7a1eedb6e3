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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	myType := T_int64.ToType()
	require.Equal(t, "int64", myType.String())
}

func TestType_Eq(t *testing.T) {
	myType := T_int64.ToType()
	myType1 := T_int64.ToType()
	require.True(t, myType.Eq(myType1))
	require.False(t, myType.Eq(T_uint64.ToType()))
}

func TestT_ToType(t *testing.T) {
	require.Equal(t, int32(1), T_int8.ToType().Size)
	require.Equal(t, int32(2), T_int16.ToType().Size)
	require.Equal(t, int32(4), T_int32.ToType().Size)
	require.Equal(t, int32(8), T_int64.ToType().Size)
	require.Equal(t, int32(1), T_uint8.ToType().Size)
	require.Equal(t, int32(2), T_uint16.ToType().Size)
	require.Equal(t, int32(4), T_uint32.ToType().Size)
	require.Equal(t, int32(8), T_uint64.ToType().Size)
	require.Equal(t, int32(1), T_bool.ToType().Size)
	require.Equal(t, int32(0), T_varchar.ToType().Size)
	require.False(t, T_varchar.ToType().IsFixedLen())
}

func TestTypeOf(t *testing.T) {
	require.Equal(t, T_bool, TypeOf[bool]())
	require.Equal(t, T_int8, TypeOf[int8]())
	require.Equal(t, T_int32, TypeOf[int32]())
	require.Equal(t, T_uint16, TypeOf[uint16]())
	require.Equal(t, T_float32, TypeOf[float32]())
	require.Equal(t, T_float64, TypeOf[float64]())
}

func TestPromote(t *testing.T) {
	tests := []struct {
		l, r T
		want T
		ok   bool
	}{
		{T_int32, T_int32, T_int32, true},
		{T_int8, T_int64, T_int64, true},
		{T_uint16, T_uint8, T_uint16, true},
		{T_int32, T_uint32, T_int64, true},
		{T_float32, T_float32, T_float32, true},
		{T_float32, T_int8, T_float64, true},
		{T_int64, T_float64, T_float64, true},
		{T_bool, T_int32, T_any, false},
		{T_varchar, T_varchar, T_any, false},
	}
	for _, tt := range tests {
		got, ok := Promote(tt.l, tt.r)
		require.Equal(t, tt.ok, ok, "%s %s", tt.l, tt.r)
		require.Equal(t, tt.want, got, "%s %s", tt.l, tt.r)
	}
}

func TestCastable(t *testing.T) {
	require.True(t, Castable(T_int8, T_float64))
	require.True(t, Castable(T_float64, T_uint8))
	require.True(t, Castable(T_bool, T_int32))
	require.True(t, Castable(T_bool, T_bool))
	require.False(t, Castable(T_int32, T_bool))
	require.False(t, Castable(T_float32, T_bool))
	require.False(t, Castable(T_varchar, T_int64))
	require.False(t, Castable(T_int64, T_varchar))
}

func TestSmallestCodeType(t *testing.T) {
	require.Equal(t, T_int8, SmallestCodeType(0))
	require.Equal(t, T_int8, SmallestCodeType(math.MaxInt8))
	require.Equal(t, T_int16, SmallestCodeType(math.MaxInt8+1))
	require.Equal(t, T_int32, SmallestCodeType(math.MaxInt16+1))
	require.True(t, T_int16.IsCodeType())
	require.False(t, T_uint16.IsCodeType())
}

func TestEncodeDecodeSlice(t *testing.T) {
	vs := []int32{1, -2, 3}
	data := EncodeSlice(vs)
	require.Equal(t, 12, len(data))
	require.Equal(t, vs, DecodeSlice[int32](data))
	require.Nil(t, EncodeSlice[int64](nil))

	typ := T_uint16.ToType()
	require.Equal(t, typ, DecodeType(EncodeType(&typ)))

	f := 3.5
	require.Equal(t, f, DecodeFloat64(EncodeFloat64(&f)))
	require.Equal(t, int16(-7), DecodeFixed[int16](EncodeFixed(int16(-7))))
}

func BenchmarkCastA(b *testing.B) {
	x := make([]int16, 8192)
	y := make([]float64, 8192)
	for i := 0; i < 8192; i++ {
		x[i] = int16(i)
	}
	for n := 0; n < b.N; n++ {
		for i := 0; i < 8192; i++ {
			y[i] = math.Log(float64(x[i]))
		}
	}
}
