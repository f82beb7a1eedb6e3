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
	"bytes"
	"testing"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/dict"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
	"github.com/stretchr/testify/require"
)

func TestMarshalFlat(t *testing.T) {
	mp := mpool.MustNewZero()
	vals := make([]int64, 1000)
	valid := make([]bool, 1000)
	for i := range vals {
		vals[i] = int64(i % 7)
		valid[i] = i%10 != 0
	}
	v, err := NewFromSlice(vals, valid, UnknownNullCount, mp)
	require.NoError(t, err)
	defer v.Free()

	data, err := v.MarshalBinary()
	require.NoError(t, err)
	// repetitive data compresses
	require.Less(t, len(data), 8000)

	var w Vector
	require.NoError(t, w.UnmarshalBinary(data))
	require.Equal(t, v.String(), w.String())
	require.Equal(t, 100, w.NullCount())

	var x Vector
	require.NoError(t, x.UnmarshalBinaryWithMpool(data, mp))
	require.Equal(t, int64(16000), mp.CurrNB())
	x.Free()

	tv, err := v.Token()
	require.NoError(t, err)
	tw, err := w.Token()
	require.NoError(t, err)
	require.Equal(t, tv, tw)
}

func TestMarshalCategorical(t *testing.T) {
	mp := mpool.MustNewZero()
	v, err := NewCategorical([]any{"a", nil, "b", "a"}, true, mp)
	require.NoError(t, err)
	defer v.Free()

	data, err := v.MarshalBinary()
	require.NoError(t, err)
	var w Vector
	require.NoError(t, w.UnmarshalBinary(data))
	require.True(t, w.IsCategorical())
	require.True(t, w.Ordered())
	require.Equal(t, []any{"a", "b"}, w.Categories())
	require.Equal(t, "[a null b a]", w.String())

	empty, err := NewCategorical([]any{nil, nil}, false, mp)
	require.NoError(t, err)
	data, err = empty.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, w.UnmarshalBinary(data))
	require.Equal(t, 2, w.NullCount())
	require.Empty(t, w.Categories())
	empty.Free()
}

func TestUnmarshalRejects(t *testing.T) {
	mp := mpool.MustNewZero()
	v, err := NewFromSlice([]int32{1, 2, 3}, nil, 0, mp)
	require.NoError(t, err)
	data, err := v.MarshalBinary()
	require.NoError(t, err)
	v.Free()

	var w Vector
	for _, n := range []int{0, 2, 11, len(data) - 1} {
		err = w.UnmarshalBinary(data[:n])
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput), "prefix %d", n)
	}
	bad := append([]byte(nil), data...)
	bad[0] = 9
	require.True(t, moerr.IsMoErrCode(w.UnmarshalBinary(bad), moerr.ErrInvalidInput))

	// a length whose byte size wraps to the empty data block
	var forged bytes.Buffer
	forged.Write([]byte{FLAT, 0, uint8(types.T_int64)})
	length := int64(1) << 61
	forged.Write(types.EncodeInt64(&length))
	var zero uint32
	forged.Write(types.EncodeUint32(&zero)) // nsp
	forged.WriteByte(dataRaw)
	forged.Write(types.EncodeUint32(&zero)) // rawLen
	forged.Write(types.EncodeUint32(&zero)) // data
	forged.WriteByte(uint8(dict.KindNone))
	err = w.UnmarshalBinary(forged.Bytes())
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	require.Contains(t, err.Error(), "0 data bytes for 2305843009213693952")
}

func TestToken(t *testing.T) {
	mp := mpool.MustNewZero()
	a, err := NewFromSlice([]int64{1, 2, 3}, []bool{true, false, true}, 1, mp)
	require.NoError(t, err)
	defer a.Free()
	b, err := NewFromSlice([]int64{1, 99, 3}, []bool{true, false, true}, 1, mp)
	require.NoError(t, err)
	defer b.Free()
	c, err := NewFromSlice([]int64{1, 2, 4}, []bool{true, false, true}, 1, mp)
	require.NoError(t, err)
	defer c.Free()
	d, err := NewFromSlice([]uint64{1, 2, 3}, []bool{true, false, true}, 1, mp)
	require.NoError(t, err)
	defer d.Free()

	ta, err := a.Token()
	require.NoError(t, err)
	tb, err := b.Token()
	require.NoError(t, err)
	tc, err := c.Token()
	require.NoError(t, err)
	td, err := d.Token()
	require.NoError(t, err)
	again, err := a.Token()
	require.NoError(t, err)
	require.Equal(t, ta, again)
	// the value under a null row does not count
	require.Equal(t, ta, tb)
	require.NotEqual(t, ta, tc)
	require.NotEqual(t, ta, td)

	x, err := NewCategorical([]any{"a", "b"}, false, mp)
	require.NoError(t, err)
	defer x.Free()
	y, err := NewCategorical([]any{"a", "b"}, true, mp)
	require.NoError(t, err)
	defer y.Free()
	z, err := NewCategorical([]any{"a", "c"}, false, mp)
	require.NoError(t, err)
	defer z.Free()
	tx, err := x.Token()
	require.NoError(t, err)
	ty, err := y.Token()
	require.NoError(t, err)
	tz, err := z.Token()
	require.NoError(t, err)
	require.NotEqual(t, tx, ty)
	require.NotEqual(t, tx, tz)

	a.Free()
	_, err = a.Token()
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestApproxDistinct(t *testing.T) {
	mp := mpool.MustNewZero()
	vals := make([]int32, 5000)
	for i := range vals {
		vals[i] = int32(i % 1000)
	}
	v, err := NewFromSlice(vals, nil, 0, mp)
	require.NoError(t, err)
	defer v.Free()
	n, err := v.ApproxDistinct()
	require.NoError(t, err)
	require.InDelta(t, 1000, float64(n), 50)

	c, err := NewCategoricalFromCodes([]any{"a", "b"}, false, []int8{0, 1, -1, 1}, []bool{true, true, true, false}, mp)
	require.NoError(t, err)
	defer c.Free()
	n, err = c.ApproxDistinct()
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)
}
