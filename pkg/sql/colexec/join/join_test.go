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

package join

import (
	"context"
	"math"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/config"
	"github.com/matrixorigin/gdfcore/pkg/container/vector"
)

func newInt32s(t *testing.T, mp *mpool.MPool, vals []int32, valid []bool) *vector.Vector {
	v, err := vector.NewFromSlice(vals, valid, vector.UnknownNullCount, mp)
	require.NoError(t, err)
	return v
}

func TestInnerJoin(t *testing.T) {
	mp := mpool.MustNewZero()
	left := newInt32s(t, mp, []int32{0, 0, 1, 2, 3}, nil)
	defer left.Free()
	right := newInt32s(t, mp, []int32{0, 1, 2, 2, 3}, nil)
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, []Pair{{0, 0}, {1, 0}, {2, 1}, {3, 2}, {3, 3}, {4, 4}}, pairs)
}

func TestInnerJoinFanOut(t *testing.T) {
	mp := mpool.MustNewZero()
	left, err := vector.NewFromSlice([]uint16{7, 1, 7, 7}, nil, 0, mp)
	require.NoError(t, err)
	defer left.Free()
	right, err := vector.NewFromSlice([]uint16{7, 7, 2}, nil, 0, mp)
	require.NoError(t, err)
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	// 3 x 2 pairs for key 7
	require.Equal(t, []Pair{{0, 0}, {0, 1}, {2, 0}, {2, 1}, {3, 0}, {3, 1}}, pairs)
}

func TestInnerJoinNulls(t *testing.T) {
	mp := mpool.MustNewZero()
	left := newInt32s(t, mp, []int32{0, 5, 1, 0}, []bool{true, false, true, false})
	defer left.Free()
	// the value under a null row is 0 as well
	right := newInt32s(t, mp, []int32{0, 0, 1}, []bool{false, true, true})
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, []Pair{{0, 1}, {2, 2}}, pairs)
}

func TestInnerJoinFloat(t *testing.T) {
	mp := mpool.MustNewZero()
	left, err := vector.NewFromSlice([]float64{math.NaN(), 1.5, 0}, nil, 0, mp)
	require.NoError(t, err)
	defer left.Free()
	right, err := vector.NewFromSlice([]float64{1.5, math.NaN(), math.Copysign(0, -1)}, nil, 0, mp)
	require.NoError(t, err)
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	// -0 equals 0, groups ascend by key
	require.Equal(t, []Pair{{2, 2}, {1, 0}}, pairs)
}

func TestInnerJoinGroupedByKey(t *testing.T) {
	mp := mpool.MustNewZero()
	left := newInt32s(t, mp, []int32{2, 1, 2, -4, 1}, nil)
	defer left.Free()
	right := newInt32s(t, mp, []int32{1, 2, -4, 2}, nil)
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	require.Equal(t, []Pair{
		{3, 2},
		{1, 0}, {4, 0},
		{0, 1}, {0, 3}, {2, 1}, {2, 3},
	}, pairs)

	bl, err := vector.NewFromSlice([]bool{true, false, true}, nil, 0, mp)
	require.NoError(t, err)
	defer bl.Free()
	br, err := vector.NewFromSlice([]bool{true, false}, nil, 0, mp)
	require.NoError(t, err)
	defer br.Free()
	pairs, err = InnerJoin(context.Background(), bl, br)
	require.NoError(t, err)
	require.Equal(t, []Pair{{1, 1}, {0, 0}, {2, 0}}, pairs)
}

func TestInnerJoinEmpty(t *testing.T) {
	mp := mpool.MustNewZero()
	left := newInt32s(t, mp, nil, nil)
	defer left.Free()
	right := newInt32s(t, mp, []int32{1, 2}, nil)
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	require.NotNil(t, pairs)
	require.Empty(t, pairs)

	pairs, err = InnerJoin(context.Background(), right, left)
	require.NoError(t, err)
	require.Empty(t, pairs)

	nomatch := newInt32s(t, mp, []int32{3, 4}, nil)
	defer nomatch.Free()
	pairs, err = InnerJoin(context.Background(), nomatch, right)
	require.NoError(t, err)
	require.Empty(t, pairs)
}

func TestInnerJoinTypeMismatch(t *testing.T) {
	mp := mpool.MustNewZero()
	i32 := newInt32s(t, mp, []int32{1, 2}, nil)
	defer i32.Free()
	i64, err := vector.NewFromSlice([]int64{1, 2}, nil, 0, mp)
	require.NoError(t, err)
	defer i64.Free()
	cat, err := vector.NewCategorical([]any{int64(1), int64(2)}, false, mp)
	require.NoError(t, err)
	defer cat.Free()
	other, err := vector.NewCategorical([]any{int64(2), int64(1)}, false, mp)
	require.NoError(t, err)
	defer other.Free()
	codes := cat.AsNumerical()

	for _, kv := range [][2]*vector.Vector{
		{i32, i64},
		{i64, i32},
		{cat, codes},
		{codes, cat},
		{cat, other},
	} {
		_, err := InnerJoin(context.Background(), kv[0], kv[1])
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrTypeMismatch), "%v", err)
	}
}

func TestInnerJoinCategorical(t *testing.T) {
	mp := mpool.MustNewZero()
	left, err := vector.NewCategoricalFromCodes([]any{"a", "b", "c"}, false,
		[]int8{0, 2, -1, 1, 2}, []bool{true, true, true, true, false}, mp)
	require.NoError(t, err)
	defer left.Free()
	right, err := vector.NewCategoricalFromCodes([]any{"a", "b", "c"}, false,
		[]int8{2, -1, 0, 2}, nil, mp)
	require.NoError(t, err)
	defer right.Free()

	pairs, err := InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	// the missing-category code matches nothing, not even itself
	require.Equal(t, []Pair{{0, 2}, {1, 0}, {1, 3}}, pairs)
}

func TestInnerJoinState(t *testing.T) {
	mp := mpool.MustNewZero()
	left := newInt32s(t, mp, []int32{1}, nil)
	right := newInt32s(t, mp, []int32{1}, nil)
	defer right.Free()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := InnerJoin(ctx, left, right)
	require.ErrorIs(t, err, context.Canceled)

	left.Free()
	_, err = InnerJoin(context.Background(), left, right)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestEnginePresize(t *testing.T) {
	mp := mpool.MustNewZero()
	core, logs := observer.New(zapcore.DebugLevel)
	e := NewEngine(config.JoinParameters{PresizeThreshold: 4}, zap.New(core))

	vals := make([]int64, 100)
	for i := range vals {
		vals[i] = int64(i % 10)
	}
	left, err := vector.NewFromSlice([]int64{3, 11}, nil, 0, mp)
	require.NoError(t, err)
	defer left.Free()
	right, err := vector.NewFromSlice(vals, nil, 0, mp)
	require.NoError(t, err)
	defer right.Free()

	pairs, err := e.InnerJoin(context.Background(), left, right)
	require.NoError(t, err)
	require.Len(t, pairs, 10)
	for i, p := range pairs {
		require.Equal(t, Pair{0, int64(3 + 10*i)}, p)
	}

	entries := logs.FilterMessage("inner join").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, int64(10), fields["distinct keys"])
	require.InDelta(t, 10, fields["presize"], 1)
	require.Equal(t, "join", entries[0].LoggerName)
}

func TestRunner(t *testing.T) {
	defer leaktest.AfterTest(t)()
	mp := mpool.MustNewZero()
	e := NewEngine(config.Default().Join, zap.NewNop())
	r, err := NewRunner(e, 4)
	require.NoError(t, err)
	defer r.Close()

	var tasks []Task
	for i := 0; i < 16; i++ {
		vals := make([]int32, 64)
		for j := range vals {
			vals[j] = int32((j * (i + 1)) % 13)
		}
		l := newInt32s(t, mp, vals, nil)
		defer l.Free()
		rv := newInt32s(t, mp, vals[:32], nil)
		defer rv.Free()
		tasks = append(tasks, Task{Left: l, Right: rv})
	}
	bad, err := vector.NewFromSlice([]int64{1}, nil, 0, mp)
	require.NoError(t, err)
	defer bad.Free()
	tasks = append(tasks, Task{Left: tasks[0].Left, Right: bad})

	results := r.Run(context.Background(), tasks)
	require.Len(t, results, len(tasks))
	for i, task := range tasks[:16] {
		want, err := e.InnerJoin(context.Background(), task.Left, task.Right)
		require.NoError(t, err)
		require.NoError(t, results[i].Err)
		require.Equal(t, want, results[i].Pairs)
	}
	require.True(t, moerr.IsMoErrCode(results[16].Err, moerr.ErrTypeMismatch))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, res := range r.Run(ctx, tasks[:3]) {
		require.ErrorIs(t, res.Err, context.Canceled)
	}
}

func TestRunnerRecoversPanic(t *testing.T) {
	defer leaktest.AfterTest(t)()
	mp := mpool.MustNewZero()
	core, logs := observer.New(zapcore.ErrorLevel)
	r, err := NewRunner(NewEngine(config.Default().Join, zap.New(core)), 2)
	require.NoError(t, err)
	defer r.Close()

	rv := newInt32s(t, mp, []int32{1, 2}, nil)
	defer rv.Free()
	results := r.Run(context.Background(), []Task{{Left: nil, Right: rv}, {Left: rv, Right: rv}})
	require.True(t, moerr.IsMoErrCode(results[0].Err, moerr.ErrInternal))
	require.NoError(t, results[1].Err)
	require.Equal(t, []Pair{{0, 0}, {1, 1}}, results[1].Pairs)

	entries := logs.FilterMessage("join task panic").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(0), entries[0].ContextMap()["task"])
}

func TestNewRunnerRejects(t *testing.T) {
	_, err := NewRunner(NewEngine(config.Default().Join, nil), 0)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
}
