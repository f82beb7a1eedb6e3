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
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/config"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
	"github.com/matrixorigin/gdfcore/pkg/container/vector"
)

var defaultEngine = NewEngine(config.Default().Join, nil)

// InnerJoin joins left and right on equal keys with the default engine.
func InnerJoin(ctx context.Context, left, right *vector.Vector) ([]Pair, error) {
	return defaultEngine.InnerJoin(ctx, left, right)
}

// InnerJoin returns every (l, r) with left[l] == right[r]. Pairs are grouped
// by key in ascending key order, a group ascends by left position and then
// by right position. Null keys never match, nor does the missing-category
// code of a categorical, which groups by code.
func (e *Engine) InnerJoin(ctx context.Context, left, right *vector.Vector) ([]Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKeys(left, right); err != nil {
		return nil, err
	}
	if left.Length() == 0 || right.Length() == 0 {
		return []Pair{}, nil
	}

	if left.IsCategorical() {
		return e.joinCodes(left.AsNumerical(), right.AsNumerical())
	}
	switch left.GetType().Oid {
	case types.T_bool:
		return hashJoin(e, left, right, compareBool, nil)
	case types.T_int8:
		return hashJoin(e, left, right, cmp.Compare[int8], nil)
	case types.T_int16:
		return hashJoin(e, left, right, cmp.Compare[int16], nil)
	case types.T_int32:
		return hashJoin(e, left, right, cmp.Compare[int32], nil)
	case types.T_int64:
		return hashJoin(e, left, right, cmp.Compare[int64], nil)
	case types.T_uint8:
		return hashJoin(e, left, right, cmp.Compare[uint8], nil)
	case types.T_uint16:
		return hashJoin(e, left, right, cmp.Compare[uint16], nil)
	case types.T_uint32:
		return hashJoin(e, left, right, cmp.Compare[uint32], nil)
	case types.T_uint64:
		return hashJoin(e, left, right, cmp.Compare[uint64], nil)
	case types.T_float32:
		return hashJoin(e, left, right, cmp.Compare[float32], nil)
	case types.T_float64:
		return hashJoin(e, left, right, cmp.Compare[float64], nil)
	}
	return nil, moerr.NewNotSupportedNoCtx("join on %s", left.GetType())
}

func (e *Engine) joinCodes(left, right *vector.Vector) ([]Pair, error) {
	switch left.GetType().Oid {
	case types.T_int8:
		return hashJoin(e, left, right, cmp.Compare[int8], isMissingCode[int8])
	case types.T_int16:
		return hashJoin(e, left, right, cmp.Compare[int16], isMissingCode[int16])
	case types.T_int32:
		return hashJoin(e, left, right, cmp.Compare[int32], isMissingCode[int32])
	case types.T_int64:
		return hashJoin(e, left, right, cmp.Compare[int64], isMissingCode[int64])
	}
	return nil, moerr.NewInvalidStateNoCtx("categorical codes of %s", left.GetType())
}

// isNaN is only true for a float NaN, which equals no key.
func isNaN[T comparable](v T) bool {
	return v != v
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

func isMissingCode[T types.Ints](c T) bool {
	return c == types.CodeNull
}

func checkKeys(left, right *vector.Vector) error {
	if left.Freed() || right.Freed() {
		return moerr.NewInvalidStateNoCtx("join on a freed column")
	}
	if left.IsCategorical() != right.IsCategorical() {
		return moerr.NewTypeMismatchNoCtx("cannot join a categorical with a flat column")
	}
	if !left.GetType().Eq(right.GetType()) {
		return moerr.NewTypeMismatchNoCtx("cannot join %s with %s", left.GetType(), right.GetType())
	}
	if left.IsCategorical() && !left.SameCategories(right) {
		return moerr.NewTypeMismatchNoCtx("cannot join categoricals with different categories")
	}
	return nil
}

func hashJoin[T types.FixedSizeT](e *Engine, left, right *vector.Vector, compare func(a, b T) int, skip func(T) bool) ([]Pair, error) {
	hint, err := e.presize(right)
	if err != nil {
		return nil, err
	}
	ctr := newContainer(vector.GenerateFunctionFixedTypeParameter[T](right), hint, skip)
	probe := vector.GenerateFunctionFixedTypeParameter[T](left)
	pairs := ctr.probe(probe, skip)
	// the probe emits left order, a stable sort on the key keeps it inside a group
	keys := probe.UnSafeGetAllValue()
	slices.SortStableFunc(pairs, func(a, b Pair) int {
		return compare(keys[a.Left], keys[b.Left])
	})
	e.getLogger().Debug("inner join",
		zap.Int("build rows", right.Length()),
		zap.Int("distinct keys", len(ctr.first)),
		zap.Int("presize", hint),
		zap.Int("probe rows", left.Length()),
		zap.Int("pairs", len(pairs)))
	return pairs, nil
}

// presize returns the capacity hint of the build table.
func (e *Engine) presize(build *vector.Vector) (int, error) {
	if e.presizeThreshold < 0 || build.Length() <= e.presizeThreshold {
		return 0, nil
	}
	n, err := build.ApproxDistinct()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// newContainer walks the rows backwards so that every chain ascends.
func newContainer[T types.FixedSizeT](vec vector.FunctionParameterWrapper[T], hint int, skip func(T) bool) *container[T] {
	n := vec.GetSourceVector().Length()
	ctr := &container[T]{
		first: make(map[T]int64, hint),
		next:  make([]int64, n),
	}
	for i := n - 1; i >= 0; i-- {
		v, null := vec.GetValue(uint64(i))
		if null || isNaN(v) || (skip != nil && skip(v)) {
			continue
		}
		ctr.next[i] = ctr.first[v]
		ctr.first[v] = int64(i) + 1
	}
	return ctr
}

func (ctr *container[T]) probe(vec vector.FunctionParameterWrapper[T], skip func(T) bool) []Pair {
	n := vec.GetSourceVector().Length()
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		v, null := vec.GetValue(uint64(i))
		if null || isNaN(v) || (skip != nil && skip(v)) {
			continue
		}
		for sel := ctr.first[v]; sel != 0; sel = ctr.next[sel-1] {
			pairs = append(pairs, Pair{Left: int64(i), Right: sel - 1})
		}
	}
	return pairs
}
