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
	"cmp"
	"slices"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

// SortByValues returns the row order that sorts v. The sort is stable and
// puts null rows, and NaN, last in both directions. Use Shuffle to
// materialize the order.
func (v *Vector) SortByValues(ascending bool) ([]int64, error) {
	if err := v.alive(); err != nil {
		return nil, err
	}
	return v.ops().sort(v, ascending)
}

// categoricalSort orders by code, not by category value.
func categoricalSort(v *Vector, ascending bool) ([]int64, error) {
	return flatSort(v.AsNumerical(), ascending)
}

func flatSort(v *Vector, ascending bool) ([]int64, error) {
	switch v.typ.Oid {
	case types.T_bool:
		return sortFixed(v, ascending, func(x, y bool) int {
			switch {
			case x == y:
				return 0
			case y:
				return -1
			}
			return 1
		}), nil
	case types.T_int8:
		return sortFixed(v, ascending, cmp.Compare[int8]), nil
	case types.T_int16:
		return sortFixed(v, ascending, cmp.Compare[int16]), nil
	case types.T_int32:
		return sortFixed(v, ascending, cmp.Compare[int32]), nil
	case types.T_int64:
		return sortFixed(v, ascending, cmp.Compare[int64]), nil
	case types.T_uint8:
		return sortFixed(v, ascending, cmp.Compare[uint8]), nil
	case types.T_uint16:
		return sortFixed(v, ascending, cmp.Compare[uint16]), nil
	case types.T_uint32:
		return sortFixed(v, ascending, cmp.Compare[uint32]), nil
	case types.T_uint64:
		return sortFixed(v, ascending, cmp.Compare[uint64]), nil
	case types.T_float32:
		return sortFixed(v, ascending, cmp.Compare[float32]), nil
	case types.T_float64:
		return sortFixed(v, ascending, cmp.Compare[float64]), nil
	}
	return nil, moerr.NewInternalErrorNoCtx("unexpect type %s for function vector.SortByValues", v.typ)
}

func sortFixed[T types.FixedSizeT](v *Vector, ascending bool, compare func(x, y T) int) []int64 {
	vs := MustFixedCol[T](v)
	// x != x only holds for NaN
	missing := func(i int64) bool {
		return v.IsNull(int(i)) || vs[i] != vs[i]
	}
	sels := make([]int64, len(vs))
	for i := range sels {
		sels[i] = int64(i)
	}
	slices.SortStableFunc(sels, func(i, j int64) int {
		mi, mj := missing(i), missing(j)
		switch {
		case mi && mj:
			return 0
		case mi:
			return 1
		case mj:
			return -1
		}
		if ascending {
			return compare(vs[i], vs[j])
		}
		return compare(vs[j], vs[i])
	})
	return sels
}
