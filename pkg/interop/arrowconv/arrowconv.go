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

// Package arrowconv converts vectors to and from Apache Arrow arrays.
// A categorical maps to a dictionary array whose indices are its codes,
// the missing-category code becomes an Arrow null.
package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
	"github.com/matrixorigin/gdfcore/pkg/container/vector"
)

type builder[T any] interface {
	AppendValues(v []T, valid []bool)
	NewArray() arrow.Array
	Release()
}

// ToArrow copies v into an array allocated from mem. The caller releases it.
func ToArrow(v *vector.Vector, mem memory.Allocator) (arrow.Array, error) {
	if v.Freed() {
		return nil, moerr.NewInvalidStateNoCtx("export of a freed column")
	}
	if v.IsCategorical() {
		return categoricalToArrow(v, mem)
	}
	return flatToArrow(v, v.Validity(), mem)
}

func flatToArrow(v *vector.Vector, valid []bool, mem memory.Allocator) (arrow.Array, error) {
	switch v.GetType().Oid {
	case types.T_bool:
		return build[bool](array.NewBooleanBuilder(mem), v, valid), nil
	case types.T_int8:
		return build[int8](array.NewInt8Builder(mem), v, valid), nil
	case types.T_int16:
		return build[int16](array.NewInt16Builder(mem), v, valid), nil
	case types.T_int32:
		return build[int32](array.NewInt32Builder(mem), v, valid), nil
	case types.T_int64:
		return build[int64](array.NewInt64Builder(mem), v, valid), nil
	case types.T_uint8:
		return build[uint8](array.NewUint8Builder(mem), v, valid), nil
	case types.T_uint16:
		return build[uint16](array.NewUint16Builder(mem), v, valid), nil
	case types.T_uint32:
		return build[uint32](array.NewUint32Builder(mem), v, valid), nil
	case types.T_uint64:
		return build[uint64](array.NewUint64Builder(mem), v, valid), nil
	case types.T_float32:
		return build[float32](array.NewFloat32Builder(mem), v, valid), nil
	case types.T_float64:
		return build[float64](array.NewFloat64Builder(mem), v, valid), nil
	}
	return nil, moerr.NewNotSupportedNoCtx("arrow export of %s", v.GetType())
}

func build[T types.FixedSizeT](b builder[T], v *vector.Vector, valid []bool) arrow.Array {
	defer b.Release()
	b.AppendValues(vector.MustFixedCol[T](v), valid)
	return b.NewArray()
}

func categoricalToArrow(v *vector.Vector, mem memory.Allocator) (arrow.Array, error) {
	valid := make([]bool, v.Length())
	for i := range valid {
		// false for a null row or the missing-category code
		_, valid[i], _ = v.ElementAt(i)
	}
	indices, err := flatToArrow(v.AsNumerical(), valid, mem)
	if err != nil {
		return nil, err
	}
	defer indices.Release()
	values, err := categoriesToArrow(v.Categories(), mem)
	if err != nil {
		return nil, err
	}
	defer values.Release()
	dt := &arrow.DictionaryType{
		IndexType: indices.DataType(),
		ValueType: values.DataType(),
		Ordered:   v.Ordered(),
	}
	return array.NewDictionaryArray(dt, indices, values), nil
}

func categoriesToArrow(cats []any, mem memory.Allocator) (arrow.Array, error) {
	if len(cats) == 0 {
		return buildAny[string](array.NewStringBuilder(mem), nil), nil
	}
	switch cats[0].(type) {
	case int64:
		return buildAny[int64](array.NewInt64Builder(mem), cats), nil
	case uint64:
		return buildAny[uint64](array.NewUint64Builder(mem), cats), nil
	case float64:
		return buildAny[float64](array.NewFloat64Builder(mem), cats), nil
	case bool:
		return buildAny[bool](array.NewBooleanBuilder(mem), cats), nil
	case string:
		return buildAny[string](array.NewStringBuilder(mem), cats), nil
	}
	return nil, moerr.NewNotSupportedNoCtx("arrow export of %T categories", cats[0])
}

func buildAny[T any](b builder[T], cats []any) arrow.Array {
	defer b.Release()
	vals := make([]T, len(cats))
	for i, c := range cats {
		vals[i] = c.(T)
	}
	b.AppendValues(vals, nil)
	return b.NewArray()
}

// FromArrow copies arr into a vector owned by mp.
func FromArrow(arr arrow.Array, mp *mpool.MPool) (*vector.Vector, error) {
	switch a := arr.(type) {
	case *array.Dictionary:
		return dictionaryFromArrow(a, mp)
	case *array.Boolean:
		vals := make([]bool, a.Len())
		for i := range vals {
			vals[i] = a.Value(i)
		}
		return vector.NewFromSlice(vals, validity(a), a.NullN(), mp)
	case *array.Int8:
		return vector.NewFromSlice(a.Int8Values(), validity(a), a.NullN(), mp)
	case *array.Int16:
		return vector.NewFromSlice(a.Int16Values(), validity(a), a.NullN(), mp)
	case *array.Int32:
		return vector.NewFromSlice(a.Int32Values(), validity(a), a.NullN(), mp)
	case *array.Int64:
		return vector.NewFromSlice(a.Int64Values(), validity(a), a.NullN(), mp)
	case *array.Uint8:
		return vector.NewFromSlice(a.Uint8Values(), validity(a), a.NullN(), mp)
	case *array.Uint16:
		return vector.NewFromSlice(a.Uint16Values(), validity(a), a.NullN(), mp)
	case *array.Uint32:
		return vector.NewFromSlice(a.Uint32Values(), validity(a), a.NullN(), mp)
	case *array.Uint64:
		return vector.NewFromSlice(a.Uint64Values(), validity(a), a.NullN(), mp)
	case *array.Float32:
		return vector.NewFromSlice(a.Float32Values(), validity(a), a.NullN(), mp)
	case *array.Float64:
		return vector.NewFromSlice(a.Float64Values(), validity(a), a.NullN(), mp)
	}
	return nil, moerr.NewNotSupportedNoCtx("arrow import of %s", arr.DataType())
}

// validity is nil when arr has no nulls.
func validity(arr arrow.Array) []bool {
	if arr.NullN() == 0 {
		return nil
	}
	valid := make([]bool, arr.Len())
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}
	return valid
}

func dictionaryFromArrow(a *array.Dictionary, mp *mpool.MPool) (*vector.Vector, error) {
	dict := a.Dictionary()
	if dict.NullN() > 0 {
		return nil, moerr.NewInvalidInputNoCtx("null category in arrow dictionary")
	}
	cats := make([]any, dict.Len())
	for i := range cats {
		switch d := dict.(type) {
		case *array.Int64:
			cats[i] = d.Value(i)
		case *array.Uint64:
			cats[i] = d.Value(i)
		case *array.Float64:
			cats[i] = d.Value(i)
		case *array.Boolean:
			cats[i] = d.Value(i)
		case *array.String:
			cats[i] = d.Value(i)
		default:
			return nil, moerr.NewNotSupportedNoCtx("arrow categories of %s", dict.DataType())
		}
	}

	var codes any
	switch idx := a.Indices().(type) {
	case *array.Int8:
		codes = idx.Int8Values()
	case *array.Int16:
		codes = idx.Int16Values()
	case *array.Int32:
		codes = idx.Int32Values()
	case *array.Int64:
		codes = idx.Int64Values()
	default:
		return nil, moerr.NewNotSupportedNoCtx("arrow dictionary indices of %s", idx.DataType())
	}
	ordered := a.DataType().(*arrow.DictionaryType).Ordered
	return vector.NewCategoricalFromCodes(cats, ordered, codes, validity(a), mp)
}
