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

// Package dict is the category table of a categorical column: distinct
// values in first-seen order, and a reverse index from value to code.
package dict

import (
	"math"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

// Kind is the normalized type shared by all values of a Dict.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindUint:
		return "uint64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	}
	return "none"
}

// Type is the column type of the values of kind k.
func (k Kind) Type() types.T {
	switch k {
	case KindInt:
		return types.T_int64
	case KindUint:
		return types.T_uint64
	case KindFloat:
		return types.T_float64
	case KindBool:
		return types.T_bool
	case KindString:
		return types.T_varchar
	}
	return types.T_any
}

// Normalize widens v to its kind's canonical Go type.
func Normalize(v any) (any, Kind, error) {
	switch x := v.(type) {
	case int8:
		return int64(x), KindInt, nil
	case int16:
		return int64(x), KindInt, nil
	case int32:
		return int64(x), KindInt, nil
	case int64:
		return x, KindInt, nil
	case int:
		return int64(x), KindInt, nil
	case uint8:
		return uint64(x), KindUint, nil
	case uint16:
		return uint64(x), KindUint, nil
	case uint32:
		return uint64(x), KindUint, nil
	case uint64:
		return x, KindUint, nil
	case uint:
		return uint64(x), KindUint, nil
	case float32:
		return float64(x), KindFloat, nil
	case float64:
		return x, KindFloat, nil
	case bool:
		return x, KindBool, nil
	case string:
		return x, KindString, nil
	}
	return nil, KindNone, moerr.NewInvalidInputNoCtx("category value %v of type %T", v, v)
}

type Dict struct {
	kind   Kind
	values []any
	idx    reverseIndex
}

// New builds a table from distinct values.
func New(values []any) (*Dict, error) {
	d := &Dict{}
	d.idx = &scanReverseIndex{values: &d.values}
	for _, v := range values {
		code, added, err := d.insert(v)
		if err != nil {
			return nil, err
		}
		if !added {
			return nil, moerr.NewInvalidInputNoCtx("duplicate category %v at %d", v, code)
		}
	}
	return d, nil
}

// FindOrInsert returns the code of v, appending v when it is new.
func (d *Dict) FindOrInsert(v any) (int64, error) {
	code, _, err := d.insert(v)
	return code, err
}

func (d *Dict) insert(v any) (int64, bool, error) {
	nv, kind, err := Normalize(v)
	if err != nil {
		return -1, false, err
	}
	if f, ok := nv.(float64); ok && math.IsNaN(f) {
		return -1, false, moerr.NewInvalidInputNoCtx("NaN cannot be a category")
	}
	if d.kind != KindNone && d.kind != kind {
		return -1, false, moerr.NewInvalidInputNoCtx("category %v is %s, table holds %s", v, kind, d.kind)
	}
	if code := d.idx.find(nv); code >= 0 {
		return code, false, nil
	}
	d.kind = kind
	code := int64(len(d.values))
	d.values = append(d.values, nv)
	d.idx.insert(nv, code)
	if _, ok := d.idx.(*scanReverseIndex); ok && len(d.values) > linearScanLimit {
		d.idx = newHashReverseIndex(d.values)
	}
	return code, true, nil
}

// Encode returns the code of v, or -1. A number of another numeric kind
// matches when it converts to the table's kind without loss.
func (d *Dict) Encode(v any) int64 {
	nv, kind, err := Normalize(v)
	if err != nil {
		return -1
	}
	if kind != d.kind {
		if nv, err = convertKind(nv, kind, d.kind); err != nil {
			return -1
		}
	}
	return d.idx.find(nv)
}

const twoPow63 = 9223372036854775808.0

// convertKind converts a normalized number between KindInt, KindUint and
// KindFloat, failing when the value is not representable in the target kind.
func convertKind(v any, from, to Kind) (any, error) {
	switch x := v.(type) {
	case int64:
		switch to {
		case KindUint:
			if x >= 0 {
				return uint64(x), nil
			}
		case KindFloat:
			if f := float64(x); f < twoPow63 && int64(f) == x {
				return f, nil
			}
		}
	case uint64:
		switch to {
		case KindInt:
			if x <= math.MaxInt64 {
				return int64(x), nil
			}
		case KindFloat:
			if f := float64(x); f < 2*twoPow63 && uint64(f) == x {
				return f, nil
			}
		}
	case float64:
		if x != math.Trunc(x) {
			break
		}
		switch to {
		case KindInt:
			if x >= -twoPow63 && x < twoPow63 {
				return int64(x), nil
			}
		case KindUint:
			if x >= 0 && x < 2*twoPow63 {
				return uint64(x), nil
			}
		}
	}
	return nil, moerr.NewInvalidInputNoCtx("%v of kind %s has no exact %s value", v, from, to)
}

// Decode returns the value of code, ok is false for -1 or any code outside the table.
func (d *Dict) Decode(code int64) (any, bool) {
	if code < 0 || code >= int64(len(d.values)) {
		return nil, false
	}
	return d.values[code], true
}

func (d *Dict) Len() int {
	return len(d.values)
}

func (d *Dict) Kind() Kind {
	return d.kind
}

// Values returns a copy of the table.
func (d *Dict) Values() []any {
	return append([]any(nil), d.values...)
}

// Equal reports whether both tables hold the same values in the same order.
func (d *Dict) Equal(o *Dict) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil || d.kind != o.kind || len(d.values) != len(o.values) {
		return false
	}
	for i := range d.values {
		if d.values[i] != o.values[i] {
			return false
		}
	}
	return true
}
