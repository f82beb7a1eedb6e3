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

type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpNeg
	OpAbs
	OpNot
)

var opNames = [...]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpMod: "mod",
	OpEq:  "eq",
	OpNe:  "ne",
	OpLt:  "lt",
	OpLe:  "le",
	OpGt:  "gt",
	OpGe:  "ge",
	OpNeg: "neg",
	OpAbs: "abs",
	OpNot: "not",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

func (op Op) IsArithmetic() bool {
	return op <= OpMod
}

// IsUnordered reports eq and ne.
func (op Op) IsUnordered() bool {
	return op == OpEq || op == OpNe
}

// IsOrdered reports lt, le, gt and ge.
func (op Op) IsOrdered() bool {
	return op >= OpLt && op <= OpGe
}

func (op Op) IsUnary() bool {
	return op >= OpNeg && op <= OpNot
}

// classOps is the capability table entry of a vector class. A nil
// operation means the class does not support it.
type classOps struct {
	name    string
	binary  func(v *Vector, op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error)
	unary   func(v *Vector, op Op, mp *mpool.MPool) (*Vector, error)
	compare func(v *Vector, op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error)
	// equivalent reports whether two vectors of the class may be compared.
	equivalent func(v, rhs *Vector) bool
	ordered    func(v *Vector) bool
	astype     func(v *Vector, target types.T, mp *mpool.MPool) (*Vector, error)
	sort       func(v *Vector, ascending bool) ([]int64, error)
}

var classTable [2]classOps

func init() {
	classTable[FLAT] = classOps{
		name:       "Column",
		binary:     flatBinary,
		unary:      flatUnary,
		compare:    flatCompare,
		equivalent: func(v, rhs *Vector) bool { return v.typ.Eq(rhs.typ) },
		ordered:    func(*Vector) bool { return true },
		astype:     flatAstype,
		sort:       flatSort,
	}
	classTable[CATEGORICAL] = classOps{
		name:    "Categorical",
		compare: categoricalCompare,
		equivalent: func(v, rhs *Vector) bool {
			return v.IsTypeEquivalent(rhs) && v.cats.Equal(rhs.cats)
		},
		ordered: func(v *Vector) bool { return v.ordered },
		astype:  categoricalAstype,
		sort:    categoricalSort,
	}
}

func (v *Vector) ops() *classOps {
	return &classTable[v.class]
}

func checkBinary(v, rhs *Vector) error {
	if err := v.alive(); err != nil {
		return err
	}
	if err := rhs.alive(); err != nil {
		return err
	}
	if v.length != rhs.length {
		return moerr.NewSizeNotMatchNoCtx("left length %d, right length %d", v.length, rhs.length)
	}
	return nil
}

// BinaryOperator applies op row by row. Comparison ops are routed to
// UnorderedCompare and OrderedCompare.
func (v *Vector) BinaryOperator(op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error) {
	switch {
	case op.IsUnordered():
		return v.UnorderedCompare(op, rhs, mp)
	case op.IsOrdered():
		return v.OrderedCompare(op, rhs, mp)
	case !op.IsArithmetic():
		return nil, moerr.NewInvalidArg(moerr.Context(), "binary operator", op.String())
	}
	for _, x := range []*Vector{v, rhs} {
		if x.ops().binary == nil {
			return nil, moerr.NewUnsupportedOperationNoCtx(x.ops().name, op.String())
		}
	}
	if err := checkBinary(v, rhs); err != nil {
		return nil, err
	}
	return v.ops().binary(v, op, rhs, mp)
}

func (v *Vector) UnaryOperator(op Op, mp *mpool.MPool) (*Vector, error) {
	if !op.IsUnary() {
		return nil, moerr.NewInvalidArg(moerr.Context(), "unary operator", op.String())
	}
	if v.ops().unary == nil {
		return nil, moerr.NewUnsupportedOperationNoCtx(v.ops().name, op.String())
	}
	if err := v.alive(); err != nil {
		return nil, err
	}
	return v.ops().unary(v, op, mp)
}

// UnorderedCompare evaluates eq or ne. Both sides need the same type, and
// categoricals the same category table.
func (v *Vector) UnorderedCompare(op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error) {
	if !op.IsUnordered() {
		return nil, moerr.NewInvalidArg(moerr.Context(), "unordered compare", op.String())
	}
	if err := v.checkComparable(rhs); err != nil {
		return nil, err
	}
	return v.ops().compare(v, op, rhs, mp)
}

// OrderedCompare evaluates lt, le, gt or ge. Both sides must be ordered.
func (v *Vector) OrderedCompare(op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error) {
	if !op.IsOrdered() {
		return nil, moerr.NewInvalidArg(moerr.Context(), "ordered compare", op.String())
	}
	if !v.ops().ordered(v) || !rhs.ops().ordered(rhs) {
		return nil, moerr.NewUnorderedComparisonNoCtx()
	}
	if err := v.checkComparable(rhs); err != nil {
		return nil, err
	}
	return v.ops().compare(v, op, rhs, mp)
}

func (v *Vector) checkComparable(rhs *Vector) error {
	if v.class != rhs.class || !v.ops().equivalent(v, rhs) {
		return moerr.NewTypeMismatchNoCtx("%s of %s cannot compare with %s of %s",
			v.ops().name, v.typ, rhs.ops().name, rhs.typ)
	}
	return checkBinary(v, rhs)
}

// CompareScalar compares every row with scalar.
func (v *Vector) CompareScalar(op Op, scalar any, mp *mpool.MPool) (*Vector, error) {
	rhs, err := v.NormalizeCompareValue(scalar, mp)
	if err != nil {
		return nil, err
	}
	defer rhs.Free()
	if op.IsOrdered() {
		return v.OrderedCompare(op, rhs, mp)
	}
	return v.UnorderedCompare(op, rhs, mp)
}

type integer interface {
	types.Ints | types.UInts
}

func flatBinary(v *Vector, op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error) {
	rt, ok := types.Promote(v.typ.Oid, rhs.typ.Oid)
	if !ok {
		return nil, moerr.NewTypeMismatchNoCtx("cannot %s %s and %s", op, v.typ, rhs.typ)
	}
	l, err := v.promoteTo(rt, mp)
	if err != nil {
		return nil, err
	}
	defer l.Free()
	r, err := rhs.promoteTo(rt, mp)
	if err != nil {
		return nil, err
	}
	defer r.Free()

	out, err := buffer.Allocate(rt, v.length, mp)
	if err != nil {
		return nil, err
	}
	nsp := nulls.Or(v.nsp, rhs.nsp, v.length)
	var zeros []int
	switch rt {
	case types.T_int8:
		zeros = arithInt(op, MustFixedCol[int8](l), MustFixedCol[int8](r), buffer.MustSlice[int8](out), nsp)
	case types.T_int16:
		zeros = arithInt(op, MustFixedCol[int16](l), MustFixedCol[int16](r), buffer.MustSlice[int16](out), nsp)
	case types.T_int32:
		zeros = arithInt(op, MustFixedCol[int32](l), MustFixedCol[int32](r), buffer.MustSlice[int32](out), nsp)
	case types.T_int64:
		zeros = arithInt(op, MustFixedCol[int64](l), MustFixedCol[int64](r), buffer.MustSlice[int64](out), nsp)
	case types.T_uint8:
		zeros = arithInt(op, MustFixedCol[uint8](l), MustFixedCol[uint8](r), buffer.MustSlice[uint8](out), nsp)
	case types.T_uint16:
		zeros = arithInt(op, MustFixedCol[uint16](l), MustFixedCol[uint16](r), buffer.MustSlice[uint16](out), nsp)
	case types.T_uint32:
		zeros = arithInt(op, MustFixedCol[uint32](l), MustFixedCol[uint32](r), buffer.MustSlice[uint32](out), nsp)
	case types.T_uint64:
		zeros = arithInt(op, MustFixedCol[uint64](l), MustFixedCol[uint64](r), buffer.MustSlice[uint64](out), nsp)
	case types.T_float32:
		arithFloat(op, MustFixedCol[float32](l), MustFixedCol[float32](r), buffer.MustSlice[float32](out), nsp)
	case types.T_float64:
		arithFloat(op, MustFixedCol[float64](l), MustFixedCol[float64](r), buffer.MustSlice[float64](out), nsp)
	}
	if len(zeros) > 0 {
		if nsp == nil {
			nsp = nulls.NewWithSize(v.length)
		}
		for _, i := range zeros {
			_ = nsp.SetValid(i, false)
		}
	}
	return v.derive(FLAT, out, nsp), nil
}

// promoteTo returns v itself as a view when it already has type t.
func (v *Vector) promoteTo(t types.T, mp *mpool.MPool) (*Vector, error) {
	if v.typ.Oid == t {
		return v.AsNumerical(), nil
	}
	return flatAstype(v, t, mp)
}

// arithInt returns the rows divided by zero, they become null.
func arithInt[T integer](op Op, a, b, c []T, nsp *nulls.Nulls) []int {
	var zeros []int
	for i := range c {
		if nulls.Contains(nsp, uint64(i)) {
			continue
		}
		switch op {
		case OpAdd:
			c[i] = a[i] + b[i]
		case OpSub:
			c[i] = a[i] - b[i]
		case OpMul:
			c[i] = a[i] * b[i]
		case OpDiv:
			if b[i] == 0 {
				zeros = append(zeros, i)
				continue
			}
			c[i] = a[i] / b[i]
		case OpMod:
			if b[i] == 0 {
				zeros = append(zeros, i)
				continue
			}
			c[i] = a[i] % b[i]
		}
	}
	return zeros
}

func arithFloat[T types.Floats](op Op, a, b, c []T, nsp *nulls.Nulls) {
	for i := range c {
		if nulls.Contains(nsp, uint64(i)) {
			continue
		}
		switch op {
		case OpAdd:
			c[i] = a[i] + b[i]
		case OpSub:
			c[i] = a[i] - b[i]
		case OpMul:
			c[i] = a[i] * b[i]
		case OpDiv:
			c[i] = a[i] / b[i]
		case OpMod:
			c[i] = T(math.Mod(float64(a[i]), float64(b[i])))
		}
	}
}

func flatUnary(v *Vector, op Op, mp *mpool.MPool) (*Vector, error) {
	oid := v.typ.Oid
	if (op == OpNot) != (oid == types.T_bool) {
		return nil, moerr.NewUnsupportedOperationNoCtx("Column of "+oid.String(), op.String())
	}
	out, err := buffer.Allocate(oid, v.length, mp)
	if err != nil {
		return nil, err
	}
	switch oid {
	case types.T_bool:
		vs, ws := MustFixedCol[bool](v), buffer.MustSlice[bool](out)
		for i, x := range vs {
			ws[i] = !x
		}
	case types.T_int8:
		unaryNumber(op, MustFixedCol[int8](v), buffer.MustSlice[int8](out))
	case types.T_int16:
		unaryNumber(op, MustFixedCol[int16](v), buffer.MustSlice[int16](out))
	case types.T_int32:
		unaryNumber(op, MustFixedCol[int32](v), buffer.MustSlice[int32](out))
	case types.T_int64:
		unaryNumber(op, MustFixedCol[int64](v), buffer.MustSlice[int64](out))
	case types.T_uint8:
		unaryNumber(op, MustFixedCol[uint8](v), buffer.MustSlice[uint8](out))
	case types.T_uint16:
		unaryNumber(op, MustFixedCol[uint16](v), buffer.MustSlice[uint16](out))
	case types.T_uint32:
		unaryNumber(op, MustFixedCol[uint32](v), buffer.MustSlice[uint32](out))
	case types.T_uint64:
		unaryNumber(op, MustFixedCol[uint64](v), buffer.MustSlice[uint64](out))
	case types.T_float32:
		unaryNumber(op, MustFixedCol[float32](v), buffer.MustSlice[float32](out))
	case types.T_float64:
		unaryNumber(op, MustFixedCol[float64](v), buffer.MustSlice[float64](out))
	}
	return v.derive(FLAT, out, v.nsp.Clone()), nil
}

// unaryNumber wraps around on unsigned negation.
func unaryNumber[T types.Number](op Op, a, c []T) {
	for i, x := range a {
		switch op {
		case OpNeg:
			c[i] = -x
		case OpAbs:
			if x < 0 {
				x = -x
			}
			c[i] = x
		}
	}
}

func flatCompare(v *Vector, op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error) {
	out, err := buffer.Allocate(types.T_bool, v.length, mp)
	if err != nil {
		return nil, err
	}
	res := buffer.MustSlice[bool](out)
	switch v.typ.Oid {
	case types.T_bool:
		compareKernel(op, MustFixedCol[bool](v), MustFixedCol[bool](rhs), res, func(x, y bool) bool { return !x && y })
	case types.T_int8:
		compareKernel(op, MustFixedCol[int8](v), MustFixedCol[int8](rhs), res, less[int8])
	case types.T_int16:
		compareKernel(op, MustFixedCol[int16](v), MustFixedCol[int16](rhs), res, less[int16])
	case types.T_int32:
		compareKernel(op, MustFixedCol[int32](v), MustFixedCol[int32](rhs), res, less[int32])
	case types.T_int64:
		compareKernel(op, MustFixedCol[int64](v), MustFixedCol[int64](rhs), res, less[int64])
	case types.T_uint8:
		compareKernel(op, MustFixedCol[uint8](v), MustFixedCol[uint8](rhs), res, less[uint8])
	case types.T_uint16:
		compareKernel(op, MustFixedCol[uint16](v), MustFixedCol[uint16](rhs), res, less[uint16])
	case types.T_uint32:
		compareKernel(op, MustFixedCol[uint32](v), MustFixedCol[uint32](rhs), res, less[uint32])
	case types.T_uint64:
		compareKernel(op, MustFixedCol[uint64](v), MustFixedCol[uint64](rhs), res, less[uint64])
	case types.T_float32:
		compareKernel(op, MustFixedCol[float32](v), MustFixedCol[float32](rhs), res, less[float32])
	case types.T_float64:
		compareKernel(op, MustFixedCol[float64](v), MustFixedCol[float64](rhs), res, less[float64])
	}
	return v.derive(FLAT, out, nulls.Or(v.nsp, rhs.nsp, v.length)), nil
}

func less[T types.Number](x, y T) bool {
	return x < y
}

// compareKernel keeps IEEE semantics, NaN is unequal to everything.
func compareKernel[T comparable](op Op, a, b []T, res []bool, lt func(x, y T) bool) {
	for i := range res {
		x, y := a[i], b[i]
		switch op {
		case OpEq:
			res[i] = x == y
		case OpNe:
			res[i] = x != y
		case OpLt:
			res[i] = lt(x, y)
		case OpLe:
			res[i] = lt(x, y) || x == y
		case OpGt:
			res[i] = lt(y, x)
		case OpGe:
			res[i] = lt(y, x) || x == y
		}
	}
}

// categoricalCompare compares codes. A row holding the sentinel code on
// either side compares as null.
func categoricalCompare(v *Vector, op Op, rhs *Vector, mp *mpool.MPool) (*Vector, error) {
	res, err := flatCompare(v.AsNumerical(), op, rhs.AsNumerical(), mp)
	if err != nil {
		return nil, err
	}
	ls, rs := v.sentinelRows(), rhs.sentinelRows()
	if len(ls)+len(rs) == 0 {
		return res, nil
	}
	if res.nsp == nil {
		res.nsp = nulls.NewWithSize(res.length)
	}
	for _, rows := range [][]int{ls, rs} {
		for _, i := range rows {
			_ = res.nsp.SetValid(i, false)
		}
	}
	return res, nil
}
