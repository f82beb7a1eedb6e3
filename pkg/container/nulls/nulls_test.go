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

package nulls

import (
	"testing"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/smartystreets/goconvey/convey"
)

func TestSetValid(t *testing.T) {
	convey.Convey("null count follows valid/null transitions", t, func() {
		nsp := NewWithSize(10)
		convey.So(nsp.Len(), convey.ShouldEqual, 10)
		convey.So(nsp.NullCount(), convey.ShouldEqual, 0)

		convey.So(nsp.SetValid(3, false), convey.ShouldBeNil)
		convey.So(nsp.SetValid(3, false), convey.ShouldBeNil)
		convey.So(nsp.NullCount(), convey.ShouldEqual, 1)

		convey.So(nsp.SetValid(7, false), convey.ShouldBeNil)
		convey.So(nsp.SetValid(3, true), convey.ShouldBeNil)
		convey.So(nsp.SetValid(3, true), convey.ShouldBeNil)
		convey.So(nsp.NullCount(), convey.ShouldEqual, 1)

		ok, err := nsp.IsValid(3)
		convey.So(err, convey.ShouldBeNil)
		convey.So(ok, convey.ShouldBeTrue)
		ok, err = nsp.IsValid(7)
		convey.So(err, convey.ShouldBeNil)
		convey.So(ok, convey.ShouldBeFalse)
	})

	convey.Convey("index outside the mask", t, func() {
		nsp := NewWithSize(4)
		for _, i := range []int{-1, 4, 40} {
			err := nsp.SetValid(i, false)
			convey.So(moerr.IsMoErrCode(err, moerr.ErrOutOfRange), convey.ShouldBeTrue)
			_, err = nsp.IsValid(i)
			convey.So(moerr.IsMoErrCode(err, moerr.ErrOutOfRange), convey.ShouldBeTrue)
		}
		convey.So(nsp.NullCount(), convey.ShouldEqual, 0)
	})
}

func TestExport(t *testing.T) {
	convey.Convey("validity and bitmap use 1 = valid", t, func() {
		valid := []bool{true, false, true, true, false, true, true, true, true, false}
		nsp := FromValidity(valid)
		convey.So(nsp.NullCount(), convey.ShouldEqual, 3)
		convey.So(nsp.Validity(), convey.ShouldResemble, valid)
		convey.So(nsp.Rows(), convey.ShouldResemble, []uint64{1, 4, 9})

		bits := nsp.Bitmap()
		convey.So(bits, convey.ShouldResemble, []byte{0xed, 0x01})

		back, err := FromBitmap(bits, len(valid))
		convey.So(err, convey.ShouldBeNil)
		convey.So(back.Validity(), convey.ShouldResemble, valid)
		convey.So(back.NullCount(), convey.ShouldEqual, 3)

		_, err = FromBitmap(bits, 17)
		convey.So(moerr.IsMoErrCode(err, moerr.ErrInvalidInput), convey.ShouldBeTrue)
	})

	convey.Convey("build ignores rows beyond the size", t, func() {
		nsp := Build(4, 0, 0, 2, 9)
		convey.So(nsp.NullCount(), convey.ShouldEqual, 2)
		convey.So(nsp.String(), convey.ShouldEqual, "[0 2]")
	})
}

func TestOrFilterClone(t *testing.T) {
	convey.Convey("or, filter and clone", t, func() {
		a := Build(6, 1, 2)
		b := Build(6, 2, 5)
		r := Or(a, b, 6)
		convey.So(r.Rows(), convey.ShouldResemble, []uint64{1, 2, 5})
		convey.So(r.NullCount(), convey.ShouldEqual, 3)
		convey.So(Or(nil, NewWithSize(6), 6), convey.ShouldBeNil)
		convey.So(Or(nil, b, 6).NullCount(), convey.ShouldEqual, 2)

		f := r.Filter([]int64{5, 0, 1})
		convey.So(f.Len(), convey.ShouldEqual, 3)
		convey.So(f.Rows(), convey.ShouldResemble, []uint64{0, 2})

		c := a.Clone()
		convey.So(c.SetValid(1, true), convey.ShouldBeNil)
		convey.So(a.NullCount(), convey.ShouldEqual, 2)
		convey.So(c.NullCount(), convey.ShouldEqual, 1)

		convey.So(Any(nil), convey.ShouldBeFalse)
		convey.So(Contains(nil, 0), convey.ShouldBeFalse)
		convey.So(Contains(a, 2), convey.ShouldBeTrue)
	})
}

func TestShowRead(t *testing.T) {
	convey.Convey("serialized mask reads back", t, func() {
		nsp := Build(100, 3, 50, 99)
		data, err := nsp.Show()
		convey.So(err, convey.ShouldBeNil)

		var back Nulls
		convey.So(back.Read(data), convey.ShouldBeNil)
		convey.So(back.Len(), convey.ShouldEqual, 100)
		convey.So(back.NullCount(), convey.ShouldEqual, 3)
		convey.So(back.Rows(), convey.ShouldResemble, []uint64{3, 50, 99})

		convey.So(moerr.IsMoErrCode(back.Read(data[:4]), moerr.ErrInvalidInput), convey.ShouldBeTrue)
	})
}
