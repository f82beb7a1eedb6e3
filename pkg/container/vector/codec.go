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

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/container/buffer"
	"github.com/matrixorigin/gdfcore/pkg/container/dict"
	"github.com/matrixorigin/gdfcore/pkg/container/nulls"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
	"github.com/pierrec/lz4"
)

const (
	dataRaw uint8 = iota
	dataLZ4
)

// MarshalBinary layout:
//
//	class | ordered | oid | length int64
//	nspLen uint32 | nsp
//	flag | rawLen uint32 | dataLen uint32 | data
//	kind | count uint32 | categories
func (v *Vector) MarshalBinary() ([]byte, error) {
	if err := v.alive(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer

	v.writeHeader(&buf)
	{ // write nspLen, nsp
		var data []byte
		if v.HasNulls() {
			var err error
			if data, err = v.nsp.Show(); err != nil {
				return nil, err
			}
		}
		writeBytes(&buf, data)
	}
	{ // write flag, rawLen, data
		raw := v.buf.Bytes()
		comp := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, comp, make([]int, 64<<10))
		if err != nil {
			return nil, moerr.ConvertGoError(moerr.Context(), err)
		}
		rawLen := uint32(len(raw))
		if n > 0 && n < len(raw) {
			buf.WriteByte(dataLZ4)
			buf.Write(types.EncodeUint32(&rawLen))
			writeBytes(&buf, comp[:n])
		} else {
			buf.WriteByte(dataRaw)
			buf.Write(types.EncodeUint32(&rawLen))
			writeBytes(&buf, raw)
		}
	}
	encodeCategories(&buf, v.cats)
	return buf.Bytes(), nil
}

// UnmarshalBinary reads v from data into memory outside any pool.
func (v *Vector) UnmarshalBinary(data []byte) error {
	return v.UnmarshalBinaryWithMpool(data, nil)
}

// UnmarshalBinaryWithMpool reads v from data, the buffer is owned by mp.
func (v *Vector) UnmarshalBinaryWithMpool(data []byte, mp *mpool.MPool) error {
	r := &reader{data: data}
	hdr, err := r.take(3)
	if err != nil {
		return err
	}
	class, ordered, oid := int(hdr[0]), hdr[1] == 1, types.T(hdr[2])
	if class != FLAT && class != CATEGORICAL || !oid.IsFixedLen() {
		return moerr.NewInvalidInputNoCtx("vector of class %d and type %s", class, oid)
	}
	length64, err := r.int64()
	if err != nil {
		return err
	}
	length := int(length64)
	if length < 0 {
		return moerr.NewInvalidInputNoCtx("vector length %d", length)
	}

	var nsp *nulls.Nulls
	{ // read nsp
		bs, err := r.bytes()
		if err != nil {
			return err
		}
		if len(bs) > 0 {
			nsp = &nulls.Nulls{}
			if err := nsp.Read(bs); err != nil {
				return err
			}
			if nsp.Len() != length {
				return moerr.NewInvalidInputNoCtx("null mask of %d rows, vector of %d", nsp.Len(), length)
			}
		}
	}

	var raw []byte
	{ // read data
		flag, err := r.take(1)
		if err != nil {
			return err
		}
		rawLen, err := r.uint32()
		if err != nil {
			return err
		}
		// bound length by rawLen before multiplying
		size := uint64(oid.TypeLen())
		if uint64(length) > uint64(rawLen)/size || uint64(length)*size != uint64(rawLen) {
			return moerr.NewInvalidInputNoCtx("%d data bytes for %d %s", rawLen, length, oid)
		}
		bs, err := r.bytes()
		if err != nil {
			return err
		}
		switch flag[0] {
		case dataRaw:
			raw = append([]byte(nil), bs...)
		case dataLZ4:
			raw = make([]byte, rawLen)
			n, err := lz4.UncompressBlock(bs, raw)
			if err != nil {
				return moerr.ConvertGoError(moerr.Context(), err)
			}
			if n != int(rawLen) {
				return moerr.NewInvalidInputNoCtx("lz4 block of %d bytes, want %d", n, rawLen)
			}
		default:
			return moerr.NewInvalidInputNoCtx("data flag %d", flag[0])
		}
		if len(raw) != int(rawLen) {
			return moerr.NewInvalidInputNoCtx("%d data bytes, want %d", len(raw), rawLen)
		}
	}

	cats, err := decodeCategories(r)
	if err != nil {
		return err
	}
	if class == CATEGORICAL && cats == nil {
		// a categorical of null rows only has an empty table
		if cats, err = dict.New(nil); err != nil {
			return err
		}
	}

	var buf *buffer.Buffer
	if mp == nil {
		if buf, err = buffer.WrapBytes(oid, raw, length); err != nil {
			return err
		}
	} else {
		if buf, err = buffer.Allocate(oid, length, mp); err != nil {
			return err
		}
		copy(buf.Bytes(), raw)
	}

	w := &Vector{
		class: class,
		conv:  DefaultTypeConverter,
		bcast: DefaultBroadcaster,
	}
	w.setBuffer(buf, nsp)
	if class == CATEGORICAL {
		w.cats, w.ordered = cats, ordered
		if err := w.checkCodes(); err != nil {
			buf.Free()
			return err
		}
	}
	*v = *w
	return nil
}

func (v *Vector) checkCodes() error {
	if !v.typ.Oid.IsCodeType() {
		return moerr.NewInvalidInputNoCtx("categorical codes of type %s", v.typ)
	}
	n := int64(v.cats.Len())
	for i := 0; i < v.length; i++ {
		if v.IsNull(i) {
			continue
		}
		if c := v.codeAt(i); c < types.CodeNull || c >= n {
			return moerr.NewInvalidInputNoCtx("code %d at row %d, %d categories", c, i, n)
		}
	}
	return nil
}

func writeBytes(buf *bytes.Buffer, data []byte) {
	n := uint32(len(data))
	buf.Write(types.EncodeUint32(&n))
	buf.Write(data)
}

// encodeCategories writes KindNone alone for a nil or empty table.
func encodeCategories(buf *bytes.Buffer, d *dict.Dict) {
	if d == nil || d.Kind() == dict.KindNone {
		buf.WriteByte(uint8(dict.KindNone))
		return
	}
	buf.WriteByte(uint8(d.Kind()))
	n := uint32(d.Len())
	buf.Write(types.EncodeUint32(&n))
	for _, c := range d.Values() {
		switch x := c.(type) {
		case int64:
			buf.Write(types.EncodeInt64(&x))
		case uint64:
			buf.Write(types.EncodeUint64(&x))
		case float64:
			buf.Write(types.EncodeFloat64(&x))
		case bool:
			buf.Write(types.EncodeFixed(x))
		case string:
			writeBytes(buf, []byte(x))
		}
	}
}

func decodeCategories(r *reader) (*dict.Dict, error) {
	kb, err := r.take(1)
	if err != nil {
		return nil, err
	}
	kind := dict.Kind(kb[0])
	if kind == dict.KindNone {
		return nil, nil
	}
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, n)
	for i := uint32(0); i < n; i++ {
		switch kind {
		case dict.KindInt:
			bs, err := r.take(8)
			if err != nil {
				return nil, err
			}
			values = append(values, types.DecodeInt64(bs))
		case dict.KindUint:
			bs, err := r.take(8)
			if err != nil {
				return nil, err
			}
			values = append(values, types.DecodeUint64(bs))
		case dict.KindFloat:
			bs, err := r.take(8)
			if err != nil {
				return nil, err
			}
			values = append(values, types.DecodeFloat64(bs))
		case dict.KindBool:
			bs, err := r.take(1)
			if err != nil {
				return nil, err
			}
			values = append(values, bs[0] == 1)
		case dict.KindString:
			bs, err := r.bytes()
			if err != nil {
				return nil, err
			}
			values = append(values, string(bs))
		default:
			return nil, moerr.NewInvalidInputNoCtx("category kind %d", kind)
		}
	}
	return dict.New(values)
}

type reader struct {
	data []byte
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.data) < n {
		return nil, moerr.NewInvalidInputNoCtx("unexpected end of data")
	}
	bs := r.data[:n]
	r.data = r.data[n:]
	return bs, nil
}

func (r *reader) int64() (int64, error) {
	bs, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return types.DecodeInt64(bs), nil
}

func (r *reader) uint32() (uint32, error) {
	bs, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return types.DecodeUint32(bs), nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}
