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

	hll "github.com/axiomhq/hyperloglog"
	"github.com/cespare/xxhash/v2"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
)

// Token is a deterministic hash of the content of v. Vectors that hold the
// same rows, nulls, type and categories share a token whatever their
// buffers hold under null rows.
func (v *Vector) Token() (uint64, error) {
	if err := v.alive(); err != nil {
		return 0, err
	}
	h := xxhash.New()
	var hdr bytes.Buffer
	v.writeHeader(&hdr)
	_, _ = h.Write(hdr.Bytes())
	_, _ = h.Write(v.ValidityBitmap())

	sz := v.typ.TypeSize()
	zero := make([]byte, sz)
	raw := v.buf.Bytes()
	for i := 0; i < v.length; i++ {
		if v.IsNull(i) {
			_, _ = h.Write(zero)
			continue
		}
		_, _ = h.Write(raw[i*sz : (i+1)*sz])
	}
	if v.class == CATEGORICAL {
		var cats bytes.Buffer
		encodeCategories(&cats, v.cats)
		_, _ = h.Write(cats.Bytes())
	}
	return h.Sum64(), nil
}

func (v *Vector) writeHeader(buf *bytes.Buffer) {
	buf.WriteByte(uint8(v.class))
	if v.ordered {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.WriteByte(uint8(v.typ.Oid))
	length := int64(v.length)
	buf.Write(types.EncodeInt64(&length))
}

// ApproxDistinct estimates the number of distinct non-null values with a
// HyperLogLog sketch. A categorical counts its codes and skips the sentinel.
func (v *Vector) ApproxDistinct() (uint64, error) {
	if err := v.alive(); err != nil {
		return 0, err
	}
	sk := hll.New()
	sz := v.typ.TypeSize()
	raw := v.buf.Bytes()
	for i := 0; i < v.length; i++ {
		if v.IsNull(i) {
			continue
		}
		if v.class == CATEGORICAL && v.codeAt(i) == types.CodeNull {
			continue
		}
		sk.Insert(raw[i*sz : (i+1)*sz])
	}
	return sk.Estimate(), nil
}
