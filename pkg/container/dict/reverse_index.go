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

package dict

// linearScanLimit is the table size up to which lookups scan the values.
// Larger tables switch to a hash index.
var linearScanLimit = 16

// reverseIndex maps a normalized category value to its code.
type reverseIndex interface {
	insert(v any, code int64)
	find(v any) int64
}

type scanReverseIndex struct {
	values *[]any
}

func (idx *scanReverseIndex) insert(any, int64) {}

func (idx *scanReverseIndex) find(v any) int64 {
	for i, x := range *idx.values {
		if x == v {
			return int64(i)
		}
	}
	return -1
}

type hashReverseIndex struct {
	ht map[any]int64
}

func newHashReverseIndex(values []any) *hashReverseIndex {
	idx := &hashReverseIndex{
		ht: make(map[any]int64, len(values)),
	}
	for i, v := range values {
		idx.ht[v] = int64(i)
	}
	return idx
}

func (idx *hashReverseIndex) insert(v any, code int64) {
	idx.ht[v] = code
}

func (idx *hashReverseIndex) find(v any) int64 {
	if code, ok := idx.ht[v]; ok {
		return code
	}
	return -1
}
