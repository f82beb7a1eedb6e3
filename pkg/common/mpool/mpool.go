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

// Package mpool is the accounting allocator behind every owned column buffer.
package mpool

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
)

const (
	// NoLimit is the capacity of an unbounded pool.
	NoLimit int64 = 0

	KB = 1 << 10
	MB = 1 << 20
	GB = 1 << 30
)

// MPoolStats, the numbers are updated atomically and can be read at any time.
type MPoolStats struct {
	NumAlloc      atomic.Int64 // number of allocations
	NumFree       atomic.Int64 // number of frees
	NumAllocBytes atomic.Int64 // number of bytes allocated
	NumFreeBytes  atomic.Int64 // number of bytes freed
	NumCurrBytes  atomic.Int64 // current number of bytes
	HighWaterMark atomic.Int64 // high water mark
}

func (s *MPoolStats) RecordAlloc(sz int64) int64 {
	s.NumAlloc.Add(1)
	s.NumAllocBytes.Add(sz)
	curr := s.NumCurrBytes.Add(sz)
	for {
		hwm := s.HighWaterMark.Load()
		if curr <= hwm || s.HighWaterMark.CompareAndSwap(hwm, curr) {
			break
		}
	}
	return curr
}

func (s *MPoolStats) RecordFree(sz int64) int64 {
	s.NumFree.Add(1)
	s.NumFreeBytes.Add(sz)
	return s.NumCurrBytes.Add(-sz)
}

// MPool is a named memory pool with an optional capacity.
type MPool struct {
	id    int64
	tag   string
	cap   int64
	stats MPoolStats
}

var nextPool atomic.Int64
var globalPools sync.Map
var globalStats MPoolStats

// NewMPool creates a pool, capacity NoLimit means unbounded.
func NewMPool(tag string, cap int64) (*MPool, error) {
	if cap < 0 {
		return nil, moerr.NewInvalidInputNoCtx("mpool %s capacity %d", tag, cap)
	}
	mp := &MPool{
		id:  nextPool.Add(1),
		tag: tag,
		cap: cap,
	}
	globalPools.Store(mp.id, mp)
	return mp, nil
}

// MustNewZero returns an unbounded pool, for tests and tools.
func MustNewZero() *MPool {
	mp, err := NewMPool("zero", NoLimit)
	if err != nil {
		panic(err)
	}
	return mp
}

func DeleteMPool(mp *MPool) {
	if mp == nil {
		return
	}
	globalPools.Delete(mp.id)
}

func (mp *MPool) Tag() string {
	return mp.tag
}

func (mp *MPool) Cap() int64 {
	return mp.cap
}

func (mp *MPool) CurrNB() int64 {
	return mp.stats.NumCurrBytes.Load()
}

func (mp *MPool) Stats() *MPoolStats {
	return &mp.stats
}

// Alloc returns a zeroed slice of sz bytes.
func (mp *MPool) Alloc(sz int) ([]byte, error) {
	if sz < 0 {
		return nil, moerr.NewInvalidInputNoCtx("mpool alloc size %d", sz)
	}
	if sz == 0 {
		return nil, nil
	}
	curr := mp.stats.RecordAlloc(int64(sz))
	if mp.cap != NoLimit && curr > mp.cap {
		mp.stats.RecordFree(int64(sz))
		return nil, moerr.NewOOM(moerr.Context())
	}
	globalStats.RecordAlloc(int64(sz))
	return make([]byte, sz), nil
}

// Free returns bs to the pool, bs must come from Alloc of the same pool.
func (mp *MPool) Free(bs []byte) {
	if cap(bs) == 0 {
		return
	}
	mp.stats.RecordFree(int64(cap(bs)))
	globalStats.RecordFree(int64(cap(bs)))
}

type memUsage struct {
	Tag           string `json:"tag"`
	NumCurrBytes  int64  `json:"numCurrBytes"`
	HighWaterMark int64  `json:"highWaterMark"`
	NumAlloc      int64  `json:"numAlloc"`
	NumFree       int64  `json:"numFree"`
}

func usageOf(tag string, s *MPoolStats) memUsage {
	return memUsage{
		Tag:           tag,
		NumCurrBytes:  s.NumCurrBytes.Load(),
		HighWaterMark: s.HighWaterMark.Load(),
		NumAlloc:      s.NumAlloc.Load(),
		NumFree:       s.NumFree.Load(),
	}
}

// ReportMemUsage returns a json report. An empty tag reports every pool,
// "global" reports the process wide counters.
func ReportMemUsage(tag string) string {
	var usages []memUsage
	if tag == "" || tag == "global" {
		usages = append(usages, usageOf("global", &globalStats))
	}
	if tag != "global" {
		globalPools.Range(func(_, v any) bool {
			mp := v.(*MPool)
			if tag == "" || tag == mp.tag {
				usages = append(usages, usageOf(mp.tag, &mp.stats))
			}
			return true
		})
	}
	data, err := json.Marshal(usages)
	if err != nil {
		return "[]"
	}
	return string(data)
}
