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
	"go.uber.org/zap"

	"github.com/matrixorigin/gdfcore/pkg/config"
	"github.com/matrixorigin/gdfcore/pkg/container/types"
	"github.com/matrixorigin/gdfcore/pkg/logutil"
)

// Pair is one matching row: Left indexes the left key column and Right the
// right one.
type Pair struct {
	Left  int64
	Right int64
}

// Engine runs single-key inner joins.
type Engine struct {
	// build sides longer than this are presized from an estimate of
	// their distinct keys, a negative value never presizes
	presizeThreshold int
	// nil logs to the global logger
	logger *zap.Logger
}

func NewEngine(cfg config.JoinParameters, logger *zap.Logger) *Engine {
	e := &Engine{presizeThreshold: cfg.PresizeThreshold}
	if logger != nil {
		e.logger = logger.Named("join")
	}
	return e
}

func (e *Engine) getLogger() *zap.Logger {
	if e.logger == nil {
		return logutil.GetGlobalLogger().Named("join")
	}
	return e.logger
}

// hash table of the build side. first maps a key to its first row + 1 and
// next chains the rows sharing a key, 0 ends a chain. Rows of one chain
// ascend.
type container[T types.FixedSizeT] struct {
	first map[T]int64
	next  []int64
}
