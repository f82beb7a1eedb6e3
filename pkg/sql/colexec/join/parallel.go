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
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/container/vector"
)

// idle workers of the runner exit after this long
const workerExpiry = 100 * time.Millisecond

// Task is one independent pair of key columns.
type Task struct {
	Left  *vector.Vector
	Right *vector.Vector
}

type Result struct {
	Pairs []Pair
	Err   error
}

// Runner joins independent column pairs on a goroutine pool. The columns of
// one task must not be freed while Run is in progress.
type Runner struct {
	engine *Engine
	pool   *ants.Pool
}

func NewRunner(engine *Engine, parallelism int) (*Runner, error) {
	if parallelism <= 0 {
		return nil, moerr.NewInvalidArg(moerr.Context(), "join parallelism", parallelism)
	}
	pool, err := ants.NewPool(parallelism, ants.WithExpiryDuration(workerExpiry))
	if err != nil {
		return nil, moerr.ConvertGoError(moerr.Context(), err)
	}
	return &Runner{engine: engine, pool: pool}, nil
}

// Run returns one result per task, in task order. The context is checked
// before each join starts, a join that has started runs to completion.
func (r *Runner) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	var wg sync.WaitGroup
	for i := range tasks {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					results[i].Err = moerr.ConvertPanicError(ctx, v)
					r.engine.getLogger().Error("join task panic",
						zap.Int("task", i),
						zap.Error(results[i].Err))
				}
			}()
			results[i].Pairs, results[i].Err = r.engine.InnerJoin(ctx, tasks[i].Left, tasks[i].Right)
		})
		if err != nil {
			wg.Done()
			results[i].Err = moerr.ConvertGoError(ctx, err)
		}
	}
	wg.Wait()
	r.engine.getLogger().Debug("join runner done",
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", r.pool.Cap()))
	return results
}

// Close releases the pool, Run must not be called afterwards.
func (r *Runner) Close() {
	r.pool.Release()
}
