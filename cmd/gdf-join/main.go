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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/common/mpool"
	"github.com/matrixorigin/gdfcore/pkg/config"
	"github.com/matrixorigin/gdfcore/pkg/container/vector"
	"github.com/matrixorigin/gdfcore/pkg/logutil"
	"github.com/matrixorigin/gdfcore/pkg/sql/colexec/join"
)

var (
	configFile  = flag.String("cfg", "", "toml configuration, defaults are used when empty")
	categorical = flag.Bool("categorical", false, "join the keys as categoricals of strings")
)

const poolTag = "gdf-join"

const usage = `usage: %s [-cfg file] [-categorical] left:right ...
each argument is one join of two comma separated key lists, "null" is a null key.
example: %s 0,0,1,2,3:0,1,2,2,3
`

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage, os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config from %s, error: %v\n", *configFile, err)
			os.Exit(1)
		}
	}
	logutil.SetupLogger(&cfg.Log)

	if err := run(context.Background(), cfg, flag.Args(), *categorical, os.Stdout); err != nil {
		logutil.Error("gdf-join failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, asCategorical bool, out io.Writer) error {
	mp, err := mpool.NewMPool(poolTag, cfg.Memory.Capacity)
	if err != nil {
		return err
	}
	defer mpool.DeleteMPool(mp)

	tasks := make([]join.Task, 0, len(args))
	defer func() {
		for _, task := range tasks {
			task.Left.Free()
			task.Right.Free()
		}
	}()
	for _, arg := range args {
		task, err := parseTask(arg, asCategorical, mp)
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	engine := join.NewEngine(cfg.Join, logutil.GetGlobalLogger())
	runner, err := join.NewRunner(engine, cfg.Join.Parallelism)
	if err != nil {
		return err
	}
	defer runner.Close()

	logutil.Info("joining", zap.Int("tasks", len(tasks)), zap.Int("parallelism", cfg.Join.Parallelism))
	for i, res := range runner.Run(ctx, tasks) {
		if res.Err != nil {
			return moerr.NewInvalidInput(ctx, "join %q: %v", args[i], res.Err)
		}
		fmt.Fprintf(out, "# %s\n", args[i])
		for _, p := range res.Pairs {
			fmt.Fprintf(out, "%d %d\n", p.Left, p.Right)
		}
	}
	logutil.Debug("memory usage", zap.String("mpool", mpool.ReportMemUsage(poolTag)))
	return nil
}

// parseTask reads "l0,l1,...:r0,r1,...".
func parseTask(arg string, asCategorical bool, mp *mpool.MPool) (join.Task, error) {
	l, r, ok := strings.Cut(arg, ":")
	if !ok {
		return join.Task{}, moerr.NewInvalidInputNoCtx("%q is not left:right", arg)
	}
	lkeys, rkeys := splitKeys(l), splitKeys(r)
	if asCategorical {
		return categoricalTask(lkeys, rkeys, mp)
	}
	left, err := int64Keys(lkeys, mp)
	if err != nil {
		return join.Task{}, err
	}
	right, err := int64Keys(rkeys, mp)
	if err != nil {
		left.Free()
		return join.Task{}, err
	}
	return join.Task{Left: left, Right: right}, nil
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	keys := strings.Split(s, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

func int64Keys(keys []string, mp *mpool.MPool) (*vector.Vector, error) {
	vals := make([]int64, len(keys))
	valid := make([]bool, len(keys))
	for i, k := range keys {
		if k == "null" {
			continue
		}
		v, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, moerr.NewInvalidInputNoCtx("key %q", k)
		}
		vals[i], valid[i] = v, true
	}
	return vector.NewFromSlice(vals, valid, vector.UnknownNullCount, mp)
}

// categoricalTask encodes both sides together so they share one category
// table, then splits the rows.
func categoricalTask(lkeys, rkeys []string, mp *mpool.MPool) (join.Task, error) {
	values := make([]any, 0, len(lkeys)+len(rkeys))
	for _, k := range append(append([]string{}, lkeys...), rkeys...) {
		if k == "null" {
			values = append(values, nil)
			continue
		}
		values = append(values, k)
	}
	all, err := vector.NewCategorical(values, false, mp)
	if err != nil {
		return join.Task{}, err
	}
	defer all.Free()

	sels := make([]int64, len(values))
	for i := range sels {
		sels[i] = int64(i)
	}
	left, err := all.Shuffle(sels[:len(lkeys)], mp)
	if err != nil {
		return join.Task{}, err
	}
	right, err := all.Shuffle(sels[len(lkeys):], mp)
	if err != nil {
		left.Free()
		return join.Task{}, err
	}
	return join.Task{Left: left, Right: right}, nil
}
