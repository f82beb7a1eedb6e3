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

package config

import (
	"context"
	"runtime"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
	"github.com/matrixorigin/gdfcore/pkg/logutil"
)

const (
	// default: 64K distinct keys
	defaultPresizeThreshold = 1 << 16
)

// Config is the configuration file of gdfcore.
type Config struct {
	Log logutil.LogConfig `toml:"log"`

	Memory MemoryParameters `toml:"memory"`

	Join JoinParameters `toml:"join"`
}

type MemoryParameters struct {
	// capacity in bytes of the pool backing owned buffers. default: mpool.NoLimit
	Capacity int64 `toml:"capacity"`
}

type JoinParameters struct {
	// build sides with more rows than this are sized from a cardinality
	// estimate before the hash table is filled. A negative value disables
	// presizing. default: 65536
	PresizeThreshold int `toml:"presize-threshold"`

	// worker count of the join runner. default: GOMAXPROCS
	Parallelism int `toml:"parallelism"`
}

// Default returns a configuration with every value set.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaultValues()
	return cfg
}

// Load decodes the toml file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewBadConfig(context.TODO(), "%s: %v", path, err)
	}
	cfg.SetDefaultValues()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaultValues fills the values left unset.
func (cfg *Config) SetDefaultValues() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = zapcore.InfoLevel.String()
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = 512
	}
	if cfg.Join.PresizeThreshold == 0 {
		cfg.Join.PresizeThreshold = defaultPresizeThreshold
	}
	if cfg.Join.Parallelism == 0 {
		cfg.Join.Parallelism = runtime.GOMAXPROCS(0)
	}
}

func (cfg *Config) Validate() error {
	ctx := context.TODO()
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return moerr.NewBadConfig(ctx, "log level %q", cfg.Log.Level)
	}
	if cfg.Log.StacktraceLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.Log.StacktraceLevel)); err != nil {
			return moerr.NewBadConfig(ctx, "stacktrace level %q", cfg.Log.StacktraceLevel)
		}
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return moerr.NewBadConfig(ctx, "log format %q", cfg.Log.Format)
	}
	if cfg.Log.MaxSize < 0 || cfg.Log.MaxDays < 0 || cfg.Log.MaxBackups < 0 {
		return moerr.NewBadConfig(ctx, "negative log rotation value")
	}
	if cfg.Memory.Capacity < 0 {
		return moerr.NewBadConfig(ctx, "memory capacity %d", cfg.Memory.Capacity)
	}
	if cfg.Join.Parallelism < 0 {
		return moerr.NewBadConfig(ctx, "join parallelism %d", cfg.Join.Parallelism)
	}
	return nil
}
