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
	"os"
	"path"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/gdfcore/pkg/common/moerr"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, int64(0), cfg.Memory.Capacity)
	require.Equal(t, 1<<16, cfg.Join.PresizeThreshold)
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Join.Parallelism)
}

func TestLoad(t *testing.T) {
	name := path.Join(t.TempDir(), "gdf.toml")
	require.NoError(t, os.WriteFile(name, []byte(`
[log]
level = "debug"
format = "json"

[memory]
capacity = 1048576

[join]
presize-threshold = -1
parallelism = 3
`), 0o644))

	cfg, err := Load(name)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 512, cfg.Log.MaxSize)
	require.Equal(t, int64(1<<20), cfg.Memory.Capacity)
	require.Equal(t, -1, cfg.Join.PresizeThreshold)
	require.Equal(t, 3, cfg.Join.Parallelism)
}

func TestLoadBadConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[log\nlevel = 1"},
		{"level", "[log]\nlevel = \"loud\""},
		{"format", "[log]\nformat = \"xml\""},
		{"capacity", "[memory]\ncapacity = -5"},
		{"parallelism", "[join]\nparallelism = -2"},
		{"rotation", "[log]\nmax-days = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := path.Join(dir, tt.name+".toml")
			require.NoError(t, os.WriteFile(name, []byte(tt.body), 0o644))
			_, err := Load(name)
			require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig), "%v", err)
		})
	}

	_, err := Load(path.Join(dir, "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}
