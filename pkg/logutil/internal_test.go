// Copyright 2022 Matrix Origin
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

package logutil

import (
	"os"
	"path"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetupLoggerRejects(t *testing.T) {
	defer leaktest.AfterTest(t)()
	old := getGlobalLogConfig()
	cases := []struct {
		conf LogConfig
		want string
	}{
		{LogConfig{Level: "debug", Format: "xml"}, "unsupported log format: xml"},
		{LogConfig{Level: "loud", Format: "json"}, "unsupported log level: loud"},
		{LogConfig{Level: "info", Format: "console", StacktraceLevel: "often"}, "unsupported stacktrace level: often"},
	}
	for _, c := range cases {
		require.PanicsWithError(t, "internal error: "+c.want, func() { SetupLogger(&c.conf) }, c.want)
	}
	require.PanicsWithValue(t, "log file can't be a directory", func() {
		SetupLogger(&LogConfig{Level: "info", Format: "json", Filename: t.TempDir()})
	})
	// a rejected config leaves the previous logger in place
	require.Equal(t, old, getGlobalLogConfig())
}

func TestStacktraceLevel(t *testing.T) {
	for _, c := range []struct {
		level     string
		warnStack bool
		errStack  bool
	}{
		{"", false, false},
		{"error", false, true},
		{"warn", true, true},
	} {
		cfg := &LogConfig{Level: "debug", Format: "console", StacktraceLevel: c.level}
		core, logs := observer.New(cfg.getLevel())
		logger := zap.New(core, cfg.getOptions()...)
		logger.Warn("w")
		logger.Error("e")

		entries := logs.AllUntimed()
		require.Len(t, entries, 2)
		require.Equal(t, c.warnStack, entries[0].Stack != "", "level %q", c.level)
		require.Equal(t, c.errStack, entries[1].Stack != "", "level %q", c.level)
		require.NotEmpty(t, entries[1].Caller.File)
	}
}

func TestLoggerEncoder(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.WarnLevel, Message: "rows"}
	fields := []zap.Field{zap.Int("n", 2)}

	buf, err := getLoggerEncoder("console").EncodeEntry(entry, fields)
	require.NoError(t, err)
	require.Regexp(t, `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{6} [+-]\d{4}\tWARN\trows\t\{"n": 2\}`, buf.String())

	// json is the default
	for _, format := range []string{"json", ""} {
		buf, err = getLoggerEncoder(format).EncodeEntry(entry, fields)
		require.NoError(t, err)
		require.Regexp(t, `^\{"level":"WARN","time":".*","msg":"rows","n":2\}`, buf.String())
	}
}

func TestSetupLogger_file(t *testing.T) {
	old := getGlobalLogConfig()
	defer SetupLogger(&old)

	name := path.Join(t.TempDir(), "gdf.log")
	SetupLogger(&LogConfig{
		Level:  zapcore.InfoLevel.String(),
		Format: "json",
		// lumberjack keeps a rotation goroutine, so no leak check here
		Filename: name,
	})
	Debug("dropped")
	Info("kept", zap.Int("rows", 3))
	Warnf("pairs %d", 6)
	require.NoError(t, GetGlobalLogger().Sync())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	require.NotContains(t, string(data), "dropped")
	require.Regexp(t, `"msg":"kept".*"rows":3`, string(data))
	require.Regexp(t, `"level":"WARN".*"msg":"pairs 6"`, string(data))
	require.Equal(t, 512, getGlobalLogConfig().MaxSize)
}
