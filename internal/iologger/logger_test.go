package iologger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gnocc/pkg/config"
	"github.com/gnames/gnocc/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	tests := []struct {
		format, level string
		logged        bool
		contains      string
	}{
		{"json", "info", true, `"msg":"location reused"`},
		{"text", "info", true, `msg="location reused"`},
		{"tint", "info", true, "location reused"},
		{"unknown", "info", true, `"msg":"location reused"`},
		{"json", "warn", false, ""},
		{"json", "ERROR", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.format+"-"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewHandler(&buf, config.LogConfig{Format: tt.format, Level: tt.level})
			slog.New(h).Info("location reused", "distance", 2.0)
			if !tt.logged {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.contains)
			assert.NotContains(t, buf.String(), "\x1b[", "no colors outside terminals")
		})
	}
}

func TestInitFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	path := filepath.Join(dir, LogFile)

	require.NoError(t, Init(dir, cfg, false))
	slog.Info("first")
	require.NoError(t, Init(dir, cfg, true))
	slog.Info("second")

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(bs), "first")
	assert.Contains(t, string(bs), "second")

	require.NoError(t, Init(dir, cfg, false))
	bs, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(bs), "first", "file is truncated")

	err = Init(filepath.Join(dir, "missing"), cfg, false)
	assert.True(t, errcode.Is(err, errcode.CreateLogFileError))
}
