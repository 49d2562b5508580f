package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigTrace(t *testing.T) {
	t.Cleanup(func() {
		configFile, trace = "", false
		setupLogger(false)
	})

	tests := []struct {
		name      string
		file      string
		flag      bool
		wantDebug bool
	}{
		{"trace in file", "trace = true\n", false, true},
		{"trace flag", "", true, true},
		{"no trace", "workers = 2\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(false)
			configFile, trace = "", tt.flag
			if tt.file != "" {
				configFile = filepath.Join(t.TempDir(), "html2doc.toml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.file), 0o644))
			}

			cfg := readConfig()
			assert.Equal(t, tt.wantDebug, cfg.Trace)
			assert.Equal(t, tt.wantDebug, slog.Default().Enabled(context.Background(), slog.LevelDebug))
		})
	}
}
