package cqlish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/src-d/cqlish/internal/format"
	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-billy.v4/memfs"
	"gopkg.in/src-d/go-billy.v4/util"
)

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	fs := memfs.New()
	require.NoError(util.WriteFile(fs, "cqlish.yml", []byte(`
prompt: "db> "
null_marker: "<nil>"
format: csv
`), 0644))

	base := DefaultConfig()
	cfg, err := LoadConfig(fs, "cqlish.yml", base)
	require.NoError(err)
	require.Equal("db> ", cfg.Prompt)
	require.Equal("<nil>", cfg.NullMarker)
	require.Equal("csv", cfg.Format)
	require.Equal(base.ContinuationPrompt, cfg.ContinuationPrompt)
	require.Equal(base.Color, cfg.Color)
	require.Equal(base.DataDir, cfg.DataDir)
}

func TestLoadConfigErrors(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "bad-format.yml", []byte("format: xml\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "bad-color.yml", []byte("color: sometimes\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "bad-yaml.yml", []byte("prompt: [\n"), 0644))

	for _, name := range []string{"bad-format.yml", "bad-color.yml", "bad-yaml.yml"} {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			base := DefaultConfig()
			cfg, err := LoadConfig(fs, name, base)
			require.Error(err)
			require.True(ErrInvalidConfig.Is(err))
			require.Equal(base, cfg)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := LoadConfig(fs, "missing.yml", DefaultConfig())
		require.Error(t, err)
		require.True(t, os.IsNotExist(err))
	})
}

func TestDefaultConfigEnv(t *testing.T) {
	require := require.New(t)

	require.NoError(os.Setenv(dataDirKey, "/tmp/cqlish-data"))
	defer os.Unsetenv(dataDirKey)

	cfg := DefaultConfig()
	require.Equal("/tmp/cqlish-data", cfg.DataDir)
	require.Equal("table", cfg.Format)
	require.NoError(cfg.Validate())
}

func TestColorEnabled(t *testing.T) {
	require := require.New(t)

	os.Unsetenv(noColorKey)
	require.True(ColorEnabled(ColorAlways, false))
	require.False(ColorEnabled(ColorNever, true))
	require.True(ColorEnabled(ColorAuto, true))
	require.False(ColorEnabled(ColorAuto, false))

	require.NoError(os.Setenv(noColorKey, "1"))
	defer os.Unsetenv(noColorKey)
	require.False(ColorEnabled(ColorAuto, true))
	require.True(ColorEnabled(ColorAlways, true))
}

func TestConfigStyle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NullMarker = "-"
	require.Equal(t, format.Style{NullMarker: "-", Color: true}, cfg.Style(true))
}

func TestExpandHome(t *testing.T) {
	require := require.New(t)

	home, err := os.UserHomeDir()
	require.NoError(err)

	require.Equal(filepath.Join(home, ".cqlish"), ExpandHome("~/.cqlish"))
	require.Equal(home, ExpandHome("~"))
	require.Equal("/abs/path", ExpandHome("/abs/path"))
	require.Equal("~user/x", ExpandHome("~user/x"))
}
