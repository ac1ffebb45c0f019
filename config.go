package cqlish

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/src-d/cqlish/internal/format"
	billy "gopkg.in/src-d/go-billy.v4"
	yaml "gopkg.in/yaml.v2"
)

const (
	dataDirKey     = "CQLISH_DATA_DIR"
	historyFileKey = "CQLISH_HISTORY_FILE"
	noColorKey     = "NO_COLOR"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the static configuration of a shell.
type Config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	NullMarker         string `yaml:"null_marker"`
	Format             string `yaml:"format"`
	Color              string `yaml:"color"`
	HistoryFile        string `yaml:"history_file"`
	DataDir            string `yaml:"data_dir"`
}

// DefaultConfig returns the configuration used when no file is given. Data
// directory and history file can be overridden with CQLISH_DATA_DIR and
// CQLISH_HISTORY_FILE.
func DefaultConfig() Config {
	return Config{
		Prompt:             "cqlish> ",
		ContinuationPrompt: "   ===> ",
		NullMarker:         format.DefaultStyle.NullMarker,
		Format:             "table",
		Color:              ColorAuto,
		HistoryFile:        getStringEnv(historyFileKey, "~/.cqlish_history"),
		DataDir:            getStringEnv(dataDirKey, "~/.cqlish/data"),
	}
}

// LoadConfig reads a YAML configuration file from fs. Keys missing in the
// file keep the value they have in base.
func LoadConfig(fs billy.Filesystem, path string, base Config) (Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return base, err
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, ErrInvalidConfig.Wrap(err, path, "malformed yaml")
	}

	if err := cfg.Validate(); err != nil {
		return base, ErrInvalidConfig.Wrap(err, path, "bad value")
	}

	return cfg, nil
}

// Validate checks the enumerated values of the configuration.
func (c Config) Validate() error {
	if !oneOf(c.Format, format.IDs...) {
		return format.ErrFormatNotSupported.New(c.Format)
	}

	if !oneOf(c.Color, ColorAuto, ColorAlways, ColorNever) {
		return ErrUsage.New("color must be one of auto, always, never")
	}

	return nil
}

// Style returns the renderer style for the configuration.
func (c Config) Style(color bool) format.Style {
	return format.Style{NullMarker: c.NullMarker, Color: color}
}

// ColorEnabled resolves a color mode. In auto mode colors are used only on
// terminals and when NO_COLOR is not set.
func ColorEnabled(mode string, terminal bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal && !getBoolEnv(noColorKey, false)
	}
}

// ExpandHome replaces a leading "~" with the home directory of the user.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func oneOf(v string, values ...string) bool {
	for _, val := range values {
		if v == val {
			return true
		}
	}
	return false
}
