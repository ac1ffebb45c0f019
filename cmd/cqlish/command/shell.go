package command

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/src-d/cqlish"
	"github.com/src-d/cqlish/internal/embedded"
	"github.com/src-d/cqlish/repl"

	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-billy.v4/osfs"
	errors "gopkg.in/src-d/go-errors.v1"
)

const (
	ShellDescription = "Starts an interactive shell on an embedded server"
	ShellHelp        = ShellDescription + "\n\n" +
		"Arguments are flag/value pairs. The script given with -f is run\n" +
		"before the interactive session. With -reset true the data directory\n" +
		"is wiped before the server starts."
)

// ErrNotRegularFile is returned when the script to run is not a regular file.
var ErrNotRegularFile = errors.NewKind("%s is not a regular file")

// Shell represents the `shell` command of cqlish cli tool.
type Shell struct {
	Version string // Version of the application.

	File     string `short:"f" long:"file" description:"Script run before the interactive session"`
	Reset    string `long:"reset" default:"false" choice:"true" choice:"false" description:"Wipe the data directory before starting"`
	DataDir  string `long:"data-dir" description:"Directory where the server state is persisted (default: $CQLISH_DATA_DIR or ~/.cqlish/data)"`
	Format   string `long:"format" choice:"table" choice:"pretty" choice:"csv" choice:"json" description:"Output format of results"`
	Color    string `long:"color" choice:"auto" choice:"always" choice:"never" description:"Use colors in the output"`
	Config   string `long:"config" env:"CQLISH_CONFIG" description:"YAML configuration file"`
	History  string `long:"history" description:"History file (default: $CQLISH_HISTORY_FILE or ~/.cqlish_history)"`
	Trace    string `long:"trace" env:"CQLISH_TRACE" default:"false" choice:"true" choice:"false" description:"Enables jaeger tracing"`
	LogLevel string `long:"log-level" env:"CQLISH_LOG_LEVEL" choice:"info" choice:"debug" choice:"warning" choice:"error" choice:"fatal" default:"info" description:"logging level"`

	in  io.Reader
	out io.Writer
}

// Execute starts an embedded server and a shell connected to it, it honors
// the go-flags.Commander interface.
func (c *Shell) Execute(args []string) error {
	if err := noArguments(args); err != nil {
		return err
	}

	if err := setLogLevel(c.LogLevel); err != nil {
		return err
	}

	if err := c.validateScript(); err != nil {
		return err
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}

	if c.Trace == "true" {
		closer, err := initTracer()
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	ctx := context.Background()
	srv, err := embedded.Start(ctx, embedded.Options{
		DataDir: cqlish.ExpandHome(cfg.DataDir),
		Reset:   c.Reset == "true",
	})
	if err != nil {
		logrus.WithField("error", err).Error("unable to start embedded server")
		return err
	}
	defer srv.Close()

	logrus.WithFields(logrus.Fields{
		"addr":     srv.Address(),
		"data-dir": cfg.DataDir,
	}).Debug("embedded server ready")

	sess, err := cqlish.Connect(ctx, srv.DSN(""), cqlish.WithJournal(srv.Journal()))
	if err != nil {
		logrus.WithField("error", err).Error("unable to connect to embedded server")
		return err
	}
	defer sess.Close()

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	shell := cqlish.NewShell(sess, out, cfg,
		cqlish.WithFilesystem(osfs.New("/"), wd),
		cqlish.WithVersion(c.Version),
		cqlish.WithServerAddress(srv.Address()),
		cqlish.WithColor(cqlish.ColorEnabled(cfg.Color, c.out == nil && repl.IsTerminal(int(os.Stdout.Fd())))),
	)

	if c.File != "" {
		exit, err := shell.RunInitScript(ctx, c.File)
		if err != nil {
			return err
		}

		if exit {
			return nil
		}
	}

	reader, err := c.reader(ctx, cfg, shell)
	if err != nil {
		return err
	}
	defer reader.Close()

	return shell.Run(ctx, reader)
}

func (c *Shell) reader(ctx context.Context, cfg cqlish.Config, shell *cqlish.Shell) (repl.LineReader, error) {
	if c.in != nil {
		return repl.NewScanner(c.in), nil
	}

	if !repl.IsTerminal(int(os.Stdin.Fd())) {
		return repl.NewScanner(os.Stdin), nil
	}

	return repl.NewReadline(repl.Options{
		Prompt:      cfg.Prompt,
		HistoryFile: cqlish.ExpandHome(cfg.HistoryFile),
		Completer: repl.NewCompleter(func() []string {
			return shell.Names(ctx)
		}),
	})
}

// config merges the defaults, the configuration file and the flags, in
// increasing order of precedence.
func (c *Shell) config() (cqlish.Config, error) {
	cfg := cqlish.DefaultConfig()

	if c.Config != "" {
		path, err := filepath.Abs(cqlish.ExpandHome(c.Config))
		if err != nil {
			return cfg, err
		}

		cfg, err = cqlish.LoadConfig(osfs.New("/"), path, cfg)
		if err != nil {
			return cfg, err
		}
	}

	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}

	if c.Format != "" {
		cfg.Format = c.Format
	}

	if c.Color != "" {
		cfg.Color = c.Color
	}

	if c.History != "" {
		cfg.HistoryFile = c.History
	}

	return cfg, cfg.Validate()
}

func (c *Shell) validateScript() error {
	if c.File == "" {
		return nil
	}

	fi, err := os.Stat(c.File)
	if err != nil {
		return err
	}

	if !fi.Mode().IsRegular() {
		return ErrNotRegularFile.New(c.File)
	}

	return nil
}
