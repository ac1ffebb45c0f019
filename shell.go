package cqlish

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/sirupsen/logrus"
	"github.com/src-d/cqlish/internal/format"
	"github.com/src-d/cqlish/repl"
	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/osfs"
)

const clearScreen = "\033[H\033[2J"

// Shell reads commands, runs them against a Client and prints the results.
type Shell struct {
	client  Client
	out     io.Writer
	cfg     Config
	color   bool
	fs      billy.Filesystem
	workDir string
	metrics *Metrics
	version string
	address string
	acc     *Accumulator
	depth   int
	now     func() time.Time
}

// ShellOption is a function that configures the shell given some options.
type ShellOption func(*Shell)

// WithFilesystem sets the filesystem scripts are read from. Relative script
// paths are resolved against workDir.
func WithFilesystem(fs billy.Filesystem, workDir string) ShellOption {
	return func(s *Shell) {
		s.fs = fs
		s.workDir = workDir
	}
}

// WithMetrics sets the metrics updated after every statement.
func WithMetrics(m *Metrics) ShellOption {
	return func(s *Shell) {
		s.metrics = m
	}
}

// WithVersion sets the version reported by info.
func WithVersion(version string) ShellOption {
	return func(s *Shell) {
		s.version = version
	}
}

// WithServerAddress sets the server address reported by info.
func WithServerAddress(addr string) ShellOption {
	return func(s *Shell) {
		s.address = addr
	}
}

// WithColor enables colored output and terminal clearing.
func WithColor(enabled bool) ShellOption {
	return func(s *Shell) {
		s.color = enabled
	}
}

// NewShell creates a shell dispatching to client and printing to out. By
// default scripts are read from the OS filesystem relative to the current
// directory.
func NewShell(client Client, out io.Writer, cfg Config, opts ...ShellOption) *Shell {
	s := &Shell{
		client:  client,
		out:     out,
		cfg:     cfg,
		version: "undefined",
		acc:     NewAccumulator(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		s.fs = osfs.New("/")
		if wd, err := os.Getwd(); err == nil {
			s.workDir = wd
		} else {
			s.workDir = "/"
		}
	}

	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	return s
}

// Run reads lines from r until exit or the end of the input. An interrupt
// discards the statement being typed.
func (s *Shell) Run(ctx context.Context, r repl.LineReader) error {
	for {
		if s.acc.Pending() {
			r.SetPrompt(s.cfg.ContinuationPrompt)
		} else {
			r.SetPrompt(s.cfg.Prompt)
		}

		line, err := r.Readline()
		if err != nil {
			if repl.ErrInterrupt.Is(err) {
				s.acc.Cancel()
				continue
			}

			if err == io.EOF {
				return nil
			}

			return err
		}

		if s.feed(ctx, s.acc, line) {
			return nil
		}
	}
}

// feed processes a line with acc and reports whether the session must end.
func (s *Shell) feed(ctx context.Context, acc *Accumulator, line string) bool {
	if strings.HasSuffix(strings.TrimSpace(line), "%%") {
		acc.Cancel()
		fmt.Fprintln(s.out, " ... clearing buffer")
		return false
	}

	cmd, err := acc.Feed(line)
	if err != nil {
		s.printError(err)
		return false
	}

	if cmd == nil {
		return false
	}

	exit, err := s.Dispatch(ctx, cmd)
	if err != nil {
		s.printError(err)
	}

	return exit
}

// Dispatch runs a single command. It reports whether the session must end.
func (s *Shell) Dispatch(ctx context.Context, cmd Command) (exit bool, err error) {
	logrus.WithField("command", fmt.Sprintf("%T", cmd)).Debug("dispatching command")

	switch c := cmd.(type) {
	case Exit:
		return true, nil
	case Help:
		return false, s.help()
	case Info:
		return false, s.info(ctx)
	case Clear:
		return false, s.clear()
	case Describe:
		return false, s.describe(ctx, c)
	case Source:
		return s.RunScript(ctx, c.Path)
	case Statement:
		return false, s.statement(ctx, c.Text)
	default:
		return false, ErrUnknownCommand.New(cmd)
	}
}

func (s *Shell) statement(ctx context.Context, text string) error {
	fmt.Fprintf(s.out, " ==> \"%s\"\n", text)

	span, ctx := opentracing.StartSpanFromContext(ctx, "cqlish.statement")
	span.SetTag("statement", text)
	defer span.Finish()

	start := s.now()
	rs, err := s.client.Execute(ctx, text)
	elapsed := s.now().Sub(start)
	if err != nil {
		ext.Error.Set(span, true)
		s.metrics.observe(elapsed.Seconds(), 0, err)
		return err
	}

	if len(rs.Rows) == 0 {
		fmt.Fprintln(s.out, "Ok")
	} else if err := s.render(rs); err != nil {
		ext.Error.Set(span, true)
		s.metrics.observe(elapsed.Seconds(), 0, err)
		return err
	}

	span.SetTag("rows", len(rs.Rows))
	s.metrics.observe(elapsed.Seconds(), len(rs.Rows), nil)
	fmt.Fprintf(s.out, "\n Elapsed time: %d ms\n\n", elapsed.Nanoseconds()/int64(time.Millisecond))
	return nil
}

func (s *Shell) render(rs *ResultSet) error {
	f, err := format.NewFormat(s.cfg.Format, s.out, s.cfg.Style(s.color))
	if err != nil {
		return err
	}

	if err := f.WriteHeader(rs.ColumnNames()); err != nil {
		return err
	}

	for _, row := range rs.Rows {
		if err := f.Write(row); err != nil {
			return err
		}
	}

	return f.Close()
}

func (s *Shell) describe(ctx context.Context, d Describe) error {
	switch d.Target {
	case DescribeKeyspaces:
		namespaces, err := s.client.Namespaces(ctx)
		if err != nil {
			return err
		}

		s.printList("DESCRIBE KEYSPACES", namespaces)
		return nil

	case DescribeTables:
		ns, err := s.namespace(ctx, d.Namespace, "must specify keyspace to list tables")
		if err != nil {
			return err
		}

		tables, err := s.client.Tables(ctx, ns)
		if err != nil {
			return err
		}

		s.printList("DESCRIBE TABLES", tables)
		return nil

	case DescribeTable:
		ns, err := s.namespace(ctx, d.Namespace, "must specify keyspace for table "+d.Table)
		if err != nil {
			return err
		}

		table, err := s.client.Table(ctx, ns, d.Table)
		if err != nil {
			return err
		}

		fmt.Fprintf(s.out, " ==> DESCRIBE TABLE\n%s\n\n", table.Schema)
		return nil

	default:
		return ErrUsage.New("bad describe target " + d.Target.String())
	}
}

// namespace returns ns or, if empty, the namespace selected in the session.
func (s *Shell) namespace(ctx context.Context, ns, usage string) (string, error) {
	if ns != "" {
		return ns, nil
	}

	current, err := s.client.CurrentNamespace(ctx)
	if err != nil {
		return "", err
	}

	if current == "" {
		return "", ErrUsage.New(usage)
	}

	return current, nil
}

func (s *Shell) printList(title string, names []string) {
	fmt.Fprintf(s.out, " ==> %s\n", title)
	for _, n := range names {
		fmt.Fprintf(s.out, " %s\n", n)
	}
	fmt.Fprintln(s.out)
}

const helpText = ` ==> HELP
 Statements end with ';' and may span several lines. A line ending with
 '%%' discards the statement being typed.

 describe keyspaces;              list keyspaces
 describe tables [keyspace];      list the tables of a keyspace
 describe table [keyspace] name;  show the schema of a table (also keyspace.name)
 source 'file';                   run the statements of a script
 help                             show this help
 info                             show session information
 clear                            clear the screen
 exit | quit                      leave the shell

`

func (s *Shell) help() error {
	_, err := io.WriteString(s.out, helpText)
	return err
}

func (s *Shell) info(ctx context.Context) error {
	server, err := s.client.ServerInfo(ctx)
	if err != nil {
		return err
	}

	ns, err := s.client.CurrentNamespace(ctx)
	if err != nil {
		return err
	}

	if ns == "" {
		ns = "(none)"
	}

	stats, err := s.metrics.Stats()
	if err != nil {
		return err
	}

	address := s.address
	if address == "" {
		address = "unknown"
	}

	fmt.Fprintln(s.out, " ==> INFO")
	fmt.Fprintf(s.out, " cqlish version:   %s\n", s.version)
	fmt.Fprintf(s.out, " server version:   %s\n", server.Version)
	fmt.Fprintf(s.out, " server address:   %s\n", address)
	fmt.Fprintf(s.out, " current keyspace: %s\n", ns)
	fmt.Fprintf(s.out, " data directory:   %s\n", s.cfg.DataDir)
	fmt.Fprintf(s.out, " statements:       %d (%d failed)\n", stats.Statements, stats.Failed)
	fmt.Fprintf(s.out, " rows printed:     %d\n", stats.Rows)
	fmt.Fprintf(s.out, " server time:      %d ms\n\n", int64(math.Round(stats.Seconds*1000)))
	return nil
}

func (s *Shell) clear() error {
	if !s.color {
		return nil
	}

	_, err := io.WriteString(s.out, clearScreen)
	return err
}

func (s *Shell) printError(err error) {
	if format.ErrRowShape.Is(err) {
		fmt.Fprintf(s.out, "ERROR: renderer: %s\n", err)
		return
	}

	fmt.Fprintf(s.out, "ERROR: %s\n", err)
}

// Names returns the keyspaces and the tables of the current keyspace, for
// completion. Lookup errors are ignored.
func (s *Shell) Names(ctx context.Context) []string {
	names, err := s.client.Namespaces(ctx)
	if err != nil {
		return nil
	}

	ns, err := s.client.CurrentNamespace(ctx)
	if err != nil || ns == "" {
		return names
	}

	tables, err := s.client.Tables(ctx, ns)
	if err != nil {
		return names
	}

	return append(names, tables...)
}
