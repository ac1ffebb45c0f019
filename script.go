package cqlish

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/src-d/cqlish/repl"
)

const maxSourceDepth = 16

// RunScript feeds the lines of the script at path through a fresh
// accumulator. Lines starting with '#' are comments. Failing statements are
// reported and the script goes on; it returns true if the script asked to
// end the session.
func (s *Shell) RunScript(ctx context.Context, path string) (exit bool, err error) {
	if s.depth >= maxSourceDepth {
		return false, ErrSourceDepth.New(maxSourceDepth)
	}

	s.depth++
	defer func() { s.depth-- }()

	f, err := s.fs.Open(s.resolve(path))
	if err != nil {
		return false, ErrScriptRead.Wrap(err, path)
	}

	r := repl.NewScanner(f)
	defer r.Close()

	acc := NewAccumulator()
	for {
		line, err := r.Readline()
		if err == io.EOF {
			break
		}

		if err != nil {
			return false, ErrScriptRead.Wrap(err, path)
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}

		if s.feed(ctx, acc, line) {
			return true, nil
		}
	}

	if acc.Pending() {
		return false, ErrUsage.New("incomplete statement at end of script")
	}

	return false, nil
}

// RunInitScript runs the script given at startup. An unreadable script is
// returned, any other error is printed and the session goes on.
func (s *Shell) RunInitScript(ctx context.Context, path string) (exit bool, err error) {
	exit, err = s.RunScript(ctx, path)
	if err != nil && !ErrScriptRead.Is(err) {
		s.printError(err)
		return exit, nil
	}
	return exit, err
}

func (s *Shell) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.workDir, path)
}
