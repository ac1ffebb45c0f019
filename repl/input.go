package repl

import (
	"bufio"
	"io"

	"github.com/chzyer/readline"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrInterrupt is returned by a LineReader when the user interrupts the
// line being edited. It is distinct from io.EOF, which ends the input.
var ErrInterrupt = errors.NewKind("interrupted")

// LineReader supplies one line of input at a time.
type LineReader interface {
	// Readline returns the next line without its line terminator.
	Readline() (string, error)
	// SetPrompt changes the prompt shown before the next line.
	SetPrompt(prompt string)
	Close() error
}

// Options of an interactive reader.
type Options struct {
	Prompt      string
	HistoryFile string
	Completer   readline.AutoCompleter
}

// Readline is an interactive LineReader with history and completion.
type Readline struct {
	rl *readline.Instance
}

// NewReadline creates an interactive reader on the process terminal.
func NewReadline(opts Options) (*Readline, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            opts.Prompt,
		HistoryFile:       opts.HistoryFile,
		AutoComplete:      opts.Completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}

	return &Readline{rl: rl}, nil
}

// Readline implements the LineReader interface.
func (r *Readline) Readline() (string, error) {
	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		return line, ErrInterrupt.New()
	}
	return line, err
}

// SetPrompt implements the LineReader interface.
func (r *Readline) SetPrompt(prompt string) {
	r.rl.SetPrompt(prompt)
}

// Close implements the LineReader interface.
func (r *Readline) Close() error {
	return r.rl.Close()
}

// Scanner is a LineReader for non interactive input. Prompts are not printed.
type Scanner struct {
	s *bufio.Scanner
	c io.Closer
}

const (
	initialLineSize = 64 * 1024
	maxLineSize     = 16 * 1024 * 1024
)

// NewScanner reads lines from r. If r is an io.Closer it is closed by Close.
// Lines may be up to 16 MiB long.
func NewScanner(r io.Reader) *Scanner {
	s := &Scanner{s: bufio.NewScanner(r)}
	s.s.Buffer(make([]byte, initialLineSize), maxLineSize)
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}
	return s
}

// Readline implements the LineReader interface.
func (s *Scanner) Readline() (string, error) {
	if s.s.Scan() {
		return s.s.Text(), nil
	}

	if err := s.s.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

// SetPrompt implements the LineReader interface.
func (*Scanner) SetPrompt(string) {}

// Close implements the LineReader interface.
func (s *Scanner) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}

// IsTerminal reports whether fd is a terminal.
func IsTerminal(fd int) bool {
	return readline.IsTerminal(fd)
}
