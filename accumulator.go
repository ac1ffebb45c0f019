package cqlish

import "strings"

// Accumulator joins input lines into statements terminated by ';'.
type Accumulator struct {
	buf string
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Feed adds a line of input. It returns a nil Command while the statement is
// incomplete. The buffer is reset whenever a Command or an error is returned.
func (a *Accumulator) Feed(line string) (Command, error) {
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "exit", "exit;", "quit", "quit;":
		a.Cancel()
		return Exit{}, nil
	}

	if a.buf == "" {
		switch strings.ToLower(line) {
		case "help", "help;":
			return Help{}, nil
		case "info", "info;":
			return Info{}, nil
		case "clear", "clear;":
			return Clear{}, nil
		}
	}

	if line == "" {
		return nil, nil
	}

	a.buf = a.buf + " " + line
	if !strings.HasSuffix(a.buf, ";") {
		return nil, nil
	}

	text := strings.TrimSuffix(a.buf, ";")
	a.Cancel()

	return Classify(text)
}

// Cancel discards the statement being accumulated.
func (a *Accumulator) Cancel() {
	a.buf = ""
}

// Pending reports whether part of a statement has been accumulated.
func (a *Accumulator) Pending() bool {
	return a.buf != ""
}
