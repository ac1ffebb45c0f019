package cqlish

import "strings"

// Command is a completed input of the shell. The set of commands is closed:
// Describe, Source, Help, Info, Clear, Exit and Statement.
type Command interface {
	command()
}

// DescribeTarget is what a describe command lists.
type DescribeTarget int

const (
	// DescribeKeyspaces lists every keyspace.
	DescribeKeyspaces DescribeTarget = iota
	// DescribeTables lists the tables of a keyspace.
	DescribeTables
	// DescribeTable prints the schema of a single table.
	DescribeTable
)

func (t DescribeTarget) String() string {
	switch t {
	case DescribeKeyspaces:
		return "keyspaces"
	case DescribeTables:
		return "tables"
	case DescribeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Describe asks for catalog metadata. An empty Namespace means the keyspace
// currently selected in the session.
type Describe struct {
	Target    DescribeTarget
	Namespace string
	Table     string
}

// Source runs the statements of a script file.
type Source struct {
	Path string
}

// Help prints the available meta-commands.
type Help struct{}

// Info prints session and server information.
type Info struct{}

// Clear clears the terminal.
type Clear struct{}

// Exit ends the session.
type Exit struct{}

// Statement is sent to the server as is. Text keeps its trailing ';'.
type Statement struct {
	Text string
}

func (Describe) command()  {}
func (Source) command()    {}
func (Help) command()      {}
func (Info) command()      {}
func (Clear) command()     {}
func (Exit) command()      {}
func (Statement) command() {}

// Classify turns a complete input, already stripped of its terminating ';',
// into a Command. It returns a nil Command for an empty input.
func Classify(text string) (Command, error) {
	text = strings.TrimSpace(text)
	pieces := strings.Fields(text)
	if len(pieces) == 0 {
		return nil, nil
	}

	switch strings.ToLower(pieces[0]) {
	case "desc", "describe":
		return classifyDescribe(text, pieces)
	case "source":
		return classifySource(pieces)
	default:
		return Statement{Text: text + ";"}, nil
	}
}

func classifyDescribe(text string, pieces []string) (Command, error) {
	if len(pieces) < 2 {
		return nil, ErrUsage.New("bad describe: " + text)
	}

	args := pieces[2:]
	switch strings.ToLower(pieces[1]) {
	case "keyspaces":
		if len(args) > 0 {
			return nil, ErrUsage.New("describe keyspaces takes no arguments")
		}
		return Describe{Target: DescribeKeyspaces}, nil

	case "tables":
		switch len(args) {
		case 0:
			return Describe{Target: DescribeTables}, nil
		case 1:
			return Describe{Target: DescribeTables, Namespace: args[0]}, nil
		default:
			return nil, ErrUsage.New("describe tables [keyspace]")
		}

	case "table":
		switch len(args) {
		case 0:
			return nil, ErrUsage.New("must specify table")
		case 1:
			return describeQualifiedTable(args[0])
		case 2:
			if strings.Contains(args[1], ".") {
				return nil, ErrUsage.New("poorly formatted table (" + args[1] + ")")
			}
			return Describe{Target: DescribeTable, Namespace: args[0], Table: args[1]}, nil
		default:
			return nil, ErrUsage.New("describe table [keyspace] <table>")
		}

	default:
		return nil, ErrUsage.New("bad describe: " + text)
	}
}

// describeQualifiedTable accepts "table" or "keyspace.table". Names with more
// than one dot are rejected instead of guessing where the keyspace ends.
func describeQualifiedTable(name string) (Command, error) {
	if !strings.Contains(name, ".") {
		return Describe{Target: DescribeTable, Table: name}, nil
	}

	parts := strings.SplitN(name, ".", 2)
	if parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], ".") {
		return nil, ErrUsage.New("poorly formatted table (" + name + ")")
	}

	return Describe{Target: DescribeTable, Namespace: parts[0], Table: parts[1]}, nil
}

func classifySource(pieces []string) (Command, error) {
	path := unquote(strings.Join(pieces[1:], " "))
	if path == "" {
		return nil, ErrUsage.New("must specify a file to source")
	}

	return Source{Path: path}, nil
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	first, last := s[0], s[len(s)-1]
	if first == last && (first == '\'' || first == '"') {
		return s[1 : len(s)-1]
	}

	return s
}
