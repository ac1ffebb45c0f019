package command

import (
	"strings"

	"github.com/jessevdk/go-flags"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrOddArguments is returned when flags and values do not come in pairs.
	ErrOddArguments = errors.NewKind("Must specify an even number of arguments")

	// ErrUnexpectedArguments is returned when a command gets positional
	// arguments.
	ErrUnexpectedArguments = errors.NewKind("unexpected arguments: %s")
)

// ShellArgs turns the command line into arguments for the parser. A command
// line that does not start with a command name or a help flag is a list of
// flag/value pairs for the shell command.
func ShellArgs(root *flags.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help":
			return args, nil
		}

		if root.Find(args[0]) != nil {
			return args, nil
		}
	}

	pairs, err := NormalizeArgs(args)
	if err != nil {
		return nil, err
	}

	return append([]string{"shell"}, pairs...), nil
}

// NormalizeArgs checks args are flag/value pairs and rewrites single dash long
// flags, such as -reset, to their double dash form.
func NormalizeArgs(args []string) ([]string, error) {
	if len(args)%2 != 0 {
		return nil, ErrOddArguments.New()
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i += 2 {
		flag := args[i]
		if len(flag) > 2 && flag[0] == '-' && flag[1] != '-' {
			flag = "-" + flag
		}

		out = append(out, flag, args[i+1])
	}

	return out, nil
}

func noArguments(args []string) error {
	if len(args) > 0 {
		return ErrUnexpectedArguments.New(strings.Join(args, " "))
	}
	return nil
}
