package main

import (
	"os"

	"github.com/src-d/cqlish/cmd/cqlish/command"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

const (
	name = "cqlish"
)

var (
	version = "undefined"
	build   = "undefined"
)

func main() {
	parser := flags.NewNamedParser(name, flags.Default)

	parser.AddCommand("shell", command.ShellDescription, command.ShellHelp,
		&command.Shell{
			Version: version,
		})

	parser.AddCommand("server", command.ServerDescription, command.ServerHelp,
		&command.Server{})

	parser.AddCommand("version", command.VersionDescription, command.VersionHelp,
		&command.Version{
			Name:    name,
			Version: version,
			Build:   build,
		})

	args, err := command.ShellArgs(parser.Command, os.Args[1:])
	if err != nil {
		logrus.Error(err)
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok {
			switch e.Type {
			case flags.ErrHelp:
				os.Exit(0)
			case flags.ErrCommandRequired:
				parser.WriteHelp(os.Stdout)
			case flags.ErrUnknownFlag, flags.ErrInvalidChoice, flags.ErrExpectedArgument:
				parser.WriteHelp(os.Stderr)
			}
		} else {
			logrus.Error(err)
		}

		os.Exit(1)
	}
}
