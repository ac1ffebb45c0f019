package cqlish

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrUsage is returned when a meta-command is malformed or cannot be
	// resolved with the session state.
	ErrUsage = errors.NewKind("usage: %s")

	// ErrInvalidQuery is returned when the server rejects a statement.
	ErrInvalidQuery = errors.NewKind("invalid query: %s")

	// ErrNamespaceNotFound is returned when a keyspace does not exist.
	ErrNamespaceNotFound = errors.NewKind("keyspace (%s) not found")

	// ErrTableNotFound is returned when a table does not exist in a keyspace.
	ErrTableNotFound = errors.NewKind("table (%s.%s) not found")

	// ErrScriptRead is returned when a script cannot be opened or read.
	ErrScriptRead = errors.NewKind("unable to read script %s")

	// ErrSourceDepth is returned when scripts source each other too deeply.
	ErrSourceDepth = errors.NewKind("source nesting exceeds %d levels")

	// ErrInvalidConfig is returned when a configuration file has bad values.
	ErrInvalidConfig = errors.NewKind("invalid configuration %s: %s")

	// ErrUnknownCommand is returned when a command has no handler.
	ErrUnknownCommand = errors.NewKind("unknown command: %T")
)
