package cqlish

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// Client is the database capability the shell dispatches to.
type Client interface {
	// Execute runs a statement and returns its whole result set.
	Execute(ctx context.Context, statement string) (*ResultSet, error)
	// CurrentNamespace returns the selected keyspace, or "" if none.
	CurrentNamespace(ctx context.Context) (string, error)
	// Namespaces lists the keyspaces of the server.
	Namespaces(ctx context.Context) ([]string, error)
	// Tables lists the tables of a keyspace.
	Tables(ctx context.Context, namespace string) ([]string, error)
	// Table returns the metadata of a single table.
	Table(ctx context.Context, namespace, name string) (*TableMetadata, error)
	// ServerInfo describes the server the client is connected to.
	ServerInfo(ctx context.Context) (*ServerInfo, error)
}

// Column describes a column of a result set.
type Column struct {
	Name string
	Type string
}

// ResultSet is a fully read statement result. Every row has one cell per
// column.
type ResultSet struct {
	Columns []Column
	Rows    [][]sql.NullString
}

// ColumnNames returns the names of the columns in server order.
func (r *ResultSet) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// TableMetadata is the schema export of a table.
type TableMetadata struct {
	Namespace string
	Name      string
	Schema    string
}

// ServerInfo holds what the server reports about itself.
type ServerInfo struct {
	Version string
}

// Journal records statements that change the server state.
type Journal interface {
	Append(statement string) error
}

// Session is a Client backed by a single MySQL protocol connection.
type Session struct {
	db        *sql.DB
	conn      *sql.Conn
	journal   Journal
	cacheSize int
	tables    *lru.Cache
}

const (
	metadataCacheSizeKey     = "CQLISH_METADATA_CACHE_SIZE"
	defaultMetadataCacheSize = 256
)

// SessionOption is a function that configures the session given some options.
type SessionOption func(*Session)

// WithJournal records every successful mutating statement in j.
func WithJournal(j Journal) SessionOption {
	return func(s *Session) {
		s.journal = j
	}
}

// WithMetadataCacheSize sets how many table schemas are kept in memory.
func WithMetadataCacheSize(size int) SessionOption {
	return func(s *Session) {
		s.cacheSize = size
	}
}

// Connect opens a session against the server identified by dsn, a
// go-sql-driver/mysql data source name.
func Connect(ctx context.Context, dsn string, opts ...SessionOption) (*Session, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	s, err := NewSession(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewSession creates a new Session pinned to one connection of db. Any number
// of session options can be passed to configure the session.
func NewSession(ctx context.Context, db *sql.DB, opts ...SessionOption) (*Session, error) {
	sess := &Session{
		db:        db,
		cacheSize: getIntEnv(metadataCacheSizeKey, defaultMetadataCacheSize),
	}

	for _, opt := range opts {
		opt(sess)
	}

	var err error
	sess.tables, err = lru.New(sess.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize metadata cache: %s", err)
	}

	sess.conn, err = db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return sess, nil
}

// Execute implements the Client interface.
func (s *Session) Execute(ctx context.Context, statement string) (*ResultSet, error) {
	query := strings.TrimSuffix(strings.TrimSpace(statement), ";")
	logrus.WithField("statement", query).Debug("executing statement")

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	rs, err := readResultSet(rows)
	if err != nil {
		return nil, queryError(err)
	}

	if !IsReadOnly(query) {
		s.tables.Purge()
		if s.journal != nil {
			if err := s.journal.Append(query); err != nil {
				logrus.WithField("error", err).Warn("unable to journal statement")
			}
		}
	}

	return rs, nil
}

// CurrentNamespace implements the Client interface.
func (s *Session) CurrentNamespace(ctx context.Context) (string, error) {
	var ns sql.NullString
	if err := s.conn.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&ns); err != nil {
		return "", queryError(err)
	}
	return ns.String, nil
}

// Namespaces implements the Client interface.
func (s *Session) Namespaces(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SHOW DATABASES")
}

// Tables implements the Client interface.
func (s *Session) Tables(ctx context.Context, namespace string) ([]string, error) {
	ok, err := s.hasNamespace(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNamespaceNotFound.New(namespace)
	}

	return s.names(ctx, "SHOW TABLES FROM "+quoteIdent(namespace))
}

// Table implements the Client interface. Schemas are cached until the next
// mutating statement.
func (s *Session) Table(ctx context.Context, namespace, name string) (*TableMetadata, error) {
	key := strings.ToLower(namespace + "." + name)
	if v, ok := s.tables.Get(key); ok {
		return v.(*TableMetadata), nil
	}

	tables, err := s.Tables(ctx, namespace)
	if err != nil {
		return nil, err
	}

	if !contains(tables, name) {
		return nil, ErrTableNotFound.New(namespace, name)
	}

	var table, schema string
	err = s.conn.QueryRowContext(
		ctx,
		"SHOW CREATE TABLE "+quoteIdent(namespace)+"."+quoteIdent(name),
	).Scan(&table, &schema)
	if err != nil {
		return nil, queryError(err)
	}

	md := &TableMetadata{Namespace: namespace, Name: table, Schema: schema}
	s.tables.Add(key, md)
	return md, nil
}

// ServerInfo implements the Client interface.
func (s *Session) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var version string
	if err := s.conn.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return nil, queryError(err)
	}
	return &ServerInfo{Version: version}, nil
}

// Close implements the io.Closer interface.
func (s *Session) Close() error {
	if err := s.conn.Close(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}

func (s *Session) hasNamespace(ctx context.Context, namespace string) (bool, error) {
	namespaces, err := s.Namespaces(ctx)
	if err != nil {
		return false, err
	}

	for _, ns := range namespaces {
		if strings.EqualFold(ns, namespace) {
			return true, nil
		}
	}

	return false, nil
}

func (s *Session) names(ctx context.Context, query string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func readResultSet(rows *sql.Rows) (*ResultSet, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: make([]Column, len(types))}
	for i, t := range types {
		rs.Columns[i] = Column{Name: t.Name(), Type: t.DatabaseTypeName()}
	}

	vals := make([]sql.RawBytes, len(types))
	valPtrs := make([]interface{}, len(types))
	for i := range vals {
		valPtrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(valPtrs...); err != nil {
			return nil, err
		}

		row := make([]sql.NullString, len(vals))
		for i, v := range vals {
			row[i] = formatCell(rs.Columns[i].Type, v)
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, rows.Err()
}

// formatCell converts a raw value to its display form. Binary types are shown
// as hex literals.
func formatCell(typ string, raw sql.RawBytes) sql.NullString {
	if raw == nil {
		return sql.NullString{}
	}

	switch strings.ToUpper(typ) {
	case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BIT", "GEOMETRY":
		return sql.NullString{String: "0x" + hex.EncodeToString(raw), Valid: true}
	default:
		return sql.NullString{String: string(raw), Valid: true}
	}
}

func queryError(err error) error {
	if e, ok := err.(*mysql.MySQLError); ok {
		return ErrInvalidQuery.New(e.Message)
	}
	return err
}

// IsReadOnly reports whether a statement leaves the server state untouched.
func IsReadOnly(statement string) bool {
	pieces := strings.Fields(statement)
	if len(pieces) == 0 {
		return true
	}

	switch strings.ToUpper(strings.TrimRight(pieces[0], ";")) {
	case "SELECT", "SHOW", "DESC", "DESCRIBE", "EXPLAIN", "HELP":
		return true
	default:
		return false
	}
}

func quoteIdent(name string) string {
	return "`" + strings.Replace(name, "`", "``", -1) + "`"
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
