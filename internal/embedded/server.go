// Package embedded runs an in-process MySQL compatible server whose state is
// kept in a data directory as a journal of statements.
package embedded

import (
	"context"
	"database/sql"
	"net"
	"os"
	"path/filepath"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	gmssql "github.com/dolthub/go-mysql-server/sql"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/osfs"
	"gopkg.in/src-d/go-billy.v4/util"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrDataDirLocked is returned when another process uses the data
	// directory.
	ErrDataDirLocked = errors.NewKind("data directory is locked by another process: %s")

	// ErrJournal is returned when the journal cannot be read or written.
	ErrJournal = errors.NewKind("journal failure")

	// ErrStart is returned when the server does not come up.
	ErrStart = errors.NewKind("unable to start embedded server on %s")
)

const (
	// LockFile is the name of the lock inside the data directory.
	LockFile = "LOCK"

	defaultUser  = "root"
	startTimeout = 10 * time.Second
)

// Options configures an embedded server.
type Options struct {
	// DataDir holds the lock and the journal. It is created if missing.
	DataDir string
	// Reset wipes the data directory before starting.
	Reset bool
	// Address to listen on. Defaults to a free loopback port.
	Address string
}

// Server is a running embedded server.
type Server struct {
	fs      billy.Filesystem
	lock    *os.File
	journal *Journal
	srv     *server.Server
	addr    string
	done    chan error
}

// Start locks the data directory, starts the server and replays the journal.
func Start(ctx context.Context, opts Options) (*Server, error) {
	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, err
	}

	lock, err := os.OpenFile(filepath.Join(opts.DataDir, LockFile), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	if err := lockFile(lock); err != nil {
		_ = lock.Close()
		return nil, err
	}

	s := &Server{
		fs:   osfs.New(opts.DataDir),
		lock: lock,
		addr: opts.Address,
		done: make(chan error, 1),
	}

	if err := s.start(ctx, opts.Reset); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Server) start(ctx context.Context, reset bool) error {
	if reset {
		if err := s.reset(); err != nil {
			return err
		}
	}

	if s.addr == "" {
		addr, err := freeAddress()
		if err != nil {
			return err
		}
		s.addr = addr
	}

	pro := memory.NewDBProvider()
	engine := sqle.NewDefault(pro)
	cfg := server.Config{
		Protocol: "tcp",
		Address:  s.addr,
	}

	srv, err := server.NewServer(cfg, engine, gmssql.NewContext, memory.NewSessionBuilder(pro), nil)
	if err != nil {
		return ErrStart.Wrap(err, s.addr)
	}
	s.srv = srv

	go func() {
		s.done <- srv.Start()
	}()

	if err := s.waitReady(); err != nil {
		return err
	}

	logrus.WithField("addr", s.addr).Debug("embedded server started")

	if err := s.replay(ctx); err != nil {
		return err
	}

	s.journal, err = OpenJournal(s.fs)
	return err
}

func (s *Server) waitReady() error {
	deadline := time.Now().Add(startTimeout)
	for {
		select {
		case err := <-s.done:
			s.srv = nil
			if err == nil {
				return ErrStart.New(s.addr)
			}
			return ErrStart.Wrap(err, s.addr)
		default:
		}

		conn, err := net.DialTimeout("tcp", s.addr, 100*time.Millisecond)
		if err == nil {
			return conn.Close()
		}

		if time.Now().After(deadline) {
			return ErrStart.Wrap(err, s.addr)
		}

		time.Sleep(20 * time.Millisecond)
	}
}

// replay runs the journal on a single connection, so that USE statements
// affect the ones after them.
func (s *Server) replay(ctx context.Context) error {
	db, err := sql.Open("mysql", s.DSN(""))
	if err != nil {
		return err
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	n, err := ReplayJournal(s.fs, func(statement string) error {
		_, err := conn.ExecContext(ctx, statement)
		return err
	})
	if err != nil {
		return err
	}

	if n > 0 {
		logrus.WithField("statements", n).Info("journal replayed")
	}

	return nil
}

// reset removes everything in the data directory but the lock.
func (s *Server) reset() error {
	entries, err := s.fs.ReadDir("/")
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Name() == LockFile {
			continue
		}

		if err := util.RemoveAll(s.fs, e.Name()); err != nil {
			return err
		}
	}

	logrus.Info("data directory reset")
	return nil
}

// Address returns the host:port the server listens on.
func (s *Server) Address() string {
	return s.addr
}

// DSN returns a go-sql-driver/mysql data source name for database, which may
// be empty.
func (s *Server) DSN(database string) string {
	cfg := mysql.NewConfig()
	cfg.User = defaultUser
	cfg.Net = "tcp"
	cfg.Addr = s.addr
	cfg.DBName = database
	return cfg.FormatDSN()
}

// Journal returns the journal new mutating statements must be appended to.
func (s *Server) Journal() *Journal {
	return s.journal
}

// Close stops the server and releases the data directory.
func (s *Server) Close() error {
	var errs []error
	if s.srv != nil {
		if err := s.srv.Close(); err != nil {
			errs = append(errs, err)
		}

		select {
		case <-s.done:
		case <-time.After(startTimeout):
		}
		s.srv = nil
	}

	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, err)
		}
		s.journal = nil
	}

	if s.lock != nil {
		if err := unlockFile(s.lock); err != nil {
			errs = append(errs, err)
		}
		if err := s.lock.Close(); err != nil {
			errs = append(errs, err)
		}
		s.lock = nil
	}

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}

func freeAddress() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()

	return l.Addr().String(), nil
}
