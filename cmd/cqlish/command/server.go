package command

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/src-d/cqlish"
	"github.com/src-d/cqlish/internal/embedded"

	"github.com/sirupsen/logrus"
)

const (
	ServerDescription = "Starts a standalone embedded server instance"
	ServerHelp        = ServerDescription + "\n\n" +
		"The server uses the same data directory as the shell. Its journal is\n" +
		"replayed at start, statements of remote clients are not journaled."
)

// Server represents the `server` command of cqlish cli tool.
type Server struct {
	Host     string `long:"host" default:"127.0.0.1" description:"Host where the server is going to listen"`
	Port     int    `short:"p" long:"port" default:"3306" description:"Port where the server is going to listen"`
	DataDir  string `long:"data-dir" description:"Directory where the server state is persisted (default: $CQLISH_DATA_DIR or ~/.cqlish/data)"`
	Reset    string `long:"reset" default:"false" choice:"true" choice:"false" description:"Wipe the data directory before starting"`
	LogLevel string `long:"log-level" env:"CQLISH_LOG_LEVEL" choice:"info" choice:"debug" choice:"warning" choice:"error" choice:"fatal" default:"info" description:"logging level"`

	stop chan os.Signal
}

// Execute starts the embedded server and blocks until the process is
// interrupted, it honors the go-flags.Commander interface.
func (c *Server) Execute(args []string) error {
	if err := noArguments(args); err != nil {
		return err
	}

	if err := setLogLevel(c.LogLevel); err != nil {
		return err
	}

	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = cqlish.DefaultConfig().DataDir
	}

	srv, err := embedded.Start(context.Background(), embedded.Options{
		DataDir: cqlish.ExpandHome(dataDir),
		Reset:   c.Reset == "true",
		Address: net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	})
	if err != nil {
		logrus.WithField("error", err).Error("unable to start embedded server")
		return err
	}

	logrus.Infof("server started and listening on %s", srv.Address())

	if c.stop == nil {
		c.stop = make(chan os.Signal, 1)
		signal.Notify(c.stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(c.stop)
	}

	sig := <-c.stop
	logrus.WithField("signal", sig.String()).Info("stopping server")
	return srv.Close()
}
