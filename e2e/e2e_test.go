package e2e

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

var (
	mustRun = flag.Bool("must-run", false, "ensures the tests are run")
	bin     = flag.String("cqlish-bin", "", "path to the cqlish binary to test")
	version = flag.String("cqlish-version", "", "(optional) version of the binary")
)

var (
	path    string
	dataDir string
)

const serverAddr = "127.0.0.1:3309"

func TestMain(m *testing.M) {
	flag.Parse()

	var err error
	path, err = exec.LookPath(*bin)
	if err != nil {
		fmt.Println("cqlish-bin not provided")
		if *mustRun {
			os.Exit(1)
		} else {
			os.Exit(0)
		}
	}

	dataDir, err = ioutil.TempDir("", "cqlish-e2e")
	if err != nil {
		fmt.Println("unable to create data directory:", err)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dataDir)
	os.Exit(code)
}

func runShell(t *testing.T, stdin string, args ...string) string {
	t.Helper()

	cmd := exec.Command(path, append(args, "-data-dir", dataDir)...)
	cmd.Stdin = strings.NewReader(stdin)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	require.NoError(t, cmd.Run(), out.String())
	return out.String()
}

func startServer(t *testing.T) func() {
	t.Helper()
	require := require.New(t)

	host, port, err := net.SplitHostPort(serverAddr)
	require.NoError(err)

	cmd := exec.Command(path, "server", "--host="+host, "--port="+port, "--data-dir="+dataDir)
	require.NoError(cmd.Start())

	done := make(chan error, 1)
	go func() {
		switch err := cmd.Wait().(type) {
		case *exec.ExitError:
			done <- nil
		default:
			done <- err
		}
	}()

	require.Eventually(func() bool {
		conn, err := net.Dial("tcp", serverAddr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 10*time.Second, 100*time.Millisecond)

	return func() {
		require.NoError(cmd.Process.Signal(os.Interrupt))
		require.NoError(<-done)
	}
}

func TestShellScriptAndServerReplay(t *testing.T) {
	require := require.New(t)

	script := filepath.Join(dataDir, "..", filepath.Base(dataDir)+"-init.cql")
	require.NoError(ioutil.WriteFile(script, []byte(`# e2e schema
CREATE DATABASE e2e;
USE e2e;
CREATE TABLE users (id INT PRIMARY KEY, name TEXT);
INSERT INTO users VALUES (1, 'alice'), (2, NULL);
`), 0644))
	defer os.Remove(script)

	out := runShell(t, "SELECT name FROM users\nORDER BY id;\n", "-reset", "true", "-f", script)
	require.Contains(out, ` ==> "SELECT name FROM users ORDER BY id;"`)
	require.Contains(out, " alice \n")
	require.Contains(out, "  null \n")

	stop := startServer(t)
	defer stop()

	db, err := sql.Open("mysql", "root:@tcp("+serverAddr+")/e2e")
	require.NoError(err)
	defer db.Close()

	var count int
	require.NoError(db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	require.Equal(2, count)
}

func TestOddArguments(t *testing.T) {
	cmd := exec.Command(path, "-reset")
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	require.Contains(t, string(out), "Must specify an even number of arguments")
}

func TestUnknownFlag(t *testing.T) {
	for _, args := range [][]string{
		{"-x", "y"},
		{"-format", "xml"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			out, err := exec.Command(path, args...).CombinedOutput()
			require.Error(t, err)
			require.Contains(t, string(out), "Usage:")
		})
	}
}

func TestVersion(t *testing.T) {
	if *version == "" {
		t.Skip("no version provided, skipping")
	}

	out, err := exec.Command(path, "version").Output()
	require.NoError(t, err)
	prefix := fmt.Sprintf("cqlish (%s) - build ", *version)
	require.True(t, strings.HasPrefix(string(out), prefix), string(out))
}
