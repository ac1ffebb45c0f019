package command

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/src-d/cqlish"
	"github.com/stretchr/testify/require"
)

func setupTempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := ioutil.TempDir("", "cqlish-command")
	require.NoError(t, err)

	return dir, func() {
		require.NoError(t, os.RemoveAll(dir))
	}
}

func TestShellConfig(t *testing.T) {
	require := require.New(t)

	dir, cleanup := setupTempDir(t)
	defer cleanup()

	path := filepath.Join(dir, "cqlish.yml")
	require.NoError(ioutil.WriteFile(path, []byte("format: pretty\nnull_marker: NULL\ncolor: always\n"), 0644))

	cfg, err := (&Shell{Config: path}).config()
	require.NoError(err)
	require.Equal("pretty", cfg.Format)
	require.Equal("NULL", cfg.NullMarker)
	require.Equal(cqlish.ColorAlways, cfg.Color)

	cfg, err = (&Shell{Config: path, Format: "csv", Color: "never", DataDir: "/data", History: "/hist"}).config()
	require.NoError(err)
	require.Equal("csv", cfg.Format)
	require.Equal(cqlish.ColorNever, cfg.Color)
	require.Equal("/data", cfg.DataDir)
	require.Equal("/hist", cfg.HistoryFile)
	require.Equal("NULL", cfg.NullMarker)

	_, err = (&Shell{Config: filepath.Join(dir, "missing.yml")}).config()
	require.Error(err)
}

func TestShellValidateScript(t *testing.T) {
	require := require.New(t)

	dir, cleanup := setupTempDir(t)
	defer cleanup()

	script := filepath.Join(dir, "init.cql")
	require.NoError(ioutil.WriteFile(script, []byte("SELECT 1;\n"), 0644))

	require.NoError((&Shell{}).validateScript())
	require.NoError((&Shell{File: script}).validateScript())

	err := (&Shell{File: dir}).validateScript()
	require.True(ErrNotRegularFile.Is(err))

	err = (&Shell{File: filepath.Join(dir, "missing.cql")}).validateScript()
	require.True(os.IsNotExist(err))
}

func TestShellExecute(t *testing.T) {
	require := require.New(t)

	dir, cleanup := setupTempDir(t)
	defer cleanup()

	dataDir := filepath.Join(dir, "data")
	script := filepath.Join(dir, "init.cql")
	require.NoError(ioutil.WriteFile(script, []byte(`# schema
CREATE DATABASE ks;
USE ks;
CREATE TABLE users (id INT PRIMARY KEY, name TEXT);
INSERT INTO users VALUES (1, 'alice'), (2, NULL);
`), 0644))

	var out bytes.Buffer
	cmd := &Shell{
		File:    script,
		DataDir: dataDir,
		Reset:   "false",
		Trace:   "false",
		in:      strings.NewReader("SELECT id, name\nFROM users ORDER BY id;\nexit\nSELECT 2;\n"),
		out:     &out,
	}
	require.NoError(cmd.Execute(nil))

	output := out.String()
	require.Contains(output, ` ==> "SELECT id, name FROM users ORDER BY id;"`)
	require.Contains(output, "  1 | alice \n")
	require.Contains(output, "  2 |  null \n")
	require.NotContains(output, "SELECT 2;")
	require.NotContains(output, "ERROR")

	out.Reset()
	cmd = &Shell{
		DataDir: dataDir,
		Reset:   "false",
		Trace:   "false",
		Format:  "csv",
		in:      strings.NewReader("SELECT name FROM ks.users WHERE id = 1;\n"),
		out:     &out,
	}
	require.NoError(cmd.Execute(nil))
	require.Contains(out.String(), "name\nalice\n")

	out.Reset()
	cmd = &Shell{
		DataDir: dataDir,
		Reset:   "true",
		Trace:   "false",
		in:      strings.NewReader("describe tables ks;\n"),
		out:     &out,
	}
	require.NoError(cmd.Execute(nil))
	require.Contains(out.String(), "ERROR: keyspace (ks) not found")

	partial := filepath.Join(dir, "partial.cql")
	require.NoError(ioutil.WriteFile(partial, []byte("CREATE DATABASE other;\nSELECT 1\n"), 0644))

	out.Reset()
	cmd = &Shell{
		File:    partial,
		DataDir: dataDir,
		Reset:   "false",
		Trace:   "false",
		in:      strings.NewReader("SHOW DATABASES;\n"),
		out:     &out,
	}
	require.NoError(cmd.Execute(nil))

	output = out.String()
	require.Contains(output, "ERROR: usage: incomplete statement at end of script\n")
	require.Contains(output, ` ==> "SHOW DATABASES;"`)
	require.Contains(output, " other ")
}

func TestShellExecuteErrors(t *testing.T) {
	require := require.New(t)

	dir, cleanup := setupTempDir(t)
	defer cleanup()

	err := (&Shell{File: dir, DataDir: dir}).Execute(nil)
	require.True(ErrNotRegularFile.Is(err))

	err = (&Shell{DataDir: dir}).Execute([]string{"extra"})
	require.True(ErrUnexpectedArguments.Is(err))

	err = (&Shell{DataDir: dir, LogLevel: "loud"}).Execute(nil)
	require.Error(err)
}
