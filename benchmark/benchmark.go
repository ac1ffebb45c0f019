package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/src-d/cqlish"
	"github.com/src-d/cqlish/internal/embedded"
	"github.com/src-d/cqlish/internal/format"
)

const rowsEnv = "CQLISH_BENCHMARK_ROWS"

var schema = []string{
	"CREATE DATABASE benchmark",
	"USE benchmark",
	`CREATE TABLE events (
		id INT PRIMARY KEY,
		kind VARCHAR(16),
		payload TEXT,
		score DOUBLE
	)`,
}

var suite = benchmarks{
	{
		"Count events",
		`SELECT COUNT(*) AS event_count FROM events`,
	},
	{
		"Events by kind",
		`
		SELECT kind, COUNT(*) AS n, AVG(score) AS avg_score
		FROM events
		GROUP BY kind
		ORDER BY n DESC`,
	},
	{
		"Top 100 events by score",
		`
		SELECT id, kind, score
		FROM events
		ORDER BY score DESC
		LIMIT 100`,
	},
	{
		"Events without payload",
		`SELECT id, kind FROM events WHERE payload IS NULL`,
	},
	{
		"Full scan",
		`SELECT * FROM events`,
	},
}

func main() {
	rows := 10000
	if v := os.Getenv(rowsEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fatal("invalid %s: %s", rowsEnv, err)
		}
		rows = n
	}

	dir, err := ioutil.TempDir("", "cqlish-benchmark")
	if err != nil {
		fatal("unable to create data directory: %s", err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	srv, err := embedded.Start(ctx, embedded.Options{DataDir: dir})
	if err != nil {
		fatal("unable to start server: %s", err)
	}
	defer srv.Close()

	sess, err := cqlish.Connect(ctx, srv.DSN(""))
	if err != nil {
		fatal("unable to connect: %s", err)
	}
	defer sess.Close()

	info("[SETUP] loading %d rows", rows)
	if err := load(ctx, sess, rows); err != nil {
		fatal("unable to load dataset: %s", err)
	}

	suite.run(ctx, sess)
}

func load(ctx context.Context, sess *cqlish.Session, rows int) error {
	for _, stmt := range schema {
		if _, err := sess.Execute(ctx, stmt); err != nil {
			return err
		}
	}

	kinds := []string{"click", "view", "purchase", "signup"}
	const batch = 500
	for start := 0; start < rows; start += batch {
		var values []string
		for i := start; i < start+batch && i < rows; i++ {
			payload := "NULL"
			if i%7 != 0 {
				payload = fmt.Sprintf("'payload %d'", i)
			}
			values = append(values, fmt.Sprintf("(%d, '%s', %s, %d.%d)",
				i, kinds[i%len(kinds)], payload, i%97, i%10))
		}

		stmt := "INSERT INTO events VALUES " + strings.Join(values, ", ")
		if _, err := sess.Execute(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

type benchmark struct {
	name  string
	query string
}

func (b benchmark) run(ctx context.Context, sess *cqlish.Session) error {
	info("[RUN] %s", b.name)
	info(b.query)
	start := time.Now()

	rs, err := sess.Execute(ctx, b.query)
	if err != nil {
		return err
	}
	queried := time.Since(start)

	out, err := format.Render(rs.ColumnNames(), rs.Rows, format.DefaultStyle)
	if err != nil {
		return err
	}

	ok("[PASSED] returned %d row(s), %d bytes rendered (query %v, render %v)",
		len(rs.Rows), len(out), queried, time.Since(start)-queried)
	return nil
}

type benchmarks []benchmark

func (bm benchmarks) run(ctx context.Context, sess *cqlish.Session) {
	var failed int

	start := time.Now()
	for _, b := range bm {
		start := time.Now()
		if err := b.run(ctx, sess); err != nil {
			failed++
			fail("[FAILED] reason: %s (%s)", err, time.Since(start))
		}
	}

	passed := len(bm) - failed

	info(
		"[SUMMARY] %d out of %d tests passed (%v)",
		passed, len(bm), time.Since(start),
	)

	if failed > 0 {
		fatal("[FAILED] finished with errors")
	} else {
		ok("[PASSED] finished without errors")
	}
}

func info(msg string, args ...interface{}) {
	fmt.Printf(msg+"\n", args...)
}

func fail(msg string, args ...interface{}) {
	color.Red(msg+"\n", args...)
}

func ok(msg string, args ...interface{}) {
	color.Green(msg+"\n", args...)
}

func fatal(msg string, args ...interface{}) {
	fail(msg, args...)
	os.Exit(1)
}
