package format

import (
	"database/sql"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrRowShape is returned when a row does not have one cell per column.
var ErrRowShape = errors.NewKind("row %d has %d cells, expected %d")

// Style is the static configuration of the table renderer.
type Style struct {
	// NullMarker is printed in place of null cells.
	NullMarker string
	// Color enables ANSI colors for headers and null markers.
	Color bool
}

// DefaultStyle renders nulls as "null" without colors.
var DefaultStyle = Style{NullMarker: "null"}

func (s Style) nullMarker() string {
	if s.NullMarker == "" {
		return DefaultStyle.NullMarker
	}
	return s.NullMarker
}

// Render formats columns and rows as a right-justified table with a dashed
// separator under the header.
func Render(columns []string, rows [][]sql.NullString, style Style) (string, error) {
	if err := checkShape(columns, rows); err != nil {
		return "", err
	}

	marker := style.nullMarker()
	widths := ColumnWidths(columns, rows, marker)

	header := color.New(color.FgCyan)
	null := color.New(color.FgRed)
	if style.Color {
		header.EnableColor()
		null.EnableColor()
	} else {
		header.DisableColor()
		null.DisableColor()
	}

	var b strings.Builder
	writeLine(&b, widths, func(i int) string {
		return header.Sprint(fit(columns[i], widths[i]))
	})

	for i, w := range widths {
		if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strings.Repeat("-", w+2))
	}
	b.WriteByte('\n')

	for _, row := range rows {
		writeLine(&b, widths, func(i int) string {
			if !row[i].Valid {
				return null.Sprint(fit(marker, widths[i]))
			}
			return fit(row[i].String, widths[i])
		})
	}

	return b.String(), nil
}

// ColumnWidths returns, for every column, the widest of its header and its
// cells. Null cells count as the width of nullMarker.
func ColumnWidths(columns []string, rows [][]sql.NullString, nullMarker string) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = runewidth.StringWidth(c)
	}

	markerWidth := runewidth.StringWidth(nullMarker)
	for _, row := range rows {
		for i := range widths {
			if i >= len(row) {
				break
			}

			w := markerWidth
			if row[i].Valid {
				w = runewidth.StringWidth(row[i].String)
			}

			if w > widths[i] {
				widths[i] = w
			}
		}
	}

	return widths
}

func checkShape(columns []string, rows [][]sql.NullString) error {
	for i, row := range rows {
		if len(row) != len(columns) {
			return ErrRowShape.New(i, len(row), len(columns))
		}
	}
	return nil
}

func writeLine(b *strings.Builder, widths []int, cell func(int) string) {
	for i := range widths {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteByte(' ')
		b.WriteString(cell(i))
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
}

// fit truncates or left-pads s to exactly width display cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return runewidth.FillLeft(s, width)
}

// TableFormat buffers a whole result set and prints it with Render on Close.
type TableFormat struct {
	w       io.Writer
	style   Style
	headers []string
	rows    [][]sql.NullString
}

// NewTableFormat creates a TableFormat writing to w.
func NewTableFormat(w io.Writer, style Style) *TableFormat {
	return &TableFormat{w: w, style: style}
}

// WriteHeader implements the Format interface.
func (tf *TableFormat) WriteHeader(headers []string) error {
	tf.headers = headers
	return nil
}

// Write implements the Format interface.
func (tf *TableFormat) Write(row []sql.NullString) error {
	tf.rows = append(tf.rows, row)
	return nil
}

// Close implements the Format interface.
func (tf *TableFormat) Close() error {
	out, err := Render(tf.headers, tf.rows, tf.style)
	if err != nil {
		return err
	}

	_, err = io.WriteString(tf.w, out)
	return err
}
