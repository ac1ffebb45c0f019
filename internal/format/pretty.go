package format

import (
	"database/sql"
	"io"

	"github.com/olekukonko/tablewriter"
)

// PrettyFormat draws boxed tables.
type PrettyFormat struct {
	tw      *tablewriter.Table
	style   Style
	columns int
	rows    int
}

// NewPrettyFormat creates a PrettyFormat writing to w.
func NewPrettyFormat(w io.Writer, style Style) *PrettyFormat {
	return &PrettyFormat{
		tw:    tablewriter.NewWriter(w),
		style: style,
	}
}

// WriteHeader implements the Format interface.
func (pf *PrettyFormat) WriteHeader(headers []string) error {
	pf.columns = len(headers)
	pf.tw.SetHeader(headers)

	return nil
}

// Write implements the Format interface.
func (pf *PrettyFormat) Write(row []sql.NullString) error {
	if len(row) != pf.columns {
		return ErrRowShape.New(pf.rows, len(row), pf.columns)
	}
	pf.rows++

	rowStrings := make([]string, len(row))
	for i, v := range row {
		if !v.Valid {
			rowStrings[i] = pf.style.nullMarker()
			continue
		}
		rowStrings[i] = v.String
	}
	pf.tw.Append(rowStrings)

	return nil
}

// Close implements the Format interface.
func (pf *PrettyFormat) Close() error {
	pf.tw.Render()

	return nil
}
