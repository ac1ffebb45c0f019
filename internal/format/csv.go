package format

import (
	"database/sql"
	"encoding/csv"
	"io"
)

// CsvFormat writes RFC 4180 records. Nulls are written as empty fields.
type CsvFormat struct {
	cw      *csv.Writer
	columns int
	rows    int
}

// NewCsvFormat creates a CsvFormat writing to w.
func NewCsvFormat(w io.Writer) *CsvFormat {
	return &CsvFormat{
		cw: csv.NewWriter(w),
	}
}

// WriteHeader implements the Format interface.
func (cf *CsvFormat) WriteHeader(headers []string) error {
	cf.columns = len(headers)
	return cf.cw.Write(headers)
}

// Write implements the Format interface.
func (cf *CsvFormat) Write(row []sql.NullString) error {
	if len(row) != cf.columns {
		return ErrRowShape.New(cf.rows, len(row), cf.columns)
	}
	cf.rows++

	rowStrings := make([]string, len(row))
	for i, v := range row {
		rowStrings[i] = v.String
	}

	return cf.cw.Write(rowStrings)
}

// Close implements the Format interface.
func (cf *CsvFormat) Close() error {
	cf.cw.Flush()

	return cf.cw.Error()
}
