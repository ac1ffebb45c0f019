package format

import (
	"database/sql"
	"io"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Format writes a result set, header first and then one row at a time.
type Format interface {
	WriteHeader(headers []string) error
	Write(row []sql.NullString) error
	Close() error
}

// ErrFormatNotSupported is returned when the requested format does not exist.
var ErrFormatNotSupported = errors.NewKind("format not supported: %v")

// IDs are the identifiers accepted by NewFormat.
var IDs = []string{"table", "pretty", "csv", "json"}

// NewFormat returns the Format identified by id writing to w.
func NewFormat(id string, w io.Writer, style Style) (Format, error) {
	switch id {
	case "table":
		return NewTableFormat(w, style), nil
	case "pretty":
		return NewPrettyFormat(w, style), nil
	case "csv":
		return NewCsvFormat(w), nil
	case "json":
		return NewJsonFormat(w), nil
	default:
		return nil, ErrFormatNotSupported.New(id)
	}
}
