package format

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
)

// JsonFormat writes one JSON object per row, keyed by column name. Keys keep
// the column order of the result.
type JsonFormat struct {
	w    io.Writer
	keys [][]byte
	rows int
}

// NewJsonFormat creates a JsonFormat writing to w.
func NewJsonFormat(w io.Writer) *JsonFormat {
	return &JsonFormat{w: w}
}

// WriteHeader implements the Format interface.
func (jf *JsonFormat) WriteHeader(headers []string) error {
	jf.keys = make([][]byte, len(headers))
	for i, h := range headers {
		k, err := json.Marshal(h)
		if err != nil {
			return err
		}
		jf.keys[i] = k
	}

	return nil
}

// Write implements the Format interface.
func (jf *JsonFormat) Write(row []sql.NullString) error {
	if len(row) != len(jf.keys) {
		return ErrRowShape.New(jf.rows, len(row), len(jf.keys))
	}
	jf.rows++

	var b bytes.Buffer
	b.WriteByte('{')
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(jf.keys[i])
		b.WriteByte(':')

		if !cell.Valid {
			b.WriteString("null")
			continue
		}

		v, err := json.Marshal(cell.String)
		if err != nil {
			return err
		}
		b.Write(v)
	}
	b.WriteString("}\n")

	_, err := jf.w.Write(b.Bytes())
	return err
}

// Close implements the Format interface.
func (jf *JsonFormat) Close() error {
	return nil
}
