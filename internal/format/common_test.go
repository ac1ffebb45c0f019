package format

import (
	"bytes"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFormat_InvalidId(t *testing.T) {
	require := require.New(t)

	f, err := NewFormat("INVALID", bytes.NewBuffer(nil), DefaultStyle)
	require.Nil(f)
	require.Error(err)
	require.True(ErrFormatNotSupported.Is(err))
}

func testNewFormat(id string, t *testing.T) {
	require := require.New(t)

	w := bytes.NewBuffer(nil)
	f, err := NewFormat(id, w, DefaultStyle)
	require.Nil(err)
	require.NotNil(f)
}

func testFormat(fs *formatSpec, writer *bytes.Buffer, t *testing.T) {
	require := require.New(t)

	err := fs.Format.WriteHeader(fs.Headers)
	require.Nil(err)
	for _, l := range fs.Lines {
		err := fs.Format.Write(l)
		require.Nil(err)
	}
	err = fs.Format.Close()
	require.Nil(err)

	require.Equal(fs.Result, writer.String())

	writer.Reset()
}

type formatSpec struct {
	Headers []string
	Lines   [][]sql.NullString
	Format  Format
	Result  string
}

func cells(values ...interface{}) []sql.NullString {
	row := make([]sql.NullString, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			row[i] = sql.NullString{String: s, Valid: true}
		}
	}
	return row
}

func TestFormatsRejectRowShape(t *testing.T) {
	for _, id := range IDs {
		t.Run(id, func(t *testing.T) {
			require := require.New(t)

			f, err := NewFormat(id, bytes.NewBuffer(nil), DefaultStyle)
			require.NoError(err)
			require.NoError(f.WriteHeader([]string{"a", "b"}))

			err = f.Write(cells("1", "2", "3"))
			if err == nil {
				// table buffers rows and validates when rendering
				err = f.Close()
			}
			require.Error(err)
			require.True(ErrRowShape.Is(err))
		})
	}
}
