package iojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, map[string]string{"status": "extended"}))
	assert.JSONEq(t, `{"status":"extended"}`, buf.String())
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestWriteTo_Unmarshalable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTo(&buf, map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestMarshalError(t *testing.T) {
	got := MarshalError("session not found", map[string]any{"id": "9"})

	var e Error
	require.NoError(t, json.Unmarshal([]byte(got), &e))
	assert.Equal(t, "session not found", e.Message)
	assert.Equal(t, "9", e.Data["id"])
}

func TestFileReader_File(t *testing.T) {
	type comment struct {
		File string `json:"file"`
	}

	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"file":"main.py"}]`), 0o600))

	fr := &FileReader[[]comment]{path: path}
	got, err := fr.Read()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "main.py", got[0].File)
}

func TestFileReader_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, _ = w.WriteString(`{"a":1}`)
	_ = w.Close()
	defer func() { _ = r.Close() }()

	fr := &FileReader[map[string]int]{stdin: r}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, got["a"])
}
