package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestWriterLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Info("Beacon sent", "status", 204, "url", "http://example.com/b")
	require.NoError(t, l.Close())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "Beacon sent", entries[0]["message"])
	assert.EqualValues(t, 204, entries[0]["status"])
	assert.Equal(t, "http://example.com/b", entries[0]["url"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestWriterLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	scoped := l.WithField("page", "https://example.com/").
		WithFields(map[string]any{"engine": "static", "attempt": 1})
	scoped.Debug("Scanning")
	l.Warn("Unscoped")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://example.com/", entries[0]["page"])
	assert.Equal(t, "static", entries[0]["engine"])
	assert.EqualValues(t, 1, entries[0]["attempt"])
	assert.Equal(t, "DEBUG", entries[0]["level"])

	assert.NotContains(t, entries[1], "page")
	assert.Equal(t, "WARN", entries[1]["level"])
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("ignored", "k", "v")
	assert.NoError(t, l.Close())
	assert.Empty(t, l.Path())
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"scan", "scan"},
		{"", "run"},
		{"https://a.b/c", "https___a_b_c"},
		{string(bytes.Repeat([]byte("a"), 80)), string(bytes.Repeat([]byte("a"), 60))},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in))
	}
}
