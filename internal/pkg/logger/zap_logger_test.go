package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.log")
	lines := []string{
		`{"level":"INFO","timestamp":"2026-01-01T00:00:00Z","message":"edit applied","module":"editor","details":{"document_id":"d1"}}`,
		`not json`,
		`{"level":"WARN","timestamp":"2026-01-01T00:00:01Z","message":"edit rejected","module":"editor","details":{"document_id":"d2"}}`,
		`{"level":"INFO","timestamp":"2026-01-01T00:00:02Z","message":"edit applied","module":"editor","details":{"document_id":"d1"}}`,
		`{"level":"INFO","timestamp":"2026-01-01T00:00:03Z","message":"started","module":"server"}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	all, err := ReadLogs(path, LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "started", all[0].Message)
	assert.NotEmpty(t, all[0].Id)

	byDoc, err := ReadLogs(path, LogFilter{DocumentId: "d1"})
	require.NoError(t, err)
	require.Len(t, byDoc, 2)
	assert.Equal(t, "2026-01-01T00:00:02Z", byDoc[0].Timestamp)

	warn, err := ReadLogs(path, LogFilter{Level: "warn", Module: "editor"})
	require.NoError(t, err)
	require.Len(t, warn, 1)
	assert.Equal(t, "edit rejected", warn[0].Message)

	page, err := ReadLogs(path, LogFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	empty, err := ReadLogs(path, LogFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadLogs_MissingFile(t *testing.T) {
	entries, err := ReadLogs(filepath.Join(t.TempDir(), "none.log"), LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIsolatedLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isolated.log")
	l := NewIsolatedLogger(path)

	l.Info("editor", "edit applied", map[string]interface{}{"document_id": "d9"})
	l.Debug("editor", "dropped below info", nil)
	_ = l.Sync()

	entries, err := l.GetLogs(LogFilter{DocumentId: "d9"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "editor", entries[0].Module)
}
