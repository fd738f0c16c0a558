package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New().Format("json").ToWriter(buf).Make()
	require.NoError(t, err)

	l.Logger.Info().Str("table", "recipes").Msg("hello")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "recipes", entry["table"])
	assert.Contains(t, entry, "time")
}

func TestLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New().Level("warn").ToWriter(buf).Make()
	require.NoError(t, err)

	l.Logger.Info().Msg("quiet")
	assert.Zero(t, buf.Len())
	l.Logger.Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.log")
	l, err := New().ToPath(path).Make()
	require.NoError(t, err)
	l.Logger.Error().Msg("written")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestBadLevel(t *testing.T) {
	_, err := New().Level("chatty").Make()
	assert.Error(t, err)
}
