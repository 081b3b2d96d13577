package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLines(t *testing.T) {
	var out, console bytes.Buffer
	l, err := New(Options{Level: InfoLevel, Output: &out, Console: &console})
	require.NoError(t, err)

	l.WithTag("editor").Info("edit applied", Fields{"keys": 3}, Fields{"err": errors.New("boom")})
	l.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, InfoLevel, e.Level)
	assert.Equal(t, "editor", e.Tag)
	assert.Equal(t, "edit applied", e.Message)
	assert.EqualValues(t, 3, e.Fields["keys"])
	assert.Equal(t, "boom", e.Fields["err"])
	assert.Contains(t, console.String(), "[editor] edit applied")
}

func TestLevels(t *testing.T) {
	var out bytes.Buffer
	l, err := New(Options{Level: WarnLevel, Output: &out})
	require.NoError(t, err)
	l.Info("no")
	l.Warn("yes")
	l.Error("yes")
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
	assert.True(t, l.Enabled(ErrorLevel))
	assert.False(t, l.Enabled(DebugLevel))

	lvl, err := ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
	_, err = New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestFileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(Options{Dir: dir, File: "pixedit.log"})
	require.NoError(t, err)
	l.Error("disk full")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "pixedit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"disk full"`)
}

func TestDiscardAndNil(t *testing.T) {
	Discard().Error("dropped")
	var l *Logger
	l.Info("nil logger is silent")
	l.WithTag("x").Error("still silent")
	assert.NoError(t, l.Close())
}
