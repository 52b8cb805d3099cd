package debug_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/joinsql/internal/debug"
)

func TestConfigure(t *testing.T) {
	defer debug.Init(false)

	var buf bytes.Buffer
	debug.Configure(&buf, debug.FormatText, false)
	debug.Debug("hidden", "sql", "SELECT 1")
	assert.Empty(t, buf.String())
	assert.False(t, debug.Enabled())

	debug.Configure(&buf, debug.FormatText, true)
	debug.Debug("joining select", "sql", "SELECT 1")
	assert.Contains(t, buf.String(), `msg="joining select"`)
	assert.True(t, debug.Enabled())
}

func TestConfigureJSON(t *testing.T) {
	defer debug.Init(false)

	var buf bytes.Buffer
	debug.Configure(&buf, debug.FormatJSON, true)
	debug.With("statement", "abc").Info("executed", "rows", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "executed", record["msg"])
	assert.Equal(t, "abc", record["statement"])
	assert.Equal(t, float64(3), record["rows"])
}
