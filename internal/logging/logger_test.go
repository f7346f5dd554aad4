package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &m), "line: %s", raw)
		lines = append(lines, m)
	}
	return lines
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "engine", FormatJSON, false)

	logger.Infof("computed %d entries", 3)
	logger.Debugf("hidden at info level")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "engine", lines[0]["component"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "computed 3 entries", lines[0]["message"])
	assert.Contains(t, lines[0], "time")
}

func TestNewLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "engine", FormatJSON, true)

	logger.Debugf("unrecognized pay period %q", "fortnightly")
	logger.Warnf("profile %s not found", "E-9")
	logger.Errorf("boom")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, `unrecognized pay period "fortnightly"`, lines[0]["message"])
	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, "error", lines[2]["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "payroll", FormatConsole, false)

	logger.Infof("run complete")

	out := buf.String()
	assert.Contains(t, out, "run complete")
	assert.Contains(t, out, "payroll")
	assert.Contains(t, out, "INF")
}

func TestStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "store", FormatJSON, false).With(String("backend", "sqlite"))

	logger.Info("profile saved", String("employee_id", "E-1"), Int("allowances", 2))
	logger.Error("load failed", errors.New("disk full"), String("path", "/tmp/x.db"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "sqlite", lines[0]["backend"])
	assert.Equal(t, "E-1", lines[0]["employee_id"])
	assert.EqualValues(t, 2, lines[0]["allowances"])
	assert.Equal(t, "disk full", lines[1]["error"])
	assert.Equal(t, "/tmp/x.db", lines[1]["path"])
}

func TestNewZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapter(zerolog.New(&buf))

	adapter.Infof("wrapped")
	assert.Contains(t, buf.String(), "wrapped")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{"", FormatConsole, false},
		{"console", FormatConsole, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
