package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := lastNonEmptyLine(buf.String())
	require.NotEmpty(t, line, "no output captured")
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload), line)
	return payload
}

func TestLogger_ErrorCarriesStackAndService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "gd-service")
	log.Error().Stack().Err(errors.New("boom")).Msg("synthesis failed")

	payload := decodeLast(t, &buf)
	assert.Equal(t, "gd-service", payload["service"])
	assert.Equal(t, "error", payload["level"])
	assert.Contains(t, payload, "stack")
	assert.Contains(t, payload, "time")
}

func TestLogger_KeepsExistingPkgErrorsStack(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "gd-service")
	log.Warn().Stack().Err(pkgerrors.New("turn lost")).Msg("hand-off")

	payload := decodeLast(t, &buf)
	assert.Equal(t, "warn", payload["level"])
	assert.Equal(t, "turn lost", payload["error"])
	assert.Contains(t, payload, "stack")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
