package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: LevelDebug, Format: "json", Output: &buf})

	log.With(F("step", 3)).Info("step completed", F("agents", 10))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "step completed", entry["msg"])
	assert.Equal(t, float64(3), entry["step"])
	assert.Equal(t, float64(10), entry["agents"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: LevelWarn, Format: "text", Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestMultiLogger_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := NewMulti(
		New(Options{Level: LevelInfo, Output: &a}),
		New(Options{Level: LevelInfo, Output: &b}),
	)
	log.With(F("k", "v")).Error("failed")

	assert.True(t, strings.Contains(a.String(), "failed"))
	assert.True(t, strings.Contains(b.String(), "k=v"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, "WARN", LevelWarn.String())
}
