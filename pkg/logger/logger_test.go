package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEnvironment(t *testing.T) {
	assert.Equal(t, Options{Level: "warn", Pretty: false}, ForEnvironment("production", "warn"))
	assert.True(t, ForEnvironment("development", "").Pretty)
}

func TestInit_SingletonJSON(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	log := Init(Options{Level: "info", Output: &buf, Service: "installtrack"})
	log.Info().Str("k", "v").Msg("hello")
	log.Debug().Msg("hidden")

	// Second call keeps the first configuration.
	Init(Options{Level: "trace", Output: &bytes.Buffer{}})
	got := Get()
	got.Info().Msg("again")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "installtrack", entry["service"])
	assert.Equal(t, "v", entry["k"])
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	assert.Panics(t, func() { Get() })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARNING "))
	assert.Equal(t, zerolog.TraceLevel, parseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestParseLevel_Disabled(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, parseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}
