package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseLogFormat("json"))
	assert.Equal(t, FormatJSON, ParseLogFormat("JSON"))
	assert.Equal(t, FormatConsole, ParseLogFormat("console"))
	assert.Equal(t, FormatConsole, ParseLogFormat(""))
	assert.Equal(t, FormatConsole, ParseLogFormat("garbage"))
}

func TestJSONOutput(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var buf bytes.Buffer
	Setup(Config{
		Level:  "debug",
		Format: FormatJSON,
		Output: &buf,
	})

	Get().Info("hello", map[string]interface{}{"isbn": "9780345391803"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "9780345391803", entry["isbn"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var buf bytes.Buffer
	Setup(Config{
		Level:  "warn",
		Format: FormatJSON,
		Output: &buf,
	})

	log := Get()
	log.Debug("suppressed")
	log.Info("suppressed")
	log.Warn("visible")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "visible")
}

func TestForceSetupOverrides(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var first, second bytes.Buffer
	Setup(Config{Level: "info", Format: FormatJSON, Output: &first})
	// Setup is once-only; ForceSetup must win.
	Setup(Config{Level: "debug", Format: FormatJSON, Output: &second})
	Get().Info("one")
	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())

	ForceSetup(Config{Level: "debug", Format: FormatJSON, Output: &second})
	Get().Debug("two")
	assert.Contains(t, second.String(), "two")
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var buf bytes.Buffer
	Setup(Config{Level: "info", Format: FormatJSON, Output: &buf})

	log := Get()
	child := log.WithFields(map[string]interface{}{"component": "test"})
	require.NotNil(t, child)

	log.Info("parent")
	assert.NotContains(t, buf.String(), "component")

	buf.Reset()
	child.Info("child")
	assert.Contains(t, buf.String(), "component")
}
