package logr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarning)
	defer func() {
		SetOutput(nil)
		SetLevel(LevelInfo)
	}()

	Debugf("should not appear")
	require.Empty(t, buf.String())

	Warnf("budget at %d%%", 90)
	assert.Contains(t, buf.String(), "[WARNING] budget at 90%")
}

func TestNilOutputDisablesLogging(t *testing.T) {
	SetOutput(nil)
	SetLevel(LevelDebug)
	defer SetOutput(nil)

	assert.NotPanics(t, func() { Errorf("boom") })
}

func TestComponentTagging(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer SetOutput(nil)

	Component("resolve", LevelInfo, "resolved %s", "foo")
	assert.True(t, strings.Contains(buf.String(), "[INFO:resolve]"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelWarning, ParseLevel("warn"))
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("garbage"))
}

func TestIsEnabled(t *testing.T) {
	SetLevel(LevelWarning)
	defer SetLevel(LevelInfo)
	assert.True(t, IsEnabled(LevelError))
	assert.False(t, IsEnabled(LevelDebug))
}
