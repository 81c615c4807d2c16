package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDLDefaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	assert.False(t, cfg.ParseHeaders)
	assert.Equal(t, uint(0), cfg.MaxFiles)
	assert.Empty(t, cfg.ExtensionFilter)
}

func TestParseKDLParseSection(t *testing.T) {
	content := `
parse {
    headers true
    follow_includes true
    resolve_external_symbols true
    max_include_depth 5
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.True(t, cfg.ParseHeaders)
	assert.True(t, cfg.FollowIncludes)
	assert.True(t, cfg.ResolveExternalSymbols)
	assert.Equal(t, uint(5), cfg.MaxIncludeDepth)
}

func TestParseKDLLimitsAndLog(t *testing.T) {
	content := `
limits {
    max_files 2000
}
log_level "debug"
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, uint(2000), cfg.MaxFiles)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseKDLExtensionsAndExclude(t *testing.T) {
	content := `
extensions ".c" ".h" ".py"
exclude "**/vendor/**" "**/node_modules/**"
respect_gitignore true
auto_exclude_build_artifacts true
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, []string{".c", ".h", ".py"}, cfg.ExtensionFilter)
	assert.Contains(t, cfg.ExcludeGlobs, "**/vendor/**")
	assert.Contains(t, cfg.ExcludeGlobs, "**/node_modules/**")
	assert.True(t, cfg.RespectGitignore)
	assert.True(t, cfg.AutoExcludeBuildArtifacts)
}

func TestParseKDLSystemIncludeRoots(t *testing.T) {
	content := `system_include_roots "/usr/include" "/usr/local/include"`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/include", "/usr/local/include"}, cfg.SystemIncludeRoots)
}

func TestParseKDLSuggestOnNotFound(t *testing.T) {
	cfg, err := parseKDL("suggest_on_not_found true")
	require.NoError(t, err)
	assert.True(t, cfg.SuggestOnNotFound)
}

func TestParseKDLWatchDebounce(t *testing.T) {
	content := `
watch {
    debounce_ms 500
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
}

func TestLoadKDLMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, false, cfg.ParseHeaders)
}
