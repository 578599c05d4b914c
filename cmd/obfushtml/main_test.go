package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-version"}))
	assert.Equal(t, 0, run([]string{"-h"}))
	assert.Equal(t, 1, run(nil))
	assert.Equal(t, 1, run([]string{"-q", filepath.Join(t.TempDir(), "missing.html"), "out.html"}))
}

func TestRunBadEnvironment(t *testing.T) {
	t.Setenv("OBFUSHTML_JOBS", "many")
	assert.Equal(t, 1, run([]string{"-version"}))
}

func TestRunWithoutInlineScripts(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.html")
	out := filepath.Join(dir, "out", "page.html")
	input := "<html><script src=\"app.js\"></script><script>\n</script></html>"
	require.NoError(t, os.WriteFile(in, []byte(input), 0644))

	assert.Equal(t, 0, run([]string{"-q", in, out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}
