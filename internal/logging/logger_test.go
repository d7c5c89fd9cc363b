package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DisabledIsInert(t *testing.T) {
	t.Cleanup(Close)

	require.NoError(t, Initialize("", false))
	assert.False(t, Enabled())

	// Writes must not panic or create files.
	Intake("pipeline state=%s", "idle")
	Get(CategoryStore).Error("should go nowhere")
}

func TestInitialize_WritesCategoryFiles(t *testing.T) {
	t.Cleanup(Close)

	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true))
	require.True(t, Enabled())

	Triage("matched phrase=%q", "chest pain")
	AnalysisDebug("request model=%s", "gemini")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "triage.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `matched phrase="chest pain"`)

	data, err = os.ReadFile(filepath.Join(dir, "logs", "analysis.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG]")
}
