package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_EmptyPathReturnsDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), policy)
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy("/nonexistent/policy.yaml")
	assert.Error(t, err)
}

func TestLoadPolicy_OverlaysOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
topics:
  - tai chi basics
max_channels: 3
approve_score: 80
approve_confidence: medium
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"tai chi basics"}, policy.Topics)
	assert.Equal(t, 3, policy.MaxChannels)
	assert.Equal(t, 80, policy.ApproveScore)
	assert.Equal(t, "medium", policy.ApproveConfidence)

	// Unset fields keep their defaults.
	defaults := DefaultPolicy()
	assert.Equal(t, defaults.MinDurationSeconds, policy.MinDurationSeconds)
	assert.Equal(t, defaults.AllowedLanguages, policy.AllowedLanguages)
	assert.Equal(t, defaults.EvaluationCallLimit, policy.EvaluationCallLimit)
}

func TestLoadPolicy_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topics: [unclosed"), 0644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}
