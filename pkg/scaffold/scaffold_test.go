package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillworks/skillctl/pkg/skill"
)

func TestCreate(t *testing.T) {
	parent := t.TempDir()

	dir, err := Create(parent, Options{
		Name:        "optimizing-streamlit-performance",
		Description: "Use when apps are slow or rerun too often.",
		License:     "Apache-2.0",
		Impact:      "critical",
		Category:    "performance",
		Keywords:    "slow, rerun, cache",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "optimizing-streamlit-performance"), dir)

	s, err := skill.ParseFile(filepath.Join(dir, skill.FileName))
	require.NoError(t, err)
	assert.Equal(t, "optimizing-streamlit-performance", s.Name)
	assert.Equal(t, "Use when apps are slow or rerun too often.", s.Description)
	assert.Equal(t, "Apache-2.0", s.License)
	assert.Equal(t, skill.PriorityCritical, s.Priority())
	assert.Equal(t, "performance", s.Category())
	assert.Contains(t, s.Content, "# Optimizing Streamlit Performance")
	assert.Contains(t, s.Content, "Use when apps are slow or rerun too often.")
}

func TestCreateDefaultDescription(t *testing.T) {
	dir, err := Create(t.TempDir(), Options{Name: "theming-basics"})
	require.NoError(t, err)

	s, err := skill.ParseFile(filepath.Join(dir, skill.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Use when working on theming basics tasks.", s.Description)
	assert.Nil(t, s.Metadata)
}

func TestCreateOptionalDirs(t *testing.T) {
	dir, err := Create(t.TempDir(), Options{
		Name:           "with-extras",
		Description:    "Use when testing scaffolding.",
		WithScripts:    true,
		WithReferences: true,
		WithAssets:     true,
	})
	require.NoError(t, err)

	for _, sub := range []string{skill.ScriptsDir, skill.ReferencesDir, skill.AssetsDir} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestCreateRejectsInvalidName(t *testing.T) {
	_, err := Create(t.TempDir(), Options{Name: "Bad Name"})
	assert.Error(t, err)

	_, err = Create(t.TempDir(), Options{Name: "claude-things"})
	assert.Error(t, err)
}

func TestCreateRejectsExistingDirectory(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "taken"), 0o755))

	_, err := Create(parent, Options{Name: "taken", Description: "Use when testing."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		slug     string
		expected string
	}{
		{"solarized-light", "Solarized Light"},
		{"github-dark", "GitHub Dark"},
		{"sql-queries", "SQL Queries"},
		{"theming", "Theming"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TitleFromSlug(tt.slug), "slug %q", tt.slug)
	}
}
