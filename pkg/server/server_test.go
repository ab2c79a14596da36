package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/skill"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "optimizing-streamlit-performance",
		"Use when apps are slow, reruns take too long, or caching is misconfigured.",
		"impact: critical\n  keywords: slow, rerun, cache")
	writeSkill(t, tmpDir, "theming-basics",
		"Use when customizing colors or fonts.", "impact: low")

	reg, err := registry.New(registry.WithSkillDirs(tmpDir))
	require.NoError(t, err)

	srv, err := New(&Config{Host: "localhost", Port: 8080}, reg)
	require.NoError(t, err)
	return srv, tmpDir
}

func writeSkill(t *testing.T, root, name, description, metadata string) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `---
name: ` + name + `
description: ` + description + `
metadata:
  ` + metadata + `
---

# ` + name + `

Instructions.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, skill.FileName), []byte(content), 0o644))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Host: "localhost", Port: 8080}, false},
		{"empty host", Config{Port: 8080}, true},
		{"port zero", Config{Host: "localhost"}, true},
		{"port too high", Config{Host: "localhost", Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListSkills(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/skills", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var summaries []SkillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "optimizing-streamlit-performance", summaries[0].Name)
	assert.Equal(t, "critical", summaries[0].Priority)
	assert.Equal(t, "theming-basics", summaries[1].Name)
}

func TestGetSkill(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("existing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/skills/theming-basics", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var detail SkillDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "theming-basics", detail.Name)
		assert.Contains(t, detail.Content, "# theming-basics")
		assert.NotEmpty(t, detail.Directory)
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/skills/unknown", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMatch(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("ranked results", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/match?q=my+app+is+slow+and+reruns+too+much", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var matches []MatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
		require.NotEmpty(t, matches)
		assert.Equal(t, "optimizing-streamlit-performance", matches[0].Name)
		assert.Positive(t, matches[0].Score)
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/match?q=kubernetes", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("missing query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/match", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCacheInvalidation(t *testing.T) {
	srv, tmpDir := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/skills", nil))
	var before []SkillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	require.Len(t, before, 2)

	// New skill appears only after the cache is invalidated
	writeSkill(t, tmpDir, "layout-columns", "Use when arranging widgets side by side.", "impact: medium")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/skills", nil))
	var cached []SkillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Len(t, cached, 2)

	srv.invalidate()

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/skills", nil))
	var after []SkillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Len(t, after, 3)
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/skills", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestInvalidConfig(t *testing.T) {
	reg, err := registry.New(registry.WithSkillDirs(t.TempDir()))
	require.NoError(t, err)

	_, err = New(&Config{Host: "", Port: 8080}, reg)
	assert.Error(t, err)
}

func TestWriteJSONLogsWithRequestContext(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	ctx := logger.WithLogger(context.Background(), logrus.NewEntry(l).WithField("request_id", "abc123"))

	// a channel cannot be JSON-encoded, forcing the error path
	writeJSON(ctx, httptest.NewRecorder(), http.StatusOK, make(chan int))

	assert.Contains(t, buf.String(), "request_id=abc123")
	assert.Contains(t, buf.String(), "Failed to encode response")
}
