package lint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillworks/skillctl/pkg/skill"
)

func writeEntry(t *testing.T, root, dir, content string) string {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, skill.FileName), []byte(content), 0o644))
	return skillDir
}

func validEntry(name string) string {
	return `---
name: ` + name + `
description: Use when testing the linter.
---

# ` + name + `

Instructions.
`
}

func findingRules(findings []Finding) []string {
	var rules []string
	for _, f := range findings {
		rules = append(rules, f.Rule)
	}
	return rules
}

func TestRunCleanCorpus(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "skill-one", validEntry("skill-one"))
	writeEntry(t, root, "skill-two", validEntry("skill-two"))

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
	assert.NoError(t, result.Err())
}

func TestRunSingleSkillRoot(t *testing.T) {
	root := t.TempDir()
	dir := writeEntry(t, root, "solo-skill", validEntry("solo-skill"))

	result, err := New().Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
}

func TestMissingFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "no-meta", "# Just markdown\n")

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Errors(), 1)
	assert.Equal(t, RuleFrontmatter, result.Errors()[0].Rule)
	assert.Error(t, result.Err())
}

func TestNameViolations(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"uppercase", "My-Skill"},
		{"reserved term", "claude-helper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeEntry(t, root, "bad", `---
name: `+tt.entry+`
description: Fine description.
---

Body.
`)
			result, err := New().Run(context.Background(), root)
			require.NoError(t, err)
			assert.Contains(t, findingRules(result.Errors()), RuleName)
		})
	}
}

func TestDescriptionViolations(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "long-desc", `---
name: long-desc
description: `+strings.Repeat("x", skill.MaxDescriptionLength+1)+`
---

Body.
`)

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, findingRules(result.Errors()), RuleDescription)
}

func TestDuplicateNames(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "first-dir", validEntry("optimizing-streamlit-performance"))
	writeEntry(t, root, "second-dir", validEntry("optimizing-streamlit-performance"))

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)

	rules := findingRules(result.Errors())
	assert.Contains(t, rules, RuleDuplicate)
	assert.Error(t, result.Err())
}

func TestDirNameMismatchIsWarning(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "some-dir", validEntry("different-name"))

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)

	assert.Empty(t, result.Errors())
	require.Len(t, result.Warnings(), 1)
	assert.Equal(t, RuleDirName, result.Warnings()[0].Rule)
	assert.NoError(t, result.Err())
}

func TestSizeCeiling(t *testing.T) {
	root := t.TempDir()
	body := strings.Repeat("line\n", 30)
	writeEntry(t, root, "big-skill", validEntry("big-skill")+body)

	result, err := New(WithMaxLines(20)).Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Warnings(), 1)
	assert.Equal(t, RuleSize, result.Warnings()[0].Rule)
}

func TestBrokenLinks(t *testing.T) {
	root := t.TempDir()
	dir := writeEntry(t, root, "linky", `---
name: linky
description: Use when testing links.
---

# Links

[good](references/guide.md)
[missing](references/missing.md)
[external](https://example.com/page)
[anchor](#section)
[mail](mailto:dev@example.com)
![img](assets/missing.png)
[escape](../outside.md)
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, skill.ReferencesDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, skill.ReferencesDir, "guide.md"), []byte("# Guide\n"), 0o644))

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)

	var linkFindings []Finding
	for _, f := range result.Errors() {
		if f.Rule == RuleLink {
			linkFindings = append(linkFindings, f)
		}
	}
	require.Len(t, linkFindings, 3)

	messages := make([]string, 0, len(linkFindings))
	for _, f := range linkFindings {
		messages = append(messages, f.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "references/missing.md")
	assert.Contains(t, joined, "assets/missing.png")
	assert.Contains(t, joined, "escapes the skill directory")
}

func TestReferenceDocLinksChecked(t *testing.T) {
	root := t.TempDir()
	dir := writeEntry(t, root, "with-refs", validEntry("with-refs"))

	refsDir := filepath.Join(dir, skill.ReferencesDir)
	require.NoError(t, os.MkdirAll(refsDir, 0o755))
	refDoc := "# Deep Dive\n\n[dangling](references/gone.md)\n"
	require.NoError(t, os.WriteFile(filepath.Join(refsDir, "deep-dive.md"), []byte(refDoc), 0o644))

	result, err := New().Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Errors(), 1)
	assert.Equal(t, RuleLink, result.Errors()[0].Rule)
	assert.Contains(t, result.Errors()[0].Path, "deep-dive.md")
}

func TestRunMissingRoot(t *testing.T) {
	_, err := New().Run(context.Background(), "/non/existent/corpus")
	assert.Error(t, err)
}

func TestFindingString(t *testing.T) {
	f := Finding{Path: "a/SKILL.md", Rule: RuleName, Severity: SeverityError, Message: "bad name"}
	assert.Equal(t, "error: [name] a/SKILL.md: bad name", f.String())
}
