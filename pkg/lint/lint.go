// Package lint validates a corpus of skill directories against the entry
// file format: well-formed frontmatter, name and description constraints,
// unique names, resolvable relative links, and the size ceiling consumers
// budget against. Violations are authoring-time findings, not runtime
// failures; an error-severity finding blocks the change from being
// accepted.
package lint

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/skill"
)

// DefaultMaxLines is the recommended ceiling for a SKILL.md file so that
// consumers can budget how much text to ingest.
const DefaultMaxLines = 500

// referencesPattern matches the supplementary documents that get the same
// link checks as the entry file.
const referencesPattern = skill.ReferencesDir + "/**/*.md"

// Severity classifies a finding
type Severity string

// Finding severities. Errors block acceptance; warnings do not.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers for findings.
const (
	RuleFrontmatter = "frontmatter"
	RuleName        = "name"
	RuleDescription = "description"
	RuleDuplicate   = "duplicate-name"
	RuleDirName     = "dir-name"
	RuleLink        = "broken-link"
	RuleSize        = "size"
)

// Finding is a single lint violation
type Finding struct {
	Path     string
	Rule     string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: [%s] %s: %s", f.Severity, f.Rule, f.Path, f.Message)
}

// Result collects the findings of a lint run
type Result struct {
	Findings []Finding
}

func (r *Result) add(path, rule string, severity Severity, format string, args ...interface{}) {
	r.Findings = append(r.Findings, Finding{
		Path:     path,
		Rule:     rule,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors returns the error-severity findings
func (r *Result) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the warning-severity findings
func (r *Result) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Err aggregates the error-severity findings into a single error, or nil
// when the corpus is clean.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, f := range r.Errors() {
		merr = multierror.Append(merr, errors.New(f.String()))
	}
	return merr.ErrorOrNil()
}

// Linter validates skill directories
type Linter struct {
	maxLines int
}

// Option configures a Linter
type Option func(*Linter)

// WithMaxLines overrides the SKILL.md size ceiling
func WithMaxLines(n int) Option {
	return func(l *Linter) {
		l.maxLines = n
	}
}

// New creates a Linter
func New(opts ...Option) *Linter {
	l := &Linter{maxLines: DefaultMaxLines}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run lints every skill directory under root. When root itself contains a
// SKILL.md it is linted as a single skill. Walking problems are errors;
// content violations are findings.
func (l *Linter) Run(ctx context.Context, root string) (*Result, error) {
	dirs, err := findSkillDirs(root)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("skills", len(dirs)).Debug("Linting skill directories")

	result := &Result{}
	seen := make(map[string]string) // name -> first directory

	for _, dir := range dirs {
		name := l.lintSkill(result, dir)
		if name == "" {
			continue
		}
		if first, dup := seen[name]; dup {
			result.add(filepath.Join(dir, skill.FileName), RuleDuplicate, SeverityError,
				"skill name %q already used by %s", name, first)
			continue
		}
		seen[name] = dir
	}

	return result, nil
}

// findSkillDirs returns the directories under root holding a SKILL.md file,
// in a stable order.
func findSkillDirs(root string) ([]string, error) {
	if _, err := os.Stat(filepath.Join(root, skill.FileName)); err == nil {
		return []string{root}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read corpus directory %s", root)
	}

	var dirs []string
	for _, entry := range entries {
		entryPath := filepath.Join(root, entry.Name())
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(entryPath, skill.FileName)); err == nil {
			dirs = append(dirs, entryPath)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// lintSkill lints one skill directory and returns the skill name, or ""
// when the entry file is unusable.
func (l *Linter) lintSkill(result *Result, dir string) string {
	path := filepath.Join(dir, skill.FileName)

	content, err := os.ReadFile(path)
	if err != nil {
		result.add(path, RuleFrontmatter, SeverityError, "failed to read entry file: %v", err)
		return ""
	}

	fm, ok := parseFrontmatter(result, path, content)
	if !ok {
		return ""
	}

	if err := skill.ValidateName(fm.Name); err != nil {
		result.add(path, RuleName, SeverityError, "%v", err)
	}
	if err := skill.ValidateDescription(fm.Description); err != nil {
		result.add(path, RuleDescription, SeverityError, "%v", err)
	}

	if fm.Name != "" && fm.Name != filepath.Base(dir) {
		result.add(path, RuleDirName, SeverityWarning,
			"directory %q does not match skill name %q", filepath.Base(dir), fm.Name)
	}

	if lines := strings.Count(string(content), "\n") + 1; lines > l.maxLines {
		result.add(path, RuleSize, SeverityWarning,
			"entry file has %d lines, recommended ceiling is %d", lines, l.maxLines)
	}

	l.lintLinks(result, dir, path, content)

	refs, err := doublestar.Glob(os.DirFS(dir), referencesPattern)
	if err == nil {
		for _, ref := range refs {
			refPath := filepath.Join(dir, ref)
			refContent, err := os.ReadFile(refPath)
			if err != nil {
				continue
			}
			l.lintLinks(result, dir, refPath, refContent)
		}
	}

	return fm.Name
}

// parseFrontmatter extracts and decodes the YAML header, recording findings
// for malformed or missing frontmatter.
func parseFrontmatter(result *Result, path string, content []byte) (skill.Frontmatter, bool) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	pctx := parser.NewContext()
	if err := md.Convert(content, &nopWriter{}, parser.WithContext(pctx)); err != nil {
		result.add(path, RuleFrontmatter, SeverityError, "failed to parse markdown: %v", err)
		return skill.Frontmatter{}, false
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		result.add(path, RuleFrontmatter, SeverityError, "malformed frontmatter: %v", err)
		return skill.Frontmatter{}, false
	}
	if metaData == nil {
		result.add(path, RuleFrontmatter, SeverityError, "missing frontmatter")
		return skill.Frontmatter{}, false
	}

	fm, err := skill.DecodeMeta(metaData)
	if err != nil {
		result.add(path, RuleFrontmatter, SeverityError, "%v", err)
		return skill.Frontmatter{}, false
	}
	return fm, true
}

// lintLinks walks the markdown AST and checks that every relative link or
// image destination resolves inside the skill directory.
func (l *Linter) lintLinks(result *Result, dir, path string, content []byte) {
	src := []byte(extractLintBody(string(content)))

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var dest string
		switch v := n.(type) {
		case *ast.Link:
			dest = string(v.Destination)
		case *ast.Image:
			dest = string(v.Destination)
		default:
			return ast.WalkContinue, nil
		}

		if target, relative := relativeTarget(dest); relative {
			resolved := filepath.Join(dir, filepath.FromSlash(target))
			rel, err := filepath.Rel(dir, resolved)
			if err != nil || strings.HasPrefix(rel, "..") {
				result.add(path, RuleLink, SeverityError, "link %q escapes the skill directory", dest)
			} else if _, err := os.Stat(resolved); err != nil {
				result.add(path, RuleLink, SeverityError, "link target %q does not exist", dest)
			}
		}

		return ast.WalkContinue, nil
	})
}

// relativeTarget reports whether dest is a same-repository relative path,
// returning the target with any fragment or query stripped.
func relativeTarget(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	if u, err := url.Parse(dest); err == nil && u.Scheme != "" {
		return "", false // external URL (https, mailto, data, ...)
	}

	target := dest
	if idx := strings.IndexAny(target, "#?"); idx != -1 {
		target = target[:idx]
	}
	if target == "" {
		return "", false
	}
	return target, true
}

// extractLintBody drops the frontmatter block so delimiter lines are not
// parsed as markdown
func extractLintBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return content
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
