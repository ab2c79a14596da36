// Package scaffold creates new skill directories from an embedded starter
// template.
package scaffold

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/skillworks/skillctl/pkg/skill"
)

//go:embed templates/skill.md.tmpl
var bodyTemplate string

// titleOverrides fixes casing that word capitalization gets wrong
var titleOverrides = map[string]string{
	"api":    "API",
	"css":    "CSS",
	"github": "GitHub",
	"sql":    "SQL",
	"ui":     "UI",
	"url":    "URL",
}

// Options configures a new skill
type Options struct {
	Name           string
	Description    string
	License        string
	Impact         string
	Category       string
	Keywords       string
	WithScripts    bool
	WithReferences bool
	WithAssets     bool
}

// Validate checks the options against the entry file format
func (o *Options) Validate() error {
	if err := skill.ValidateName(o.Name); err != nil {
		return err
	}
	if o.Description == "" {
		o.Description = "Use when working on " + strings.ToLower(TitleFromSlug(o.Name)) + " tasks."
	}
	return skill.ValidateDescription(o.Description)
}

// Create scaffolds a skill directory under parentDir and returns its path.
// The directory must not already exist.
func Create(parentDir string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	dir := filepath.Join(parentDir, opts.Name)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Errorf("directory %s already exists", dir)
	}

	body, err := renderBody(opts)
	if err != nil {
		return "", err
	}

	metadata := map[string]string{}
	if opts.Impact != "" {
		metadata["impact"] = skill.ParsePriority(opts.Impact).String()
	}
	if opts.Category != "" {
		metadata["category"] = opts.Category
	}
	if opts.Keywords != "" {
		metadata["keywords"] = opts.Keywords
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	content, err := skill.Render(skill.Frontmatter{
		Name:        opts.Name,
		Description: opts.Description,
		License:     opts.License,
		Metadata:    metadata,
	}, body)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create skill directory")
	}
	if err := os.WriteFile(filepath.Join(dir, skill.FileName), []byte(content), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write entry file")
	}

	for _, sub := range optionalDirs(opts) {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", errors.Wrapf(err, "failed to create %s directory", sub)
		}
	}

	return dir, nil
}

func optionalDirs(opts Options) []string {
	var dirs []string
	if opts.WithScripts {
		dirs = append(dirs, skill.ScriptsDir)
	}
	if opts.WithReferences {
		dirs = append(dirs, skill.ReferencesDir)
	}
	if opts.WithAssets {
		dirs = append(dirs, skill.AssetsDir)
	}
	return dirs
}

func renderBody(opts Options) (string, error) {
	tmpl, err := template.New("skill").Parse(bodyTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse skill template")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Title":       TitleFromSlug(opts.Name),
		"Description": opts.Description,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to render skill template")
	}
	return buf.String(), nil
}

// TitleFromSlug derives a display title from a skill slug:
// "solarized-light" becomes "Solarized Light".
func TitleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if override, ok := titleOverrides[w]; ok {
			words[i] = override
			continue
		}
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
