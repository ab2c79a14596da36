package skill

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Parse parses SKILL.md content into a Skill. The frontmatter must be
// present and carry at least a name and a description; everything stricter
// is left to lint.
func Parse(content []byte) (*Skill, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	fm, err := DecodeMeta(metaData)
	if err != nil {
		return nil, err
	}

	if fm.Name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if fm.Description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &Skill{
		Name:          fm.Name,
		Description:   fm.Description,
		License:       fm.License,
		Compatibility: fm.Compatibility,
		Metadata:      fm.Metadata,
		Content:       extractBody(string(content)),
	}, nil
}

// ParseFile parses the SKILL.md file at path, recording the bundle
// directory and file path on the returned skill.
func ParseFile(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	s, err := Parse(content)
	if err != nil {
		return nil, err
	}

	s.Path = path
	s.Directory = filepath.Dir(path)
	return s, nil
}

// DecodeMeta decodes a frontmatter mapping produced by goldmark-meta.
// Weak typing tolerates scalar metadata values such as numbers and booleans.
func DecodeMeta(metaData map[string]interface{}) (Frontmatter, error) {
	var fm Frontmatter
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fm,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Frontmatter{}, errors.Wrap(err, "failed to create frontmatter decoder")
	}
	if err := decoder.Decode(metaData); err != nil {
		return Frontmatter{}, errors.Wrap(err, "invalid frontmatter")
	}
	return fm, nil
}

// extractBody removes the YAML frontmatter block and returns the body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}

	if end == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
}

// Render assembles SKILL.md content from frontmatter and a markdown body.
// Parsing rendered content yields a semantically equivalent frontmatter.
func Render(fm Frontmatter, body string) (string, error) {
	doc, err := fm.Encode()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(doc)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimLeft(body, "\n"))
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
