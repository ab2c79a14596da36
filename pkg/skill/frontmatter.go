package skill

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// MaxNameLength is the longest allowed skill name.
	MaxNameLength = 64
	// MaxDescriptionLength is the longest allowed skill description.
	MaxDescriptionLength = 1024
)

var nameRE = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// reservedTerms must not appear in skill names. They are vendor terms owned
// by the agent runtimes that consume the registry.
var reservedTerms = []string{"anthropic", "claude"}

// Frontmatter is the YAML header of a SKILL.md file.
type Frontmatter struct {
	Name          string            `yaml:"name" mapstructure:"name"`
	Description   string            `yaml:"description" mapstructure:"description"`
	License       string            `yaml:"license,omitempty" mapstructure:"license"`
	Compatibility string            `yaml:"compatibility,omitempty" mapstructure:"compatibility"`
	Metadata      map[string]string `yaml:"metadata,omitempty" mapstructure:"metadata"`
}

// Encode serializes the frontmatter as a YAML document without delimiters.
func (f Frontmatter) Encode() (string, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal frontmatter")
	}
	return string(out), nil
}

// DecodeFrontmatter parses a YAML document into a Frontmatter.
// Encode followed by DecodeFrontmatter is lossless.
func DecodeFrontmatter(doc string) (Frontmatter, error) {
	var f Frontmatter
	if err := yaml.Unmarshal([]byte(doc), &f); err != nil {
		return Frontmatter{}, errors.Wrap(err, "failed to unmarshal frontmatter")
	}
	return f, nil
}

// Validate checks the frontmatter against the entry file format contract.
func (f Frontmatter) Validate() error {
	if err := ValidateName(f.Name); err != nil {
		return err
	}
	return ValidateDescription(f.Description)
}

// ValidateName checks that a skill name is a lowercase-hyphenated slug of at
// most MaxNameLength characters and contains no reserved vendor terms.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("skill name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errors.Errorf("skill name %q exceeds %d characters", name, MaxNameLength)
	}
	if !nameRE.MatchString(name) {
		return errors.Errorf("skill name %q must contain only lowercase letters, digits, and hyphens", name)
	}
	for _, term := range reservedTerms {
		if strings.Contains(name, term) {
			return errors.Errorf("skill name %q contains reserved term %q", name, term)
		}
	}
	return nil
}

// ValidateDescription checks that a description is non-empty and within
// MaxDescriptionLength characters.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return errors.New("skill description is required")
	}
	// Rune count, not byte count: the limit is phrased in characters and
	// descriptions may contain multibyte text
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return errors.Errorf("skill description exceeds %d characters", MaxDescriptionLength)
	}
	return nil
}
