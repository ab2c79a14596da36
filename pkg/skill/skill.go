// Package skill defines the skill entry data model and the SKILL.md file
// format. A skill is a directory containing a SKILL.md file with YAML
// frontmatter describing the skill's purpose, followed by markdown
// instructions, plus optional scripts/, references/ and assets/
// subdirectories.
package skill

import (
	"sort"
	"strings"
)

// FileName is the required entry file inside every skill directory.
const FileName = "SKILL.md"

// Optional subdirectories of a skill bundle.
const (
	ScriptsDir    = "scripts"    // executable helper scripts
	ReferencesDir = "references" // supplementary docs loaded on demand
	AssetsDir     = "assets"     // static non-executable assets
)

// Skill represents a parsed skill entry
type Skill struct {
	Name          string            // Unique slug from frontmatter
	Description   string            // Used for display and keyword matching
	License       string            // Optional license tag
	Compatibility string            // Optional compatibility note
	Metadata      map[string]string // Optional free-form metadata
	Directory     string            // Full path to the skill directory
	Path          string            // Full path to the SKILL.md file
	Content       string            // Markdown body without frontmatter
}

// Priority returns the declared priority from metadata.impact, defaulting
// to PriorityMedium.
func (s *Skill) Priority() Priority {
	return ParsePriority(s.Metadata["impact"])
}

// Category returns the topical category from metadata, if declared.
// Grouping carries no runtime semantics beyond display.
func (s *Skill) Category() string {
	return s.Metadata["category"]
}

// Keywords returns the comma-separated trigger keywords from metadata,
// lowercased and trimmed.
func (s *Skill) Keywords() []string {
	raw := s.Metadata["keywords"]
	if raw == "" {
		return nil
	}

	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Frontmatter returns the YAML frontmatter mapping for this skill.
func (s *Skill) Frontmatter() Frontmatter {
	return Frontmatter{
		Name:          s.Name,
		Description:   s.Description,
		License:       s.License,
		Compatibility: s.Compatibility,
		Metadata:      s.Metadata,
	}
}

// Priority is the declared impact ranking used to break ties when multiple
// entries are textually plausible matches. Lower values rank first.
type Priority int

// Priorities in rank order.
const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// ParsePriority parses a priority label. Unrecognized or empty labels map
// to PriorityMedium.
func ParsePriority(label string) Priority {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// String returns the priority label.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "medium"
	}
}

// SortedNames returns the names of the given skills in lexical order.
func SortedNames(skills map[string]*Skill) []string {
	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
