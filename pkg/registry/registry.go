// Package registry discovers skill entries from configured directories and
// exposes the full collection for listing, lookup, and filtering. Discovery
// is a stateless read over the documentation tree: directories are scanned
// on every call and entries that fail to parse are skipped.
package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/skill"
)

const (
	// ConfigDir is the skillctl configuration directory name.
	ConfigDir = ".skillctl"
	// SkillsSubdir holds standalone skill directories.
	SkillsSubdir = "skills"
	// BundlesSubdir holds installed bundles, each an org@repo directory
	// with its own skills/ subdirectory.
	BundlesSubdir = "bundles"
)

// Registry discovers skills from configured directories
type Registry struct {
	skillDirs  []string
	bundleDirs []bundleDirConfig
}

// bundleDirConfig is a bundle skills directory with the name prefix applied
// to skills discovered inside it
type bundleDirConfig struct {
	dir    string
	prefix string
}

// Option is a function that configures a Registry
type Option func(*Registry) error

// WithSkillDirs sets custom skill directories
func WithSkillDirs(dirs ...string) Option {
	return func(r *Registry) error {
		r.skillDirs = dirs
		return nil
	}
}

// WithBundleDirs scans the given bundles directories for installed bundles
func WithBundleDirs(dirs ...string) Option {
	return func(r *Registry) error {
		for _, dir := range dirs {
			r.addBundleDirs(dir)
		}
		return nil
	}
}

// WithDefaultDirs initializes with the default directory stack: repo-local
// first (highest precedence), then user-global, for both standalone skills
// and installed bundles.
func WithDefaultDirs() Option {
	return func(r *Registry) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}

		r.skillDirs = []string{
			filepath.Join(".", ConfigDir, SkillsSubdir),
			filepath.Join(homeDir, ConfigDir, SkillsSubdir),
		}

		r.bundleDirs = []bundleDirConfig{}
		r.addBundleDirs(filepath.Join(".", ConfigDir, BundlesSubdir))
		r.addBundleDirs(filepath.Join(homeDir, ConfigDir, BundlesSubdir))

		return nil
	}
}

// addBundleDirs scans a bundles directory and registers every bundle's
// skills directory under an org/repo/ name prefix
func (r *Registry) addBundleDirs(bundlesDir string) {
	_ = filepath.Walk(bundlesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		skillsDir := filepath.Join(path, SkillsSubdir)
		if _, err := os.Stat(skillsDir); err != nil {
			return nil
		}

		relPath, err := filepath.Rel(bundlesDir, path)
		if err != nil {
			return nil
		}

		r.bundleDirs = append(r.bundleDirs, bundleDirConfig{
			dir:    skillsDir,
			prefix: bundleNameToPrefix(filepath.ToSlash(relPath)),
		})

		return filepath.SkipDir
	})
}

// New creates a registry. Without options the default directory stack is
// used.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultDirs()}
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Discover returns all registered skill entries keyed by name. Directories
// that do not exist and entries that fail to parse are skipped; discovery
// itself never fails.
func (r *Registry) Discover(ctx context.Context) map[string]*skill.Skill {
	skills := make(map[string]*skill.Skill)

	for _, dir := range r.skillDirs {
		r.discoverFromDir(ctx, dir, "", skills)
	}
	for _, bundleDir := range r.bundleDirs {
		r.discoverFromDir(ctx, bundleDir.dir, bundleDir.prefix, skills)
	}

	return skills
}

// discoverFromDir loads every skill directory under dir, applying the
// optional name prefix. Earlier directories win on name collisions.
func (r *Registry) discoverFromDir(ctx context.Context, dir, prefix string, skills map[string]*skill.Skill) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		// os.Stat follows symlinks so linked skill directories work
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		s, err := skill.ParseFile(filepath.Join(entryPath, skill.FileName))
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", entryPath).Debug("Skipping invalid skill entry")
			continue
		}

		name := prefix + s.Name
		if _, exists := skills[name]; exists {
			continue
		}

		s.Name = name
		skills[name] = s
	}
}

// Dirs returns every directory the registry reads skills from, in
// precedence order. Useful for watching the registry for changes.
func (r *Registry) Dirs() []string {
	dirs := make([]string, 0, len(r.skillDirs)+len(r.bundleDirs))
	dirs = append(dirs, r.skillDirs...)
	for _, bundleDir := range r.bundleDirs {
		dirs = append(dirs, bundleDir.dir)
	}
	return dirs
}

// Get returns the skill with the given name
func (r *Registry) Get(ctx context.Context, name string) (*skill.Skill, error) {
	skills := r.Discover(ctx)

	s, exists := skills[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}
	return s, nil
}

// Names returns the names of all registered skills in lexical order
func (r *Registry) Names(ctx context.Context) []string {
	return skill.SortedNames(r.Discover(ctx))
}

// FilterByAllowlist returns only the skills whose names appear in the
// allowlist. An empty allowlist returns all skills.
func FilterByAllowlist(skills map[string]*skill.Skill, allowed []string) map[string]*skill.Skill {
	if len(allowed) == 0 {
		return skills
	}

	filtered := make(map[string]*skill.Skill)
	for _, name := range allowed {
		if s, exists := skills[name]; exists {
			filtered[name] = s
		}
	}
	return filtered
}

// FilterByPatterns returns only the skills whose names match at least one
// glob pattern (e.g. "optimizing-*", "org/repo/*"). An empty pattern list
// returns all skills.
func FilterByPatterns(skills map[string]*skill.Skill, patterns []string) (map[string]*skill.Skill, error) {
	if len(patterns) == 0 {
		return skills, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid skill pattern %q", pattern)
		}
		globs = append(globs, g)
	}

	filtered := make(map[string]*skill.Skill)
	for name, s := range skills {
		for _, g := range globs {
			if g.Match(name) {
				filtered[name] = s
				break
			}
		}
	}
	return filtered, nil
}

// bundleNameToPrefix converts a bundle directory name to a skill name
// prefix, e.g. "org@repo" -> "org/repo/".
func bundleNameToPrefix(name string) string {
	return strings.Replace(name, "@", "/", 1) + "/"
}
