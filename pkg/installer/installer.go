// Package installer adds and removes skill bundles. Bundles are GitHub
// repositories containing skill directories; installing one clones the
// repository via the gh CLI and copies every skill directory into a local
// org@repo bundle. Local directories can be installed as standalone skills
// without any network access.
package installer

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/skill"
)

const (
	cloneAttempts   = 3
	cloneRetryDelay = 2 * time.Second
)

// ValidateRepoName validates a GitHub repository name in "owner/repo"
// format.
func ValidateRepoName(repo string) error {
	if repo == "" {
		return errors.New("repository name cannot be empty")
	}
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository format %q: expected 'owner/repo'", repo)
	}
	return nil
}

// ParseRepoRef splits "owner/repo@ref" into repository and ref. The ref is
// empty when absent.
func ParseRepoRef(spec string) (string, string) {
	if idx := strings.LastIndex(spec, "@"); idx != -1 {
		return spec[:idx], spec[idx+1:]
	}
	return spec, ""
}

// repoToBundleName converts "owner/repo" to the "owner@repo" directory name
// used under bundles/.
func repoToBundleName(repo string) string {
	return strings.Replace(repo, "/", "@", 1)
}

// BundleNameToUserFacing converts "owner@repo" back to "owner/repo".
func BundleNameToUserFacing(name string) string {
	return strings.Replace(name, "@", "/", 1)
}

// Installer installs skill bundles
type Installer struct {
	global  bool
	force   bool
	baseDir string
}

// Option configures an Installer
type Option func(*Installer)

// WithGlobal targets the user-global ~/.skillctl directory instead of the
// repo-local ./.skillctl directory.
func WithGlobal(global bool) Option {
	return func(i *Installer) {
		i.global = global
	}
}

// WithForce overwrites existing bundles and skills
func WithForce(force bool) Option {
	return func(i *Installer) {
		i.force = force
	}
}

// WithBaseDir overrides the target .skillctl directory
func WithBaseDir(dir string) Option {
	return func(i *Installer) {
		i.baseDir = dir
	}
}

// New creates an Installer
func New(opts ...Option) (*Installer, error) {
	i := &Installer{}
	for _, opt := range opts {
		opt(i)
	}

	if i.baseDir == "" {
		if i.global {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrap(err, "failed to get home directory")
			}
			i.baseDir = filepath.Join(homeDir, registry.ConfigDir)
		} else {
			i.baseDir = registry.ConfigDir
		}
	}

	return i, nil
}

// InstallResult describes an installed bundle
type InstallResult struct {
	BundleName string
	Skills     []string
}

// Install clones a GitHub repository and installs every skill directory it
// contains as an org@repo bundle.
func (i *Installer) Install(ctx context.Context, repo, ref string) (*InstallResult, error) {
	if err := ValidateRepoName(repo); err != nil {
		return nil, err
	}
	if err := validateGHCLI(); err != nil {
		return nil, err
	}

	tempDir, err := i.cloneRepo(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	bundleName := repoToBundleName(repo)
	bundleDir := filepath.Join(i.baseDir, registry.BundlesSubdir, bundleName)
	if err := i.checkExisting(bundleDir); err != nil {
		return nil, err
	}

	skillDirs, err := FindSkillDirs(tempDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan repository for skills")
	}
	if len(skillDirs) == 0 {
		return nil, errors.New("no skills found in repository (expected directories containing SKILL.md)")
	}

	result := &InstallResult{BundleName: bundleName}
	destSkills := filepath.Join(bundleDir, registry.SkillsSubdir)

	for _, dir := range skillDirs {
		name := filepath.Base(dir)
		if err := copyDir(dir, filepath.Join(destSkills, name)); err != nil {
			os.RemoveAll(bundleDir)
			return nil, errors.Wrapf(err, "failed to install skill %s", name)
		}
		result.Skills = append(result.Skills, name)
	}

	return result, nil
}

// InstallLocal copies a local skill directory into the standalone skills
// directory.
func (i *Installer) InstallLocal(ctx context.Context, srcDir string) (string, error) {
	if _, err := os.Stat(filepath.Join(srcDir, skill.FileName)); err != nil {
		return "", errors.Errorf("no %s found in %s", skill.FileName, srcDir)
	}

	name := filepath.Base(filepath.Clean(srcDir))
	destDir := filepath.Join(i.baseDir, registry.SkillsSubdir, name)
	if err := i.checkExisting(destDir); err != nil {
		return "", err
	}

	logger.G(ctx).WithField("skill", name).Debug("Installing local skill directory")

	if err := copyDir(srcDir, destDir); err != nil {
		return "", errors.Wrapf(err, "failed to install skill %s", name)
	}
	return name, nil
}

func validateGHCLI() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return errors.New("gh CLI is not installed, see https://cli.github.com")
	}
	if err := exec.Command("gh", "auth", "status").Run(); err != nil {
		return errors.New("gh CLI is not authenticated, run 'gh auth login'")
	}
	return nil
}

// cloneRepo shallow-clones the repository into a temp directory, retrying
// transient failures.
func (i *Installer) cloneRepo(ctx context.Context, repo, ref string) (string, error) {
	tempDir, err := os.MkdirTemp("", "skillctl-bundle-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}

	args := []string{"repo", "clone", repo, tempDir, "--", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}

	err = retry.Do(
		func() error {
			os.RemoveAll(tempDir)
			cmd := exec.CommandContext(ctx, "gh", args...)
			if output, err := cmd.CombinedOutput(); err != nil {
				return errors.Wrapf(err, "failed to clone repository: %s", string(output))
			}
			return nil
		},
		retry.Attempts(cloneAttempts),
		retry.Delay(cloneRetryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("Retrying clone")
		}),
	)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	return tempDir, nil
}

// FindSkillDirs walks root and returns every directory containing a
// SKILL.md file, skipping version control and dependency directories.
func FindSkillDirs(root string) ([]string, error) {
	var dirs []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && (info.Name() == ".git" || info.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if !info.IsDir() && info.Name() == skill.FileName {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})

	return dirs, err
}

func (i *Installer) checkExisting(path string) error {
	if _, err := os.Stat(path); err == nil {
		if !i.force {
			return errors.Errorf("already exists at %s (use --force to overwrite)", path)
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrap(err, "failed to remove existing directory")
		}
	}
	return nil
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}
		return copyFile(path, destPath)
	})
}

// copyFile preserves the source file mode so executable helper scripts stay
// executable
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// Remover removes installed bundles and standalone skills
type Remover struct {
	baseDir string
}

// NewRemover creates a Remover from the same options as the installer
func NewRemover(opts ...Option) (*Remover, error) {
	i, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return &Remover{baseDir: i.baseDir}, nil
}

// RemoveBundle removes an installed bundle. Accepts both "owner/repo" and
// "owner@repo".
func (r *Remover) RemoveBundle(name string) error {
	bundleName := name
	if strings.Contains(name, "/") {
		bundleName = repoToBundleName(name)
	}

	bundlePath := filepath.Join(r.baseDir, registry.BundlesSubdir, bundleName)
	if _, err := os.Stat(bundlePath); os.IsNotExist(err) {
		return errors.Errorf("bundle '%s' not found", name)
	}

	if err := os.RemoveAll(bundlePath); err != nil {
		return errors.Wrap(err, "failed to remove bundle")
	}
	return nil
}

// RemoveSkill removes a standalone skill directory by name
func (r *Remover) RemoveSkill(name string) error {
	skillPath := filepath.Join(r.baseDir, registry.SkillsSubdir, name)
	if _, err := os.Stat(filepath.Join(skillPath, skill.FileName)); os.IsNotExist(err) {
		return errors.Errorf("skill '%s' not found", name)
	}

	if err := os.RemoveAll(skillPath); err != nil {
		return errors.Wrap(err, "failed to remove skill")
	}
	return nil
}

// ListBundles returns installed bundle names in "owner/repo" form
func (r *Remover) ListBundles() ([]string, error) {
	bundlesDir := filepath.Join(r.baseDir, registry.BundlesSubdir)

	entries, err := os.ReadDir(bundlesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var bundles []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(bundlesDir, entry.Name(), registry.SkillsSubdir)); err == nil {
			bundles = append(bundles, BundleNameToUserFacing(entry.Name()))
		}
	}
	return bundles, nil
}
