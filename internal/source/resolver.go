// Package source locates external content roots (local folders and
// installed content packages) and normalizes them into concrete
// directories the sync engine can scan.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rulekit/rulekit/internal/logging"
	"github.com/rulekit/rulekit/internal/util"
)

// EnvPackagePath overrides the package search path, colon-separated.
const EnvPackagePath = "RULEKIT_PACKAGE_PATH"

// Kind distinguishes how a source's location is interpreted.
type Kind string

const (
	// KindLocal is a filesystem path: absolute, project-relative, or
	// home-relative.
	KindLocal Kind = "local"

	// KindPackage is the name of an installed content package.
	KindPackage Kind = "package"
)

// Source names one external content contribution.
type Source struct {
	Kind     Kind   `yaml:"kind" json:"kind"`
	Location string `yaml:"location" json:"location"`
}

// String returns a short display form for logs and CLI output.
func (s Source) String() string {
	return string(s.Kind) + ":" + s.Location
}

// Resolver turns Sources into concrete content directories.
type Resolver struct {
	projectRoot string
	packageDirs []string
}

// NewResolver creates a resolver for the given project root. Packages are
// searched in the project-local rulekit_packages directory, then the
// user-level install directory, unless EnvPackagePath overrides both.
func NewResolver(projectRoot string) *Resolver {
	packageDirs := []string{
		filepath.Join(projectRoot, "rulekit_packages"),
		util.RulekitPackagesPath(),
	}
	if env := os.Getenv(EnvPackagePath); env != "" {
		packageDirs = strings.Split(env, string(os.PathListSeparator))
	}
	return &Resolver{
		projectRoot: projectRoot,
		packageDirs: packageDirs,
	}
}

// Resolve returns the content directory a source contributes, or ok=false
// when nothing resolves. It never errors; callers skip unresolved sources
// and the sync proceeds without them.
func (r *Resolver) Resolve(src Source) (string, bool) {
	switch src.Kind {
	case KindLocal:
		return r.resolveLocal(src.Location)
	case KindPackage:
		return r.resolvePackage(src.Location)
	default:
		logging.Warn("unknown source kind",
			logging.Source(src.String()),
		)
		return "", false
	}
}

// ResolveAll resolves every source, dropping the ones that do not exist.
func (r *Resolver) ResolveAll(sources []Source) []string {
	var dirs []string
	for _, src := range sources {
		dir, ok := r.Resolve(src)
		if !ok {
			logging.Debug("content source not found, skipping",
				logging.Source(src.String()),
			)
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

func (r *Resolver) resolveLocal(location string) (string, bool) {
	base := util.ExpandPath(location, r.projectRoot)
	return probeContentDir(base)
}

func (r *Resolver) resolvePackage(name string) (string, bool) {
	for _, dir := range r.packageDirs {
		installed := filepath.Join(dir, name)
		if !dirExists(installed) {
			continue
		}
		if found, ok := probeContentDir(installed); ok {
			return found, true
		}
	}
	return "", false
}

// probeContentDir checks the conventional layout candidates under base in
// priority order: the dedicated content dir, a templates dir, then base
// itself.
func probeContentDir(base string) (string, bool) {
	candidates := []string{
		filepath.Join(base, util.ContentDirName),
		filepath.Join(base, "templates"),
		base,
	}
	for _, c := range candidates {
		if dirExists(c) {
			return c, true
		}
	}
	return "", false
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
