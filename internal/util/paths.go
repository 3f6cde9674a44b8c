package util

import (
	"os"
	"path/filepath"
	"strings"
)

// ContentDirName is the name of the project-local content directory.
const ContentDirName = ".rulekit"

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// RulekitConfigPath returns the user-level rulekit directory (~/.rulekit)
func RulekitConfigPath() string {
	return filepath.Join(HomeDir(), ".rulekit")
}

// RulekitPackagesPath returns the user-level package install directory
func RulekitPackagesPath() string {
	return filepath.Join(RulekitConfigPath(), "packages")
}

// ProjectContentDir returns the content directory for a project root
func ProjectContentDir(projectRoot string) string {
	return filepath.Join(projectRoot, ContentDirName)
}

// ExpandPath expands a leading ~ to the user's home directory and resolves
// relative paths against baseDir.
func ExpandPath(path, baseDir string) string {
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// NormPath converts a path to forward-slash form for use as a snapshot key.
func NormPath(path string) string {
	return filepath.ToSlash(path)
}
