package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	gitignoreBegin = "# rulekit: generated files (begin)"
	gitignoreEnd   = "# rulekit: generated files (end)"
)

// UpdateGitignore rewrites the managed block of the project .gitignore to
// list the given generated paths. Everything outside the block is
// preserved; a missing file is created.
func UpdateGitignore(root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	entries := make(map[string]bool, len(paths))
	for _, p := range paths {
		entries["/"+strings.TrimPrefix(p, "/")] = true
	}
	lines := make([]string, 0, len(entries))
	for e := range entries {
		lines = append(lines, e)
	}
	sort.Strings(lines)

	block := gitignoreBegin + "\n" + strings.Join(lines, "\n") + "\n" + gitignoreEnd + "\n"

	path := filepath.Join(root, ".gitignore")
	// #nosec G304 - path is the project's .gitignore
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read .gitignore: %w", err)
	}

	updated := replaceBlock(string(existing), block)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("update .gitignore: %w", err)
	}
	return nil
}

func replaceBlock(existing, block string) string {
	begin := strings.Index(existing, gitignoreBegin)
	end := strings.Index(existing, gitignoreEnd)

	if begin >= 0 && end > begin {
		after := existing[end+len(gitignoreEnd):]
		after = strings.TrimPrefix(after, "\n")
		return existing[:begin] + block + after
	}

	if existing == "" {
		return block
	}
	if !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return existing + "\n" + block
}
