package watch

import (
	"strings"
	"testing"
)

func TestWatcherIgnoresInternalPaths(t *testing.T) {
	w := NewWatcher("/project/.rulekit")

	cases := []struct {
		path string
		want bool
	}{
		{"/project/.rulekit/rules/style.md", false},
		{"/project/.rulekit/workflows/deploy.md", false},
		{"/project/.rulekit/.sync-metadata.json", true},
		{"/project/.rulekit/.registry.json", true},
		{"/project/.rulekit/rules/.style.md.swp", true},
		{"/project/.rulekit/rules/style.md.backup.1724900000000", true},
	}
	for _, tc := range cases {
		if got := w.ignored(tc.path); got != tc.want {
			t.Errorf("ignored(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestWatcherCustomFilter(t *testing.T) {
	w := NewWatcher("/project/.rulekit")
	w.FilterPaths(func(path string) bool {
		return strings.HasSuffix(path, ".tmp")
	})

	if !w.ignored("/project/.rulekit/rules/draft.tmp") {
		t.Error("custom filter not applied")
	}
	if w.ignored("/project/.rulekit/rules/draft.md") {
		t.Error("custom filter ignored a content file")
	}
}
