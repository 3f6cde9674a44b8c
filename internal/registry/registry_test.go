package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rulekit/rulekit/internal/content"
)

func writeItem(t *testing.T, root, relPath, body string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadSet(t *testing.T, root string) *content.Set {
	t.Helper()
	set, err := content.LoadSet(root)
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	return set
}

func TestLoadAbsentRegistry(t *testing.T) {
	r := Load(filepath.Join(t.TempDir(), ".registry.json"))
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d items", r.Len())
	}
}

func TestLoadCorruptRegistryStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".registry.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Load(path)
	if r.Len() != 0 {
		t.Errorf("expected fresh registry after corrupt load, got %d items", r.Len())
	}
}

func TestIndexAndVersionBump(t *testing.T) {
	root := t.TempDir()
	path := writeItem(t, root, "rules/style.md", "# Style\n\nUse tabs.\n")
	regPath := filepath.Join(root, ".registry.json")

	r := Load(regPath)
	r.Index(loadSet(t, root), "local")

	id := ItemID(content.KindRule, "rules/style.md")
	meta, ok := r.Get(id)
	if !ok {
		t.Fatalf("item %s not indexed", id)
	}
	if meta.Version != 1 {
		t.Errorf("new item version = %d, want 1", meta.Version)
	}
	if meta.Checksum == "" {
		t.Error("checksum not recorded")
	}
	if meta.Path != path {
		t.Errorf("path = %q, want %q", meta.Path, path)
	}

	// Reindexing unchanged content does not bump the version.
	r.Index(loadSet(t, root), "local")
	meta, _ = r.Get(id)
	if meta.Version != 1 {
		t.Errorf("unchanged reindex version = %d, want 1", meta.Version)
	}

	writeItem(t, root, "rules/style.md", "# Style\n\nUse spaces.\n")
	r.Index(loadSet(t, root), "local")
	meta, _ = r.Get(id)
	if meta.Version != 2 {
		t.Errorf("changed reindex version = %d, want 2", meta.Version)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "skills/review.md", "Review checklist.\n")
	regPath := filepath.Join(root, ".registry.json")

	r := Load(regPath)
	r.Index(loadSet(t, root), "local")
	if err := r.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again := Load(regPath)
	if again.Len() != 1 {
		t.Fatalf("reloaded registry has %d items, want 1", again.Len())
	}
	id := ItemID(content.KindSkill, "skills/review.md")
	if _, ok := again.Get(id); !ok {
		t.Errorf("item %s missing after reload", id)
	}
}

func TestDependencyEdgesFromFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "skills/base.md", "---\nname: base\n---\nFoundation.\n")
	writeItem(t, root, "skills/review.md",
		"---\nname: review\ndependencies:\n  - base\n---\nReview.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")

	baseID := ItemID(content.KindSkill, "skills/base.md")
	reviewID := ItemID(content.KindSkill, "skills/review.md")

	review, _ := r.Get(reviewID)
	if len(review.Dependencies) != 1 || review.Dependencies[0] != baseID {
		t.Errorf("review dependencies = %v, want [%s]", review.Dependencies, baseID)
	}
	base, _ := r.Get(baseID)
	if len(base.Dependents) != 1 || base.Dependents[0] != reviewID {
		t.Errorf("base dependents = %v, want [%s]", base.Dependents, reviewID)
	}
}

func TestScanReferences(t *testing.T) {
	body := "See [[base]] and the [guide](./skills/deploy.md), " +
		"plus [docs](https://example.com/page.md) and [[base|alias text]]."
	refs := ScanReferences(body)
	want := []string{"base", "deploy"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestFindContentFilters(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "rules/go.md", "---\nname: go\ntags: [lang]\n---\nGo rules.\n")
	writeItem(t, root, "skills/review.md", "---\nname: review\ntags: [process]\n---\nReview.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")

	rules := r.FindContent(Filter{Type: content.KindRule})
	if len(rules) != 1 || rules[0].Name != "go" {
		t.Errorf("type filter returned %d items", len(rules))
	}
	tagged := r.FindContent(Filter{Tag: "process"})
	if len(tagged) != 1 || tagged[0].Name != "review" {
		t.Errorf("tag filter returned %d items", len(tagged))
	}
	if got := r.FindContent(Filter{Source: "external"}); len(got) != 0 {
		t.Errorf("source filter returned %d items, want 0", len(got))
	}
	if got := r.FindContent(Filter{}); len(got) != 2 {
		t.Errorf("empty filter returned %d items, want 2", len(got))
	}
}

func TestDetectConflictsAcrossSources(t *testing.T) {
	local := t.TempDir()
	pkg := t.TempDir()
	writeItem(t, local, "rules/style.md", "---\nname: style\n---\nLocal style.\n")
	writeItem(t, pkg, "rules/team/style.md", "---\nname: style\n---\nPackage style.\n")

	r := Load(filepath.Join(local, ".registry.json"))
	r.Index(loadSet(t, local), "local")
	r.Index(loadSet(t, pkg), "external")

	conflicts := r.DetectConflicts()
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflict groups, want 1", len(conflicts))
	}
	if len(conflicts[0]) != 2 {
		t.Errorf("conflict group size = %d, want 2", len(conflicts[0]))
	}
}

func TestSameSourceCollisionIsNotConflict(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "rules/a/style.md", "---\nname: style\n---\nA.\n")
	writeItem(t, root, "rules/b/style.md", "---\nname: style\n---\nB.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")

	if conflicts := r.DetectConflicts(); len(conflicts) != 0 {
		t.Errorf("got %d conflict groups, want 0", len(conflicts))
	}
}

func TestDetectOrphans(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "skills/base.md", "---\nname: base\n---\nFoundation.\n")
	writeItem(t, root, "skills/review.md",
		"---\nname: review\ndependencies: [base]\n---\nReview.\n")
	writeItem(t, root, "rules/loner.md", "---\nname: loner\n---\nUnreferenced.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")

	orphans := r.DetectOrphans()
	if len(orphans) != 1 || orphans[0].Name != "loner" {
		t.Errorf("orphans = %v, want just loner", names(orphans))
	}
}

func TestDependencyGraph(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "skills/a.md", "---\nname: a\ndependencies: [b]\n---\nA.\n")
	writeItem(t, root, "skills/b.md", "---\nname: b\ndependencies: [c]\n---\nB.\n")
	writeItem(t, root, "skills/c.md", "---\nname: c\n---\nC.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")

	g, err := r.DependencyGraph(ItemID(content.KindSkill, "skills/a.md"))
	if err != nil {
		t.Fatalf("DependencyGraph: %v", err)
	}
	if len(g.Direct) != 1 || g.Direct[0] != ItemID(content.KindSkill, "skills/b.md") {
		t.Errorf("direct = %v", g.Direct)
	}
	if len(g.Indirect) != 1 || g.Indirect[0] != ItemID(content.KindSkill, "skills/c.md") {
		t.Errorf("indirect = %v", g.Indirect)
	}

	gb, err := r.DependencyGraph(ItemID(content.KindSkill, "skills/b.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(gb.Dependents) != 1 || gb.Dependents[0] != ItemID(content.KindSkill, "skills/a.md") {
		t.Errorf("dependents = %v", gb.Dependents)
	}
}

func TestDependencyGraphCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeItem(t, root, "skills/a.md", "---\nname: a\ndependencies: [b]\n---\nA.\n")
	writeItem(t, root, "skills/b.md", "---\nname: b\ndependencies: [a]\n---\nB.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")

	g, err := r.DependencyGraph(ItemID(content.KindSkill, "skills/a.md"))
	if err != nil {
		t.Fatalf("DependencyGraph: %v", err)
	}
	if len(g.Indirect) != 0 {
		t.Errorf("cycle back to origin should not appear as indirect, got %v", g.Indirect)
	}
}

func TestDependencyGraphUnknownID(t *testing.T) {
	r := Load(filepath.Join(t.TempDir(), ".registry.json"))
	if _, err := r.DependencyGraph("skill:missing"); err == nil {
		t.Error("expected error for unknown item")
	}
}

func TestOptimizePrunesMissingFiles(t *testing.T) {
	root := t.TempDir()
	keep := writeItem(t, root, "rules/keep.md", "Keep.\n")
	gone := writeItem(t, root, "rules/gone.md", "Gone.\n")

	r := Load(filepath.Join(root, ".registry.json"))
	r.Index(loadSet(t, root), "local")
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	pruned := r.Optimize()
	if len(pruned) != 1 || pruned[0] != ItemID(content.KindRule, "rules/gone.md") {
		t.Errorf("pruned = %v", pruned)
	}
	if r.Len() != 1 {
		t.Errorf("registry has %d items after optimize, want 1", r.Len())
	}
	meta, ok := r.Get(ItemID(content.KindRule, "rules/keep.md"))
	if !ok || meta.Path != keep {
		t.Error("surviving item lost")
	}
}

func names(metas []*ContentMetadata) []string {
	var out []string
	for _, m := range metas {
		out = append(out, m.Name)
	}
	return out
}
