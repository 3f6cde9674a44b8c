package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func TestScan_MissingRootYieldsEmptySnapshot(t *testing.T) {
	s := NewScanner()
	snapshot, err := s.Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(snapshot) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(snapshot))
	}
}

func TestScan_RecursesAndHashes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/style.md", "# Style\nUse tabs.\n")
	writeFile(t, dir, "skills/review/deep.md", "# Review\n")
	writeFile(t, dir, "context.md", "Project context.\n")

	s := NewScanner()
	snapshot, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"context.md", "rules/style.md", "skills/review/deep.md"}
	for _, rel := range want {
		ch, ok := snapshot[rel]
		if !ok {
			t.Fatalf("snapshot missing %q", rel)
		}
		if ch.Path != rel {
			t.Errorf("ContentHash.Path = %q, want %q", ch.Path, rel)
		}
		if len(ch.Hash) != 64 {
			t.Errorf("hash for %q = %q, want 64 hex chars", rel, ch.Hash)
		}
		if ch.Size == 0 {
			t.Errorf("size for %q should be non-zero", rel)
		}
	}
	if len(snapshot) != len(want) {
		t.Errorf("snapshot has %d entries, want %d", len(snapshot), len(want))
	}
}

func TestScan_SkipsNonContentFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/style.md", "content")
	writeFile(t, dir, "rules/helper.sh", "#!/bin/sh")
	writeFile(t, dir, MetadataStoreName, "{}")
	writeFile(t, dir, RegistryStoreName, "{}")
	writeFile(t, dir, ".hidden/secret.md", "hidden")
	writeFile(t, dir, "rules/.draft.md", "draft")

	s := NewScanner()
	snapshot, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(snapshot) != 1 {
		t.Fatalf("snapshot has %d entries, want 1: %v", len(snapshot), snapshot.Paths())
	}
	if _, ok := snapshot["rules/style.md"]; !ok {
		t.Error("snapshot should contain rules/style.md")
	}
}

func TestScan_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/a.md", "alpha")
	writeFile(t, dir, "rules/b.md", "beta")
	writeFile(t, dir, "workflows/deploy.md", "deploy")

	s := NewScanner()
	first, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}
	second, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated scans of an unchanged tree should be identical")
	}
}

func TestScan_HashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules/a.md", "before")

	s := NewScanner()
	first, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("after"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	second, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if first["rules/a.md"].Hash == second["rules/a.md"].Hash {
		t.Error("hash should change when content changes")
	}
}

func TestScan_CustomIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/a.md", "alpha")
	writeFile(t, dir, "skills/b.md", "beta")

	s := NewScanner("rules/**/*.md")
	snapshot, err := s.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("snapshot has %d entries, want 1", len(snapshot))
	}
	if _, ok := snapshot["rules/a.md"]; !ok {
		t.Error("include pattern should match rules/a.md")
	}
}

func TestHashBytes_MatchesFileHash(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/a.md", "same content")

	snapshot, err := NewScanner().Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := HashBytes([]byte("same content")); got != snapshot["rules/a.md"].Hash {
		t.Errorf("HashBytes = %q, want %q", got, snapshot["rules/a.md"].Hash)
	}
}
