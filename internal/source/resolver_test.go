package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rulekit/rulekit/internal/util"
)

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	if err := os.MkdirAll(path, 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	return path
}

func TestResolve_LocalPrefersContentDir(t *testing.T) {
	project := t.TempDir()
	shared := t.TempDir()
	want := mkdir(t, shared, util.ContentDirName)
	mkdir(t, shared, "templates")

	r := NewResolver(project)
	got, ok := r.Resolve(Source{Kind: KindLocal, Location: shared})
	if !ok {
		t.Fatal("expected source to resolve")
	}
	if got != want {
		t.Errorf("Resolve = %q, want content dir %q", got, want)
	}
}

func TestResolve_LocalFallsBackToTemplates(t *testing.T) {
	project := t.TempDir()
	shared := t.TempDir()
	want := mkdir(t, shared, "templates")

	r := NewResolver(project)
	got, ok := r.Resolve(Source{Kind: KindLocal, Location: shared})
	if !ok || got != want {
		t.Errorf("Resolve = %q, %v, want templates dir", got, ok)
	}
}

func TestResolve_LocalFallsBackToPathItself(t *testing.T) {
	project := t.TempDir()
	shared := t.TempDir()

	r := NewResolver(project)
	got, ok := r.Resolve(Source{Kind: KindLocal, Location: shared})
	if !ok || got != shared {
		t.Errorf("Resolve = %q, %v, want the path itself", got, ok)
	}
}

func TestResolve_LocalRelativeToProject(t *testing.T) {
	project := t.TempDir()
	want := mkdir(t, project, "shared-rules")

	r := NewResolver(project)
	got, ok := r.Resolve(Source{Kind: KindLocal, Location: "shared-rules"})
	if !ok || got != want {
		t.Errorf("Resolve = %q, %v, want %q", got, ok, want)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver(t.TempDir())
	if _, ok := r.Resolve(Source{Kind: KindLocal, Location: "/no/such/dir"}); ok {
		t.Error("missing path should not resolve")
	}
	if _, ok := r.Resolve(Source{Kind: KindPackage, Location: "missing-pkg"}); ok {
		t.Error("missing package should not resolve")
	}
	if _, ok := r.Resolve(Source{Kind: "weird", Location: "x"}); ok {
		t.Error("unknown kind should not resolve")
	}
}

func TestResolve_PackageFromProjectDir(t *testing.T) {
	project := t.TempDir()
	want := mkdir(t, project, "rulekit_packages", "base-rules", util.ContentDirName)

	r := NewResolver(project)
	got, ok := r.Resolve(Source{Kind: KindPackage, Location: "base-rules"})
	if !ok || got != want {
		t.Errorf("Resolve = %q, %v, want %q", got, ok, want)
	}
}

func TestResolve_PackagePathOverride(t *testing.T) {
	project := t.TempDir()
	override := t.TempDir()
	want := mkdir(t, override, "team-pack", "templates")
	t.Setenv(EnvPackagePath, override)

	r := NewResolver(project)
	got, ok := r.Resolve(Source{Kind: KindPackage, Location: "team-pack"})
	if !ok || got != want {
		t.Errorf("Resolve = %q, %v, want %q", got, ok, want)
	}
}

func TestResolveAll_SkipsUnresolved(t *testing.T) {
	project := t.TempDir()
	shared := t.TempDir()

	r := NewResolver(project)
	dirs := r.ResolveAll([]Source{
		{Kind: KindLocal, Location: shared},
		{Kind: KindLocal, Location: "/no/such/dir"},
		{Kind: KindPackage, Location: "missing"},
	})
	if len(dirs) != 1 || dirs[0] != shared {
		t.Errorf("ResolveAll = %v, want [%s]", dirs, shared)
	}
}
