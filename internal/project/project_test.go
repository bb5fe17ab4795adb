package project_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/project"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDetectGoProjectWithBranch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example\n")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/feature/caching\n")
	writeFile(t, filepath.Join(root, "internal", "store", "store.go"), "package store\n")

	d := project.NewDetector(nil)
	info := d.Detect(filepath.Join(root, "internal", "store", "store.go"))

	if info.RootPath != root {
		t.Fatalf("root = %q, want %q", info.RootPath, root)
	}
	if info.Type != project.TypeGo {
		t.Fatalf("type = %q, want go", info.Type)
	}
	if info.GitBranch != "feature/caching" {
		t.Fatalf("branch = %q", info.GitBranch)
	}
}

func TestDetectPrefersPackageJSONName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": "my-editor-plugin"}`)
	writeFile(t, filepath.Join(root, "src", "index.js"), "")

	d := project.NewDetector(nil)
	info := d.Detect(filepath.Join(root, "src", "index.js"))

	if info.Name != "my-editor-plugin" {
		t.Fatalf("name = %q", info.Name)
	}
	if info.Type != project.TypeNodeJS {
		t.Fatalf("type = %q, want nodejs", info.Type)
	}
}

func TestDetectTitlesDirectoryName(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "time_tracker-core")
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\n")
	writeFile(t, filepath.Join(root, "src", "lib.rs"), "")

	d := project.NewDetector(nil)
	info := d.Detect(filepath.Join(root, "src", "lib.rs"))

	if info.Name != "Time Tracker Core" {
		t.Fatalf("name = %q, want titled directory name", info.Name)
	}
	if info.Type != project.TypeRust {
		t.Fatalf("type = %q, want rust", info.Type)
	}
}

func TestDetachedHeadYieldsShortHash(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "4f2d9c1ab38e57d6091f2a7b8c3d4e5f60718293\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")

	d := project.NewDetector(nil)
	info := d.Detect(filepath.Join(root, "main.go"))

	if info.GitBranch != "4f2d9c1" {
		t.Fatalf("branch = %q, want short hash", info.GitBranch)
	}
}

func TestCacheHitSkipsFilesystem(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example\n")
	target := filepath.Join(root, "main.go")
	writeFile(t, target, "package main\n")

	cache := project.NewCache(time.Hour)
	d := project.NewDetector(cache)

	first := d.Detect(target)
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", cache.Len())
	}

	// Removing the marker must not change a cached answer.
	if err := os.Remove(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second := d.Detect(target)
	if second != first {
		t.Fatalf("cached detection changed: %+v vs %+v", second, first)
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("cache not cleared")
	}
}

func TestExpiredEntriesEvicted(t *testing.T) {
	cache := project.NewCache(time.Millisecond)
	cache.Put("key", project.Info{Name: "stale"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expired entry should miss")
	}
	if cache.Len() != 0 {
		t.Fatalf("expired entry should be evicted")
	}
}
