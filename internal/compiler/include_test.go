package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIncludeResolver_Expand(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "main.frag")
	common := filepath.Join(dir, "lib", "common.glsl")
	noise := filepath.Join(dir, "lib", "noise.glsl")

	writeFile(t, root, "#version 450\n#extension GL_GOOGLE_include_directive : require\n#include \"lib/common.glsl\"\nvoid main() {}\n")
	writeFile(t, common, "#include \"noise.glsl\"\nfloat common() { return noise(); }\n")
	writeFile(t, noise, "float noise() { return 0.5; }")

	r := NewIncludeResolver()
	e, err := r.Expand(root)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := "#version 450\nfloat noise() { return 0.5; }\nfloat common() { return noise(); }\nvoid main() {}\n"
	if e.Text != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, e.Text)
	}

	wantDeps := []string{root, common, noise}
	if !reflect.DeepEqual(e.Dependencies, wantDeps) {
		t.Errorf("expected deps %v, got %v", wantDeps, e.Dependencies)
	}
}

func TestIncludeResolver_Dependencies_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "main.frag")
	writeFile(t, root, "#include \"a.glsl\"\n#include \"b.glsl\"\n")
	writeFile(t, filepath.Join(dir, "a.glsl"), "#include \"c.glsl\"\n")
	writeFile(t, filepath.Join(dir, "b.glsl"), "#include \"c.glsl\"\n")
	writeFile(t, filepath.Join(dir, "c.glsl"), "// c\n")

	e, err := NewIncludeResolver().Expand(root)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(e.Dependencies) != 4 {
		t.Errorf("expected 4 dependencies, got %v", e.Dependencies)
	}
}

func TestIncludeResolver_Cycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.glsl")
	writeFile(t, a, "#include \"b.glsl\"\n")
	writeFile(t, filepath.Join(dir, "b.glsl"), "#include \"a.glsl\"\n")

	_, err := NewIncludeResolver().Expand(a)
	if !errors.Is(err, ErrIncludeCycle) {
		t.Errorf("expected ErrIncludeCycle, got %v", err)
	}
}

func TestIncludeResolver_Missing(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "main.frag")
	writeFile(t, root, "#include <nowhere.glsl>\n")

	_, err := NewIncludeResolver(dir).Expand(root)
	if !errors.Is(err, ErrIncludeNotFound) {
		t.Errorf("expected ErrIncludeNotFound, got %v", err)
	}
}

func TestIncludeResolver_DirPriority(t *testing.T) {
	dir := t.TempDir()
	low := filepath.Join(dir, "low")
	high := filepath.Join(dir, "high")
	writeFile(t, filepath.Join(low, "shared.glsl"), "low\n")
	writeFile(t, filepath.Join(high, "shared.glsl"), "high\n")

	r := NewIncludeResolver(low, high)
	got, err := r.Resolve("shared.glsl", filepath.Join(dir, "src", "main.frag"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != filepath.Join(high, "shared.glsl") {
		t.Errorf("expected the last added directory to win, got %s", got)
	}

	// A file next to the includer beats every directory.
	writeFile(t, filepath.Join(dir, "src", "shared.glsl"), "local\n")
	got, err = r.Resolve("shared.glsl", filepath.Join(dir, "src", "main.frag"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != filepath.Join(dir, "src", "shared.glsl") {
		t.Errorf("expected the includer's directory to win, got %s", got)
	}
}

func TestIncludeResolver_Cache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.glsl")
	writeFile(t, path, "one\n")

	r := NewIncludeResolver()
	if _, err := r.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writeFile(t, path, "two\n")
	text, _ := r.Load(path)
	if text != "one\n" {
		t.Errorf("expected cached content, got %q", text)
	}

	hits, misses := r.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	r.Invalidate(path)
	text, _ = r.Load(path)
	if text != "two\n" {
		t.Errorf("expected fresh content after Invalidate, got %q", text)
	}
}
