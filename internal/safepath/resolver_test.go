package safepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestResolver returns a resolver rooted at a fresh temp project
// and the canonical project root.
func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(DefaultLayout(root))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, root
}

func TestResolve_NormalUsage(t *testing.T) {
	r, root := newTestResolver(t)

	got, err := r.Resolve("report.csv", CategoryFigures)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := filepath.Join(root, "outputs", "figures", "report.csv")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_Subdirectories(t *testing.T) {
	r, root := newTestResolver(t)

	got, err := r.Resolve("subdir/test.csv", CategoryRaw)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := filepath.Join(root, "data", "raw", "subdir", "test.csv"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	// Inner ".." that stays inside the base is fine.
	got, err = r.Resolve("a/../b.csv", CategoryRaw)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := filepath.Join(root, "data", "raw", "b.csv"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_TraversalAttempts(t *testing.T) {
	r, root := newTestResolver(t)

	tests := []struct {
		filename string
		category string
	}{
		{"../../../etc/passwd", CategoryRaw},
		{"../../secrets.txt", CategoryProcessed},
		{`..\..\..\Windows\System32\config\SAM`, CategoryRaw},
		{"../../../database/init/01-init.sql", CategoryExternal},
		{"./../../../README.md", CategoryRaw},
		{"../processed/x.csv", CategoryRaw},
		{"../../config.json", CategoryModels},
		{`..\..\..\sensitive_data.txt`, CategoryReports},
		{"/etc/passwd", CategoryRaw},
		{"a/b/../../../x", CategoryFigures},
		{strings.Repeat("../", 40) + "etc/shadow", CategoryRaw},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := r.Resolve(tt.filename, tt.category)
			if !errors.Is(err, ErrPathTraversal) {
				t.Fatalf("Resolve(%q, %q) = %q, %v; want ErrPathTraversal", tt.filename, tt.category, got, err)
			}
			if got != "" {
				t.Errorf("Resolve() returned path %q on error", got)
			}
			var te *TraversalError
			if !errors.As(err, &te) || te.Category != tt.category {
				t.Errorf("expected TraversalError for category %q, got %v", tt.category, err)
			}
			if strings.Contains(err.Error(), root) {
				t.Errorf("error should not leak resolved paths: %v", err)
			}
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	r, root := newTestResolver(t)

	outside := filepath.Join(root, "outside")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatal(err)
	}
	base, _ := r.Base(CategoryRaw)
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(base, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := r.Resolve("escape/secret.txt", CategoryRaw)
	if !errors.Is(err, ErrPathTraversal) {
		t.Fatalf("expected ErrPathTraversal for symlink escape, got %v", err)
	}
}

func TestResolve_DanglingSymlink(t *testing.T) {
	r, root := newTestResolver(t)
	base, err := r.EnsureDir(CategoryRaw)
	if err != nil {
		t.Fatal(err)
	}

	planted := filepath.Join(root, "outside", "planted.csv")
	if err := os.Symlink(planted, filepath.Join(base, "report.csv")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(base, "fresh.csv"), filepath.Join(base, "alias.csv")); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Resolve("report.csv", CategoryRaw); !errors.Is(err, ErrPathTraversal) {
		t.Fatalf("Resolve() through dangling link error = %v, want ErrPathTraversal", err)
	}
	if _, err := os.Lstat(filepath.Dir(planted)); !os.IsNotExist(err) {
		t.Errorf("resolving must not create anything outside the base: %v", err)
	}

	got, err := r.Resolve("alias.csv", CategoryRaw)
	if err != nil {
		t.Fatalf("Resolve() through dangling link inside base error = %v", err)
	}
	if want := filepath.Join(base, "fresh.csv"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_DotDotFollowsSymlinkTarget(t *testing.T) {
	r, root := newTestResolver(t)
	base, err := r.EnsureDir(CategoryRaw)
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(root, "outside", "inner")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(base, "hop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	// The kernel resolves hop/.. to root/outside, not to the base.
	if _, err := r.Resolve("hop/../x.csv", CategoryRaw); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("Resolve() error = %v, want ErrPathTraversal", err)
	}
}

func TestResolve_SymlinkInside(t *testing.T) {
	r, _ := newTestResolver(t)

	base, _ := r.Base(CategoryRaw)
	target := filepath.Join(base, "2024")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(base, "latest")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := r.Resolve("latest/x.csv", CategoryRaw)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := filepath.Join(target, "x.csv"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_InvalidCategory(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.Resolve("test.csv", "invalid_type")
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if !strings.Contains(err.Error(), `"invalid_type"`) || !strings.Contains(err.Error(), "figures") {
		t.Errorf("error should name the category and the allowed set: %v", err)
	}
}

func TestResolve_InvalidFilename(t *testing.T) {
	r, _ := newTestResolver(t)

	for _, name := range []string{"", ".", "a/..", "bad\x00name"} {
		if _, err := r.Resolve(name, CategoryRaw); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidFilename", name, err)
		}
	}
}

func TestResolve_DoesNotCreateDirectories(t *testing.T) {
	r, _ := newTestResolver(t)

	if _, err := r.Resolve("new/file.csv", CategoryModels); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	base, _ := r.Base(CategoryModels)
	if _, err := os.Stat(base); !os.IsNotExist(err) {
		t.Errorf("Resolve must not create %s (stat err = %v)", base, err)
	}
}

func TestEnsureDir(t *testing.T) {
	r, _ := newTestResolver(t)

	dir, err := r.EnsureDir(CategoryReports)
	if err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s: %v", dir, err)
	}

	if _, err := r.EnsureDir("nope"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("EnsureDir(nope) error = %v, want ErrInvalidCategory", err)
	}
}

func TestCategories_Sorted(t *testing.T) {
	r, _ := newTestResolver(t)

	got := strings.Join(r.Categories(), ",")
	if got != "external,figures,models,processed,raw,reports" {
		t.Errorf("Categories() = %s", got)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for empty mapping")
	}
	if _, err := New(map[string]string{"raw": ""}); err == nil {
		t.Error("expected error for empty base")
	}
}
