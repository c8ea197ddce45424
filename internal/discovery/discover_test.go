package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file with parent directories under root.
func writeFile(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("select 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFindsNestedSQL(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.sql")
	writeFile(t, root, "sub/dir/b.SQL")
	writeFile(t, root, "sub/readme.md")

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %+v", len(files), files)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFindModel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "marts/orders/big_model.sql")
	writeFile(t, root, "marts/other.sql")

	dir, err := FindModel(root, "big_model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(dir) != "orders" {
		t.Fatalf("got dir %q, want .../orders", dir)
	}
}

func TestFindModelNotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.sql")

	if _, err := FindModel(root, "missing_model"); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestListSQLIsNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x.sql")
	writeFile(t, root, "y.sql")
	writeFile(t, root, "deep/z.sql")

	names, err := ListSQL(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v, want x.sql and y.sql only", names)
	}
}
