package stage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePoem_Valid(t *testing.T) {
	raw := `{"title":"Hope","author":"Emily Dickinson","lines":["Hope is the thing with feathers","That perches in the soul,"]}`
	poem, err := ParsePoem(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poem.Title != "Hope" {
		t.Fatalf("unexpected title: %q", poem.Title)
	}
	if len(poem.Lines) != 2 {
		t.Fatalf("unexpected lines: %v", poem.Lines)
	}
}

func TestParsePoem_Empty(t *testing.T) {
	if _, err := ParsePoem(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParsePoem_Invalid(t *testing.T) {
	if _, err := ParsePoem("{invalid json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestCleanupStaging_RemovesOnlyItemDirectory(t *testing.T) {
	root := t.TempDir()
	itemDir := filepath.Join(root, "vid-1")
	otherDir := filepath.Join(root, "vid-2")
	for _, dir := range []string{itemDir, otherDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	if err := CleanupStaging(root, "vid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(itemDir); !os.IsNotExist(err) {
		t.Fatalf("item directory not removed: %v", err)
	}
	if _, err := os.Stat(otherDir); err != nil {
		t.Fatalf("sibling directory must survive: %v", err)
	}
}

func TestCleanupStaging_BlankComponentsAreNoOps(t *testing.T) {
	root := t.TempDir()
	if err := CleanupStaging(root, "  "); err != nil {
		t.Fatalf("blank video id: %v", err)
	}
	if err := CleanupStaging("", "vid-1"); err != nil {
		t.Fatalf("blank staging dir: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("staging root must survive blank video id: %v", err)
	}
}
