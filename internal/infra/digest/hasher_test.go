package digest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/pizzapack/internal/domain"
)

// sha256("hello")
const helloSum = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestReader_KnownDigest(t *testing.T) {
	got, err := Reader(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if got != helloSum {
		t.Fatalf("expected %s, got %s", helloSum, got)
	}
}

func TestDigest_FillsAllEntries(t *testing.T) {
	root := t.TempDir()
	var entries []domain.FileEntry
	for i := 0; i < 25; i++ {
		rel := fmt.Sprintf("d%d/f%d.py", i%3, i)
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		entries = append(entries, domain.FileEntry{Path: rel, Size: 5})
	}

	got, err := New(WithConcurrency(3)).Digest(context.Background(), root, entries)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i, e := range got {
		if e.Path != entries[i].Path {
			t.Fatalf("order changed at %d: %s vs %s", i, e.Path, entries[i].Path)
		}
		if e.SHA256 != helloSum {
			t.Fatalf("unexpected digest for %s: %s", e.Path, e.SHA256)
		}
	}
	if entries[0].SHA256 != "" {
		t.Fatalf("input slice must not be mutated")
	}
}

func TestDigest_MissingFile(t *testing.T) {
	_, err := New().Digest(context.Background(), t.TempDir(), []domain.FileEntry{{Path: "gone.py"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected KindExecution, got %v", err)
	}
}

func TestDigest_Canceled(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.py"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Digest(ctx, root, []domain.FileEntry{{Path: "a.py"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
