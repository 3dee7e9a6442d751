package tmpdir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aalvaropc/pizzapack/internal/domain"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(domain.DefaultTmpKinds())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestClassify(t *testing.T) {
	c := newTestCatalog(t)
	cases := map[string]domain.TmpKind{
		"myscript.inp":   domain.TmpScript,
		"myscript.lmp":   domain.TmpScript,
		"myscript.d.txt": domain.TmpDScript,
		"run.dscript":    domain.TmpDScript,
		"report.html":    domain.TmpReport,
		"dump.workshop0": domain.TmpDump,
		"traj.dump":      domain.TmpDump,
		"water.ff":       domain.TmpForcefield,
		"notes.md":       domain.TmpOther,
	}
	for name, want := range cases {
		if got := c.Classify(name); got != want {
			t.Errorf("Classify(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestGroups_GroupsByStem(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "myscript.inp", "units si\n")
	touch(t, dir, "myscript.d.txt", "# DSCRIPT\n")
	touch(t, dir, "myscript.html", "<html/>")
	touch(t, dir, "dump.workshop0", "ITEM: TIMESTEP\n")
	touch(t, dir, "workshop0.inp", "x")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested"), "inner.inp", "x")

	groups, err := newTestCatalog(t).Groups(dir)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}

	type view struct {
		Stem  string
		Names []string
		Kinds []domain.TmpKind
	}
	var got []view
	for _, g := range groups {
		v := view{Stem: g.Stem}
		for _, f := range g.Files {
			v.Names = append(v.Names, f.Name)
			v.Kinds = append(v.Kinds, f.Kind)
		}
		got = append(got, v)
	}

	want := []view{
		{
			Stem:  "myscript",
			Names: []string{"myscript.d.txt", "myscript.html", "myscript.inp"},
			Kinds: []domain.TmpKind{domain.TmpDScript, domain.TmpReport, domain.TmpScript},
		},
		{
			Stem:  "workshop0",
			Names: []string{"dump.workshop0", "workshop0.inp"},
			Kinds: []domain.TmpKind{domain.TmpDump, domain.TmpScript},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestGroups_MissingDir(t *testing.T) {
	groups, err := newTestCatalog(t).Groups(filepath.Join(t.TempDir(), "tmp"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestRemove_DeletesOnlyInsideDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.inp", "12345")
	touch(t, dir, "a.html", "123")

	outside := t.TempDir()
	touch(t, outside, "keep.inp", "x")

	c := newTestCatalog(t)
	_, _, err := c.Remove(dir, []domain.TmpFile{
		{Name: "a.inp", Path: filepath.Join(dir, "a.inp")},
		{Name: "keep.inp", Path: filepath.Join(outside, "keep.inp")},
	})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.inp")); err != nil {
		t.Fatalf("nothing should be deleted when one path is rejected")
	}

	_, _, err = c.Remove(dir, []domain.TmpFile{{Name: "x", Path: filepath.Join(dir, "..", "x")}})
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected traversal to be rejected, got %v", err)
	}

	n, freed, err := c.Remove(dir, []domain.TmpFile{
		{Name: "a.inp", Path: filepath.Join(dir, "a.inp")},
		{Name: "a.html", Path: filepath.Join(dir, "a.html")},
		{Name: "gone.dump", Path: filepath.Join(dir, "gone.dump")},
	})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 2 || freed != 8 {
		t.Fatalf("expected 2 files / 8 bytes, got %d / %d", n, freed)
	}
	if _, err := os.Stat(filepath.Join(outside, "keep.inp")); err != nil {
		t.Fatalf("outside file must survive: %v", err)
	}
}

func TestGroups_ModTimes(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "old.inp", "x")
	past := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "old.inp"), past, past); err != nil {
		t.Fatal(err)
	}

	groups, err := newTestCatalog(t).Groups(dir)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if !(domain.TmpFilter{OlderThan: 24 * time.Hour}).Match(groups[0], time.Now()) {
		t.Fatalf("expected group to be older than a day")
	}
}
