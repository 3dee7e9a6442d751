package domain

import (
	"testing"
	"time"
)

func TestStemOf(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"myscript.inp", "myscript"},
		{"myscript.d.txt", "myscript"},
		{"myscript.html", "myscript"},
		{"dump.workshop0", "workshop0"},
		{"workshop0.dump", "workshop0"},
		{"dump", "dump"},
		{"dump.", "dump"},
		{".hidden", ".hidden"},
		{"noext", "noext"},
	}
	for _, c := range cases {
		if got := StemOf(c.input); got != c.want {
			t.Errorf("StemOf(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestParseTmpKind(t *testing.T) {
	if k, ok := ParseTmpKind(" Report "); !ok || k != TmpReport {
		t.Fatalf("expected report, got %q %v", k, ok)
	}
	if k, ok := ParseTmpKind("other"); !ok || k != TmpOther {
		t.Fatalf("expected other, got %q %v", k, ok)
	}
	if _, ok := ParseTmpKind("video"); ok {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestTmpFilter_Match(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	g := TmpGroup{
		Stem: "run1",
		Files: []TmpFile{
			{Name: "run1.inp", Kind: TmpScript, Size: 10, ModTime: now.Add(-48 * time.Hour)},
			{Name: "run1.html", Kind: TmpReport, Size: 5, ModTime: now.Add(-36 * time.Hour)},
		},
	}

	if g.Size() != 15 {
		t.Fatalf("expected size 15, got %d", g.Size())
	}
	if !g.Newest().Equal(now.Add(-36 * time.Hour)) {
		t.Fatalf("unexpected newest %v", g.Newest())
	}

	cases := []struct {
		name   string
		filter TmpFilter
		want   bool
	}{
		{"empty", TmpFilter{}, true},
		{"stem hit", TmpFilter{Stems: []string{"x", "run1"}}, true},
		{"stem miss", TmpFilter{Stems: []string{"run2"}}, false},
		{"kind hit", TmpFilter{Kinds: []TmpKind{TmpReport}}, true},
		{"kind miss", TmpFilter{Kinds: []TmpKind{TmpDump}}, false},
		{"older hit", TmpFilter{OlderThan: 24 * time.Hour}, true},
		{"older miss", TmpFilter{OlderThan: 72 * time.Hour}, false},
	}
	for _, c := range cases {
		if got := c.filter.Match(g, now); got != c.want {
			t.Errorf("%s: Match = %v, want %v", c.name, got, c.want)
		}
	}
}
