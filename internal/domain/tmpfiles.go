package domain

import (
	"strings"
	"time"
)

// TmpKind classifies a file left in the tmp folder by the script generator.
type TmpKind string

const (
	TmpScript     TmpKind = "script"
	TmpDScript    TmpKind = "dscript"
	TmpReport     TmpKind = "report"
	TmpDump       TmpKind = "dump"
	TmpForcefield TmpKind = "forcefield"
	TmpOther      TmpKind = "other"
)

// TmpKindOrder is the order in which kind patterns are tried.
var TmpKindOrder = []TmpKind{TmpScript, TmpDScript, TmpReport, TmpDump, TmpForcefield}

// ParseTmpKind accepts any known kind name, including "other".
func ParseTmpKind(s string) (TmpKind, bool) {
	k := TmpKind(strings.ToLower(strings.TrimSpace(s)))
	if k == TmpOther {
		return k, true
	}
	for _, known := range TmpKindOrder {
		if k == known {
			return k, true
		}
	}
	return "", false
}

type TmpFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Kind    TmpKind   `json:"kind"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// TmpGroup is every tmp file produced by one run, tied together by stem.
type TmpGroup struct {
	Stem  string    `json:"stem"`
	Files []TmpFile `json:"files"`
}

func (g TmpGroup) Size() int64 {
	var n int64
	for _, f := range g.Files {
		n += f.Size
	}
	return n
}

// Newest returns the latest modification time in the group.
func (g TmpGroup) Newest() time.Time {
	var t time.Time
	for _, f := range g.Files {
		if f.ModTime.After(t) {
			t = f.ModTime
		}
	}
	return t
}

// HasKind reports whether any file in the group is of kind k.
func (g TmpGroup) HasKind(k TmpKind) bool {
	for _, f := range g.Files {
		if f.Kind == k {
			return true
		}
	}
	return false
}

// StemOf derives the shared stem from a tmp file name.
//
//	myscript.inp       -> myscript
//	myscript.d.txt     -> myscript
//	dump.workshop0     -> workshop0
//	.hidden            -> .hidden
func StemOf(name string) string {
	n := name
	if strings.HasPrefix(n, "dump.") && len(n) > len("dump.") {
		n = strings.TrimPrefix(n, "dump.")
	}
	if strings.HasPrefix(n, ".") {
		return n
	}
	if i := strings.IndexByte(n, '.'); i > 0 {
		return n[:i]
	}
	return n
}

// TmpFilter narrows which groups a listing or cleanup applies to.
// Empty fields match everything.
type TmpFilter struct {
	Stems     []string
	Kinds     []TmpKind
	OlderThan time.Duration
}

// Match reports whether g passes the filter at time now.
func (f TmpFilter) Match(g TmpGroup, now time.Time) bool {
	if len(f.Stems) > 0 {
		found := false
		for _, s := range f.Stems {
			if s == g.Stem {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if g.HasKind(k) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.OlderThan > 0 && !g.Newest().Before(now.Add(-f.OlderThan)) {
		return false
	}
	return true
}
