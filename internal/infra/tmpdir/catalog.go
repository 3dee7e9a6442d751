package tmpdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/infra/fsscan"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

// Catalog classifies the flat contents of a tmp folder.
type Catalog struct {
	kinds map[domain.TmpKind]*fsscan.Matcher
}

// NewCatalog compiles the per-kind patterns.
func NewCatalog(kinds map[domain.TmpKind][]string) (*Catalog, error) {
	c := &Catalog{kinds: map[domain.TmpKind]*fsscan.Matcher{}}
	for k, patterns := range kinds {
		m, err := fsscan.CompileMatcher(patterns)
		if err != nil {
			return nil, err
		}
		c.kinds[k] = m
	}
	return c, nil
}

var _ ports.TmpCatalog = (*Catalog)(nil)

// Classify returns the first kind, in domain.TmpKindOrder, whose patterns match name.
func (c *Catalog) Classify(name string) domain.TmpKind {
	for _, k := range domain.TmpKindOrder {
		if m, ok := c.kinds[k]; ok && m.Match(name) {
			return k
		}
	}
	return domain.TmpOther
}

// Groups lists top-level regular files of dir grouped by stem. A missing dir is empty.
func (c *Catalog) Groups(dir string) ([]domain.TmpGroup, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.TmpGroup{}, nil
		}
		return nil, &domain.OpError{Op: "tmpdir.read", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	byStem := map[string]*domain.TmpGroup{}
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Vanished between ReadDir and Info.
			continue
		}
		name := de.Name()
		stem := domain.StemOf(name)
		g, ok := byStem[stem]
		if !ok {
			g = &domain.TmpGroup{Stem: stem}
			byStem[stem] = g
		}
		g.Files = append(g.Files, domain.TmpFile{
			Name:    name,
			Path:    filepath.Join(dir, name),
			Kind:    c.Classify(name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	out := make([]domain.TmpGroup, 0, len(byStem))
	for _, g := range byStem {
		sort.Slice(g.Files, func(i, j int) bool { return g.Files[i].Name < g.Files[j].Name })
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stem < out[j].Stem })
	return out, nil
}

// Remove deletes files that live directly inside dir. Nothing is removed if
// any path points elsewhere.
func (c *Catalog) Remove(dir string, files []domain.TmpFile) (int, int64, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, 0, &domain.OpError{Op: "tmpdir.remove", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f.Path)
		if err != nil || filepath.Dir(p) != absDir || filepath.Base(p) != f.Name {
			return 0, 0, &domain.OpError{
				Op:   "tmpdir.remove",
				Kind: domain.KindInvalidConfig,
				Path: f.Path,
				Err:  fmt.Errorf("refusing to delete outside %s: %w", absDir, domain.ErrInvalidConfig),
			}
		}
		paths = append(paths, p)
	}

	var removed int
	var freed int64
	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, freed, &domain.OpError{Op: "tmpdir.remove", Kind: domain.KindExecution, Path: p, Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(p); err != nil {
			return removed, freed, &domain.OpError{Op: "tmpdir.remove", Kind: domain.KindExecution, Path: p, Err: err}
		}
		removed++
		freed += info.Size()
	}
	return removed, freed, nil
}
