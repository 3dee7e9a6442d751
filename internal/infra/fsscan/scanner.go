package fsscan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

// Scanner walks a directory tree and selects regular files whose base name
// matches one of the configured glob patterns. Symlinks are never followed.
type Scanner struct{}

func NewScanner() *Scanner {
	return &Scanner{}
}

var _ ports.FileScanner = (*Scanner)(nil)

// Matcher matches file base names against a set of compiled globs.
type Matcher struct {
	globs []glob.Glob
}

// CompileMatcher compiles patterns like "*.py" or "*.m~".
func CompileMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "fsscan.compile",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("pattern %q: %v: %w", p, err, domain.ErrInvalidConfig),
			}
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *Matcher) Match(name string) bool {
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Scanner) Scan(ctx context.Context, spec ports.ScanSpec) ([]domain.FileEntry, error) {
	root, err := filepath.Abs(spec.Root)
	if err != nil {
		return nil, &domain.OpError{Op: "fsscan.scan", Kind: domain.KindExecution, Path: spec.Root, Err: err}
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.OpError{Op: "fsscan.scan", Kind: domain.KindNotFound, Path: root, Err: domain.ErrNotFound}
		}
		return nil, &domain.OpError{Op: "fsscan.scan", Kind: domain.KindExecution, Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.OpError{
			Op:   "fsscan.scan",
			Kind: domain.KindInvalidConfig,
			Path: root,
			Err:  errors.New("backup root is not a directory"),
		}
	}

	matcher, err := CompileMatcher(spec.Patterns)
	if err != nil {
		return nil, err
	}

	excluded := map[string]bool{}
	for _, d := range spec.ExcludeDirs {
		if d = strings.TrimSpace(d); d != "" {
			excluded[d] = true
		}
	}
	skip := map[string]bool{}
	for _, p := range spec.Skip {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	var out []domain.FileEntry
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != root && d != nil && d.IsDir() && spec.OnSkip != nil && errors.Is(err, fs.ErrPermission) {
				spec.OnSkip(p, err)
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if p != root && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Only regular files; symlinks, sockets and devices are left out.
		if !d.Type().IsRegular() {
			return nil
		}
		if !matcher.Match(d.Name()) || skip[p] {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		out = append(out, domain.FileEntry{
			Path:    filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, &domain.OpError{Op: "fsscan.walk", Kind: domain.KindExecution, Path: root, Err: walkErr}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
