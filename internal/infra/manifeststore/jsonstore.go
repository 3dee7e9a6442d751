package manifeststore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

const backupsDir = "backups"
const indexFile = "index.jsonl"

// JSONStore keeps one JSON document per backup under .pizzapack/backups and
// a JSONL index for cheap listing.
type JSONStore struct {
	dir string
	now func() time.Time
}

type Option func(*JSONStore)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, opts ...Option) *JSONStore {
	s := &JSONStore{
		dir: filepath.Join(root, domain.StateDir, backupsDir),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ManifestStore = (*JSONStore)(nil)

// Dir is where manifests are written.
func (s *JSONStore) Dir() string {
	return s.dir
}

func (s *JSONStore) Save(m domain.Manifest) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "manifeststore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if strings.TrimSpace(m.ID) == "" {
		m.ID = fmt.Sprintf("%s_%s", m.CreatedAt.UTC().Format("20060102T150405Z"), slugify(m.ArchiveName))
	}

	filename := m.ID + ".json"
	path := filepath.Join(s.dir, filename)

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "manifeststore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "manifeststore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "manifeststore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if err := s.appendIndex(m.Ref(filename)); err != nil {
		return m.ID, &domain.OpError{
			Op:   "manifeststore.index",
			Kind: domain.KindExecution,
			Path: filepath.Join(s.dir, indexFile),
			Err:  err,
		}
	}

	return m.ID, nil
}

func (s *JSONStore) appendIndex(ref domain.ManifestRef) error {
	line, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// List returns index entries newest first. Malformed lines are skipped.
func (s *JSONStore) List() ([]domain.ManifestRef, error) {
	path := filepath.Join(s.dir, indexFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.ManifestRef{}, nil
		}
		return nil, &domain.OpError{Op: "manifeststore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer f.Close()

	refs := []domain.ManifestRef{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ref domain.ManifestRef
		if err := json.Unmarshal([]byte(line), &ref); err != nil || ref.ID == "" {
			continue
		}
		refs = append(refs, ref)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.OpError{Op: "manifeststore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].CreatedAt.After(refs[j].CreatedAt) })
	return refs, nil
}

// Load reads a manifest by ID.
func (s *JSONStore) Load(id string) (domain.Manifest, error) {
	path := filepath.Join(s.dir, id+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return domain.Manifest{}, &domain.OpError{Op: "manifeststore.load", Kind: kind, Path: path, Err: err}
	}

	var m domain.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return domain.Manifest{}, &domain.OpError{Op: "manifeststore.load", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	return m, nil
}

// FindByArchive returns the newest manifest recorded for an archive file name.
func (s *JSONStore) FindByArchive(name string) (domain.Manifest, error) {
	refs, err := s.List()
	if err != nil {
		return domain.Manifest{}, err
	}
	base := filepath.Base(name)
	for _, r := range refs {
		if r.ArchiveName == base {
			return s.Load(r.ID)
		}
	}
	return domain.Manifest{}, &domain.OpError{
		Op:   "manifeststore.find",
		Kind: domain.KindNotFound,
		Path: base,
		Err:  domain.ErrNotFound,
	}
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".zip")
	if s == "" {
		return "backup"
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "backup"
	}
	return out
}
