package digest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

const defaultConcurrency = 4

// Hasher computes SHA-256 digests of backup entries with a bounded worker pool.
type Hasher struct {
	concurrency int
}

type Option func(*Hasher)

func WithConcurrency(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

func New(opts ...Option) *Hasher {
	h := &Hasher{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ ports.Digester = (*Hasher)(nil)

// Digest returns a copy of entries with SHA256 filled in. The first failure
// cancels outstanding work.
func (h *Hasher) Digest(ctx context.Context, root string, entries []domain.FileEntry) ([]domain.FileEntry, error) {
	out := make([]domain.FileEntry, len(entries))
	copy(out, entries)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for i := range out {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(root, filepath.FromSlash(out[i].Path))
			sum, err := File(path)
			if err != nil {
				return &domain.OpError{
					Op:   "digest.file",
					Kind: domain.KindExecution,
					Path: path,
					Err:  err,
				}
			}
			out[i].SHA256 = sum
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// File returns the hex SHA-256 of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Reader(f)
}

// Reader returns the hex SHA-256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
