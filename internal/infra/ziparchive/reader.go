package ziparchive

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/infra/digest"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

var _ ports.ArchiveReader = (*Reader)(nil)

// Entries reads every file in the archive. Reading to EOF checks each CRC,
// so a corrupted entry surfaces as a mismatch error.
func (r *Reader) Entries(path string) ([]domain.FileEntry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.OpError{Op: "ziparchive.open", Kind: domain.KindNotFound, Path: path, Err: domain.ErrNotFound}
		}
		return nil, &domain.OpError{Op: "ziparchive.open", Kind: domain.KindMismatch, Path: path, Err: err}
	}
	defer zr.Close()

	out := make([]domain.FileEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &domain.OpError{Op: "ziparchive.entry", Kind: domain.KindMismatch, Path: f.Name, Err: err}
		}
		sum, err := digest.Reader(rc)
		_ = rc.Close()
		if err != nil {
			return nil, &domain.OpError{Op: "ziparchive.entry", Kind: domain.KindMismatch, Path: f.Name, Err: err}
		}
		out = append(out, domain.FileEntry{
			Path:    f.Name,
			Size:    int64(f.UncompressedSize64),
			ModTime: f.Modified,
			SHA256:  sum,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
