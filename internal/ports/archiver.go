package ports

import (
	"context"

	"github.com/aalvaropc/pizzapack/internal/domain"
)

// ArchiveWriter writes the selected entries under root into a new archive at dst.
type ArchiveWriter interface {
	Write(ctx context.Context, root string, entries []domain.FileEntry, dst string) (size int64, err error)
}

// ArchiveReader lists entries of an existing archive with recomputed digests.
type ArchiveReader interface {
	Entries(path string) ([]domain.FileEntry, error)
}
