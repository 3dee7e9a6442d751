package ports

import (
	"context"

	"github.com/aalvaropc/pizzapack/internal/domain"
)

// ScanSpec describes which files under Root belong in a backup.
type ScanSpec struct {
	Root        string
	Patterns    []string
	ExcludeDirs []string
	// Skip holds absolute paths that must never be selected (e.g. the archive being written).
	Skip []string
	// OnSkip, when set, is told about subdirectories left out because they
	// could not be read. Without it those directories fail the scan.
	OnSkip func(path string, err error)
}

// FileScanner selects backup candidates from a directory tree.
type FileScanner interface {
	Scan(ctx context.Context, spec ScanSpec) ([]domain.FileEntry, error)
}

// Digester fills in content digests for scanned entries.
type Digester interface {
	Digest(ctx context.Context, root string, entries []domain.FileEntry) ([]domain.FileEntry, error)
}
