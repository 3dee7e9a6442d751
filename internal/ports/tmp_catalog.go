package ports

import "github.com/aalvaropc/pizzapack/internal/domain"

// TmpCatalog lists and removes generator outputs in a tmp folder.
type TmpCatalog interface {
	Groups(dir string) ([]domain.TmpGroup, error)
	Remove(dir string, files []domain.TmpFile) (removed int, bytes int64, err error)
}
