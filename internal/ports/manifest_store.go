package ports

import "github.com/aalvaropc/pizzapack/internal/domain"

// ManifestStore persists backup manifests for listing and verification.
type ManifestStore interface {
	Save(m domain.Manifest) (id string, err error)
	List() ([]domain.ManifestRef, error)
	FindByArchive(name string) (domain.Manifest, error)
}
