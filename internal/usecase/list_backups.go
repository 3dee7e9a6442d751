package usecase

import (
	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

type ListBackups struct {
	store ports.ManifestStore
}

func NewListBackups(store ports.ManifestStore) *ListBackups {
	return &ListBackups{store: store}
}

func (uc *ListBackups) Execute() ([]domain.ManifestRef, error) {
	return uc.store.List()
}
