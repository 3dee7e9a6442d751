package ports

import "github.com/aalvaropc/pizzapack/internal/domain"

type WorkspaceInitializer interface {
	Init(root string, cfg domain.Config, force bool) error
}
