package ports

import "github.com/aalvaropc/pizzapack/internal/domain"

// IdentityProvider reports who is running the backup and where.
type IdentityProvider interface {
	Identity() domain.Identity
}
