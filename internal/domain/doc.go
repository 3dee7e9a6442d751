// Package domain contains the core domain model for pizzapack.
//
// The domain is persistence-agnostic: it does not depend on YAML parsing, zip
// encoding, or the filesystem. Infra adapters map into/from these types.
package domain
