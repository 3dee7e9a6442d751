package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"gopkg.in/yaml.v3"
)

// Load reads pizzapack.yaml from root. A missing file yields the defaults.
func Load(root string) (domain.Config, error) {
	path := filepath.Join(root, domain.ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	return Parse(path, b)
}

// Parse decodes YAML bytes; path is only used for error context.
func Parse(path string, b []byte) (domain.Config, error) {
	var dto YAMLFile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return MapConfig(path, dto.Pizzapack)
}

// Marshal renders cfg as pizzapack.yaml content.
func Marshal(cfg domain.Config) ([]byte, error) {
	return yaml.Marshal(ToYAML(cfg))
}
