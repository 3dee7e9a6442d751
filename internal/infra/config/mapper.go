package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aalvaropc/pizzapack/internal/domain"
)

// MapConfig applies parsed values on top of domain.DefaultConfig.
func MapConfig(path string, y YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if y.Backup.Patterns != nil {
		patterns := make([]string, 0, len(y.Backup.Patterns))
		for _, p := range y.Backup.Patterns {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			return domain.Config{}, invalidField(path, "backup.patterns", "at least one pattern is required")
		}
		cfg.Backup.Patterns = patterns
	}
	if y.Backup.ExcludeDirs != nil {
		cfg.Backup.ExcludeDirs = append([]string{}, y.Backup.ExcludeDirs...)
	}
	if s := strings.TrimSpace(y.Backup.OutputDir); s != "" {
		cfg.Backup.OutputDir = s
	}
	if s := strings.TrimSpace(y.Backup.Name); s != "" {
		cfg.Backup.NameFormat = s
	}
	if s := strings.TrimSpace(y.Backup.Compression); s != "" {
		c, err := parseCompression(s)
		if err != nil {
			return domain.Config{}, invalidField(path, "backup.compression", err.Error())
		}
		cfg.Backup.Compression = c
	}
	if y.Backup.Level != nil {
		if *y.Backup.Level < domain.MinDeflateLevel || *y.Backup.Level > domain.MaxDeflateLevel {
			return domain.Config{}, invalidField(path, "backup.level",
				fmt.Sprintf("level %d out of range %d..%d", *y.Backup.Level, domain.MinDeflateLevel, domain.MaxDeflateLevel))
		}
		cfg.Backup.Level = *y.Backup.Level
	}
	if y.Backup.Concurrency != nil {
		if *y.Backup.Concurrency < 1 {
			return domain.Config{}, invalidField(path, "backup.concurrency", "must be >= 1")
		}
		cfg.Backup.Concurrency = *y.Backup.Concurrency
	}
	if y.Backup.Manifest != nil {
		cfg.Backup.Manifest = *y.Backup.Manifest
	}

	if s := strings.TrimSpace(y.Tmp.Dir); s != "" {
		cfg.Tmp.Dir = s
	}
	for name, patterns := range y.Tmp.Kinds {
		kind, ok := domain.ParseTmpKind(name)
		if !ok || kind == domain.TmpOther {
			return domain.Config{}, invalidField(path, "tmp.kinds."+name, "unknown kind")
		}
		cfg.Tmp.Kinds[kind] = append([]string(nil), patterns...)
	}

	return cfg, nil
}

// ToYAML renders cfg back into the file shape. Kinds are emitted in a stable order.
func ToYAML(cfg domain.Config) YAMLFile {
	level := cfg.Backup.Level
	conc := cfg.Backup.Concurrency
	manifest := cfg.Backup.Manifest

	kinds := map[string][]string{}
	names := make([]string, 0, len(cfg.Tmp.Kinds))
	for k := range cfg.Tmp.Kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	for _, n := range names {
		kinds[n] = cfg.Tmp.Kinds[domain.TmpKind(n)]
	}

	return YAMLFile{Pizzapack: YAMLConfig{
		Backup: YAMLBackup{
			Patterns:    cfg.Backup.Patterns,
			ExcludeDirs: cfg.Backup.ExcludeDirs,
			OutputDir:   cfg.Backup.OutputDir,
			Name:        cfg.Backup.NameFormat,
			Compression: string(cfg.Backup.Compression),
			Level:       &level,
			Concurrency: &conc,
			Manifest:    &manifest,
		},
		Tmp: YAMLTmp{
			Dir:   cfg.Tmp.Dir,
			Kinds: kinds,
		},
	}}
}

func parseCompression(s string) (domain.Compression, error) {
	switch c := domain.Compression(strings.ToLower(s)); c {
	case domain.CompressionDeflate, domain.CompressionStore:
		return c, nil
	default:
		return "", fmt.Errorf("unsupported compression %q (expected deflate|store)", s)
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
