package config

// YAMLFile is the on-disk shape of pizzapack.yaml.
type YAMLFile struct {
	Pizzapack YAMLConfig `yaml:"pizzapack"`
}

type YAMLConfig struct {
	Backup YAMLBackup `yaml:"backup"`
	Tmp    YAMLTmp    `yaml:"tmp"`
}

type YAMLBackup struct {
	Patterns    []string `yaml:"patterns,omitempty"`
	ExcludeDirs []string `yaml:"exclude_dirs,omitempty"`
	OutputDir   string   `yaml:"output_dir,omitempty"`
	Name        string   `yaml:"name,omitempty"`
	Compression string   `yaml:"compression,omitempty"`
	Level       *int     `yaml:"level,omitempty"`
	Concurrency *int     `yaml:"concurrency,omitempty"`
	Manifest    *bool    `yaml:"manifest,omitempty"`
}

type YAMLTmp struct {
	Dir   string              `yaml:"dir,omitempty"`
	Kinds map[string][]string `yaml:"kinds,omitempty"`
}
