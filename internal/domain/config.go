package domain

// Config represents the pizzapack configuration loaded from pizzapack.yaml.
type Config struct {
	Backup BackupConfig
	Tmp    TmpConfig
}

// Compression selects how archive entries are stored.
type Compression string

const (
	CompressionDeflate Compression = "deflate"
	CompressionStore   Compression = "store"
)

// Deflate levels accepted in configuration. 0 keeps deflate framing without compressing.
const (
	MinDeflateLevel = 0
	MaxDeflateLevel = 9
)

type BackupConfig struct {
	Patterns    []string
	ExcludeDirs []string
	// OutputDir is where archives are written. Empty means the scanned directory.
	OutputDir   string
	NameFormat  string
	Compression Compression
	Level       int
	Concurrency int
	Manifest    bool
}

type TmpConfig struct {
	Dir   string
	Kinds map[TmpKind][]string
}

// DefaultPatterns is the source extension set archived by a backup.
var DefaultPatterns = []string{"*.m", "*.asv", "*.m~", "*.pynb", "*.py", "*.sh", "*.txt"}

// DefaultNameFormat yields <dir>_<user>@<host>_<YYYY_MM_DD__HH-MM>.zip.
const DefaultNameFormat = "{{dir}}_{{user}}@{{host}}_{{$timestamp}}.zip"

// StateDir holds logs and manifests inside a workspace.
const StateDir = ".pizzapack"

// ConfigFile is the workspace marker and configuration file name.
const ConfigFile = "pizzapack.yaml"

// DefaultConfig reproduces the plain backup behaviour when pizzapack.yaml is absent.
func DefaultConfig() Config {
	return Config{
		Backup: BackupConfig{
			Patterns:    append([]string(nil), DefaultPatterns...),
			ExcludeDirs: []string{},
			NameFormat:  DefaultNameFormat,
			Compression: CompressionDeflate,
			Level:       6,
			Concurrency: 4,
			Manifest:    true,
		},
		Tmp: TmpConfig{
			Dir:   "tmp",
			Kinds: DefaultTmpKinds(),
		},
	}
}

// DefaultTmpKinds maps each generator output kind to its filename patterns.
func DefaultTmpKinds() map[TmpKind][]string {
	return map[TmpKind][]string{
		TmpScript:     {"*.inp", "*.in", "*.lmp"},
		TmpDScript:    {"*.dscript", "*.d.txt"},
		TmpReport:     {"*.html", "*.htm"},
		TmpDump:       {"dump.*", "*.dump"},
		TmpForcefield: {"*.ff", "*.forcefield"},
	}
}
