package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/infra/config"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

// Init lays out a workspace: pizzapack.yaml, the state dir and the tmp folder.
// An existing pizzapack.yaml is kept unless force is set.
func (i *Initializer) Init(root string, cfg domain.Config, force bool) error {
	root = filepath.Clean(root)

	tmpDir := cfg.Tmp.Dir
	if !filepath.IsAbs(tmpDir) {
		tmpDir = filepath.Join(root, tmpDir)
	}

	dirs := []string{
		filepath.Join(root, domain.StateDir, "logs"),
		filepath.Join(root, domain.StateDir, "backups"),
		tmpDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.OpError{Op: "fsworkspace.mkdir", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}

	if err := ensureGitignore(root, gitignoreEntries(root, tmpDir)); err != nil {
		return &domain.OpError{Op: "fsworkspace.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}

	dst := filepath.Join(root, domain.ConfigFile)
	if !force {
		if _, statErr := os.Stat(dst); statErr == nil {
			return nil
		}
	}

	b, err := config.Marshal(cfg)
	if err != nil {
		return &domain.OpError{Op: "fsworkspace.config", Kind: domain.KindExecution, Path: dst, Err: err}
	}
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return &domain.OpError{Op: "fsworkspace.config", Kind: domain.KindExecution, Path: dst, Err: err}
	}
	return nil
}

func gitignoreEntries(root, tmpDir string) []string {
	entries := []string{domain.StateDir + "/"}
	if rel, err := filepath.Rel(root, tmpDir); err == nil && !strings.HasPrefix(rel, "..") {
		entries = append(entries, filepath.ToSlash(rel)+"/")
	}
	entries = append(entries, "*.zip.partial")
	return entries
}

func ensureGitignore(root string, entries []string) error {
	const header = "# pizzapack"

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
