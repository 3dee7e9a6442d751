package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

// BackupRequest selects what to archive and where the archive goes.
type BackupRequest struct {
	// Dir is the directory to scan. Its base name goes into the archive name.
	Dir string
	// OutputDir overrides the configured output directory.
	OutputDir string
	// NoManifest skips recording the backup in the manifest store.
	NoManifest bool
}

// BackupResult is what a successful backup produced.
type BackupResult struct {
	Plan       domain.BackupPlan
	Manifest   domain.Manifest
	ManifestID string
}

type CreateBackup struct {
	cfg      domain.BackupConfig
	scanner  ports.FileScanner
	digester ports.Digester
	writer   ports.ArchiveWriter
	store    ports.ManifestStore
	identity ports.IdentityProvider
	names    *domain.NameResolver
	log      *slog.Logger
}

type BackupOption func(*CreateBackup)

func WithNameResolver(r *domain.NameResolver) BackupOption {
	return func(uc *CreateBackup) {
		if r != nil {
			uc.names = r
		}
	}
}

func WithLogger(l *slog.Logger) BackupOption {
	return func(uc *CreateBackup) {
		if l != nil {
			uc.log = l
		}
	}
}

// NewCreateBackup wires a backup pipeline. store may be nil to disable manifests.
func NewCreateBackup(
	cfg domain.BackupConfig,
	scanner ports.FileScanner,
	digester ports.Digester,
	writer ports.ArchiveWriter,
	store ports.ManifestStore,
	identity ports.IdentityProvider,
	opts ...BackupOption,
) *CreateBackup {
	uc := &CreateBackup{
		cfg:      cfg,
		scanner:  scanner,
		digester: digester,
		writer:   writer,
		store:    store,
		identity: identity,
		names:    domain.NewNameResolver(),
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Plan resolves the archive path and the file selection without writing anything.
func (uc *CreateBackup) Plan(ctx context.Context, req BackupRequest) (domain.BackupPlan, error) {
	dir := req.Dir
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return domain.BackupPlan{}, &domain.OpError{Op: "backup.plan", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	at := uc.names.Now()
	id := uc.identity.Identity()
	name, err := uc.names.ArchiveNameAt(uc.cfg.NameFormat, dirLabel(root), id, at)
	if err != nil {
		return domain.BackupPlan{}, err
	}

	outDir := resolveOutputDir(root, req.OutputDir, uc.cfg.OutputDir)
	archivePath := filepath.Join(outDir, name)

	var skipped []string
	entries, err := uc.scanner.Scan(ctx, ports.ScanSpec{
		Root:        root,
		Patterns:    uc.cfg.Patterns,
		ExcludeDirs: uc.cfg.ExcludeDirs,
		Skip:        []string{archivePath, archivePath + ".partial"},
		OnSkip: func(path string, err error) {
			uc.log.Warn("backup.dir_skipped", "path", path, "err", err)
			skipped = append(skipped, path)
		},
	})
	if err != nil {
		return domain.BackupPlan{}, err
	}
	if len(entries) == 0 {
		return domain.BackupPlan{}, &domain.OpError{
			Op:   "backup.plan",
			Kind: domain.KindNotFound,
			Path: root,
			Err:  domain.ErrNoMatches,
		}
	}

	return domain.BackupPlan{
		Root:        root,
		ArchivePath: archivePath,
		CreatedAt:   at,
		Skipped:     skipped,
		Identity:    id,
		Patterns:    append([]string(nil), uc.cfg.Patterns...),
		Entries:     entries,
		TotalBytes:  domain.SumSize(entries),
	}, nil
}

// Execute plans, digests, writes the archive and records its manifest.
// If only the manifest fails, the archive is kept and the error returned
// alongside a populated result.
func (uc *CreateBackup) Execute(ctx context.Context, req BackupRequest) (BackupResult, error) {
	plan, err := uc.Plan(ctx, req)
	if err != nil {
		return BackupResult{}, err
	}
	uc.log.Debug("backup.planned", "root", plan.Root, "archive", plan.ArchivePath, "files", len(plan.Entries))

	entries, err := uc.digester.Digest(ctx, plan.Root, plan.Entries)
	if err != nil {
		return BackupResult{Plan: plan}, err
	}
	plan.Entries = entries

	size, err := uc.writer.Write(ctx, plan.Root, plan.Entries, plan.ArchivePath)
	if err != nil {
		uc.log.Error("backup.failed", "archive", plan.ArchivePath, "err", err)
		return BackupResult{Plan: plan}, err
	}

	m := domain.Manifest{
		ArchiveName:  filepath.Base(plan.ArchivePath),
		ArchivePath:  plan.ArchivePath,
		Root:         plan.Root,
		User:         plan.Identity.User,
		Host:         plan.Identity.Host,
		CreatedAt:    plan.CreatedAt,
		Patterns:     plan.Patterns,
		Compression:  uc.cfg.Compression,
		Entries:      plan.Entries,
		TotalBytes:   plan.TotalBytes,
		ArchiveBytes: size,
	}
	res := BackupResult{Plan: plan, Manifest: m}
	uc.log.Info("backup.created", "archive", plan.ArchivePath, "files", len(plan.Entries), "bytes", size)

	if req.NoManifest || !uc.cfg.Manifest || uc.store == nil {
		return res, nil
	}

	id, err := uc.store.Save(m)
	res.ManifestID = id
	res.Manifest.ID = id
	if err != nil {
		uc.log.Warn("backup.manifest_failed", "archive", plan.ArchivePath, "err", err)
		return res, fmt.Errorf("archive written but manifest not saved: %w", err)
	}
	return res, nil
}

func resolveOutputDir(root, flag, configured string) string {
	out := flag
	if out == "" {
		out = configured
	}
	if out == "" {
		return root
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(root, out)
	}
	return filepath.Clean(out)
}

// dirLabel is the directory's base name, with a stand-in for filesystem roots.
func dirLabel(root string) string {
	base := filepath.Base(root)
	if base == string(filepath.Separator) || base == "." || base == "" || filepath.VolumeName(root)+string(filepath.Separator) == root {
		return "root"
	}
	return base
}
