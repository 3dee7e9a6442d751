package usecase

import (
	"path/filepath"
	"sort"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

type VerifyBackup struct {
	reader ports.ArchiveReader
	store  ports.ManifestStore
}

// NewVerifyBackup builds the use case; store may be nil to only check integrity.
func NewVerifyBackup(reader ports.ArchiveReader, store ports.ManifestStore) *VerifyBackup {
	return &VerifyBackup{reader: reader, store: store}
}

// Execute reads every entry of the archive. When a manifest for the archive
// exists, entries must match it exactly by path and digest.
func (uc *VerifyBackup) Execute(archivePath string) (domain.VerifyReport, error) {
	report := domain.VerifyReport{ArchivePath: archivePath}

	entries, err := uc.reader.Entries(archivePath)
	if err != nil {
		report.Error = err.Error()
		return report, err
	}
	report.Entries = len(entries)

	if uc.store == nil {
		return report, nil
	}
	m, err := uc.store.FindByArchive(filepath.Base(archivePath))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return report, nil
		}
		return report, err
	}
	report.ManifestID = m.ID

	report.Missing, report.Extra, report.Changed = diffEntries(m.Entries, entries)
	if !report.OK() {
		return report, &domain.OpError{
			Op:   "backup.verify",
			Kind: domain.KindMismatch,
			Path: archivePath,
			Err:  domain.ErrMismatch,
		}
	}
	return report, nil
}

func diffEntries(want, got []domain.FileEntry) (missing, extra, changed []string) {
	gotByPath := make(map[string]domain.FileEntry, len(got))
	for _, e := range got {
		gotByPath[e.Path] = e
	}
	seen := make(map[string]bool, len(want))
	for _, w := range want {
		seen[w.Path] = true
		g, ok := gotByPath[w.Path]
		if !ok {
			missing = append(missing, w.Path)
			continue
		}
		if w.SHA256 != "" && w.SHA256 != g.SHA256 {
			changed = append(changed, w.Path)
		}
	}
	for _, g := range got {
		if !seen[g.Path] {
			extra = append(extra, g.Path)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	sort.Strings(changed)
	return missing, extra, changed
}
