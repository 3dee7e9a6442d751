package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/usecase"
)

func checkFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pretty", "json":
		return nil
	default:
		return &domain.OpError{
			Op:   "cli.format",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: --format must be pretty or json, got %q", domain.ErrInvalidConfig, format),
		}
	}
}

func isJSON(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), "json")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func archiveDir(path string) string {
	return filepath.Dir(path)
}

func printPlan(w io.Writer, plan domain.BackupPlan, format string) error {
	if isJSON(format) {
		return writeJSON(w, plan)
	}

	fmt.Fprintf(w, "Would write %s\n", plan.ArchivePath)
	for _, e := range plan.Entries {
		fmt.Fprintf(w, "  %s\n", e.Path)
	}
	fmt.Fprintf(w, "%d file(s), %s\n", len(plan.Entries), humanize.Bytes(uint64(plan.TotalBytes)))
	return nil
}

func warnSkipped(w io.Writer, plan domain.BackupPlan) {
	for _, p := range plan.Skipped {
		fmt.Fprintf(w, "warning: skipped unreadable directory %s\n", p)
	}
}

func printBackup(w io.Writer, res usecase.BackupResult, format string) error {
	if isJSON(format) {
		return writeJSON(w, res.Manifest)
	}

	m := res.Manifest
	fmt.Fprintf(w, "Archive:   %s\n", m.ArchivePath)
	fmt.Fprintf(w, "Files:     %d (%s)\n", len(m.Entries), humanize.Bytes(uint64(m.TotalBytes)))
	fmt.Fprintf(w, "Written:   %s\n", humanize.Bytes(uint64(m.ArchiveBytes)))
	if res.ManifestID != "" {
		fmt.Fprintf(w, "Manifest:  %s\n", res.ManifestID)
	}
	return nil
}

func printBackupRefs(w io.Writer, root string, refs []domain.ManifestRef, format string) error {
	if isJSON(format) {
		if refs == nil {
			refs = []domain.ManifestRef{}
		}
		return writeJSON(w, refs)
	}

	if len(refs) == 0 {
		fmt.Fprintf(w, "No backups recorded in %s\n", root)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARCHIVE\tFILES\tSIZE\tCREATED")
	for _, r := range refs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.ArchiveName, r.Files, humanize.Bytes(uint64(r.TotalBytes)), humanize.Time(r.CreatedAt))
	}
	return tw.Flush()
}

func printVerify(w io.Writer, r domain.VerifyReport, format string) error {
	if isJSON(format) {
		return writeJSON(w, struct {
			domain.VerifyReport
			OK bool `json:"ok"`
		}{r, r.OK()})
	}

	if r.ArchivePath == "" {
		return nil
	}
	if !r.Readable() {
		fmt.Fprintf(w, "UNREADABLE  %s\n", r.ArchivePath)
		fmt.Fprintf(w, "  %s\n", r.Error)
		return nil
	}

	status := "OK"
	if !r.OK() {
		status = "MISMATCH"
	}
	fmt.Fprintf(w, "%s  %s (%d entries)\n", status, r.ArchivePath, r.Entries)
	if r.ManifestID != "" {
		fmt.Fprintf(w, "manifest: %s\n", r.ManifestID)
	} else {
		fmt.Fprintln(w, "manifest: none recorded, integrity only")
	}
	for _, p := range r.Missing {
		fmt.Fprintf(w, "  missing  %s\n", p)
	}
	for _, p := range r.Extra {
		fmt.Fprintf(w, "  extra    %s\n", p)
	}
	for _, p := range r.Changed {
		fmt.Fprintf(w, "  changed  %s\n", p)
	}
	return nil
}

type tmpGroupView struct {
	Stem   string           `json:"stem"`
	Kinds  []domain.TmpKind `json:"kinds"`
	Bytes  int64            `json:"bytes"`
	Newest time.Time        `json:"newest"`
	Files  []domain.TmpFile `json:"files"`
}

func printTmpGroups(w io.Writer, dir string, groups []domain.TmpGroup, format string) error {
	if isJSON(format) {
		out := make([]tmpGroupView, 0, len(groups))
		for _, g := range groups {
			out = append(out, tmpGroupView{
				Stem:   g.Stem,
				Kinds:  groupKinds(g),
				Bytes:  g.Size(),
				Newest: g.Newest(),
				Files:  g.Files,
			})
		}
		return writeJSON(w, out)
	}

	if len(groups) == 0 {
		fmt.Fprintf(w, "Nothing in %s\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEM\tFILES\tKINDS\tSIZE\tNEWEST")
	var total int64
	for _, g := range groups {
		total += g.Size()
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			g.Stem, len(g.Files), kindLabel(groupKinds(g)), humanize.Bytes(uint64(g.Size())), humanize.Time(g.Newest()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d group(s), %s in %s\n", len(groups), humanize.Bytes(uint64(total)), dir)
	return nil
}

func printClean(w io.Writer, res usecase.CleanResult, format string) error {
	if isJSON(format) {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "Removed %d file(s) from %d group(s), freed %s\n",
		res.Files, res.Groups, humanize.Bytes(uint64(res.Bytes)))
	return nil
}

// groupKinds lists the kinds present in g in catalog order.
func groupKinds(g domain.TmpGroup) []domain.TmpKind {
	var out []domain.TmpKind
	for _, k := range domain.TmpKindOrder {
		if g.HasKind(k) {
			out = append(out, k)
		}
	}
	if g.HasKind(domain.TmpOther) {
		out = append(out, domain.TmpOther)
	}
	return out
}

func kindLabel(kinds []domain.TmpKind) string {
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ",")
}
