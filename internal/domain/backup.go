package domain

import "time"

// FileEntry is one file selected for a backup. Path is relative to the scan
// root and always slash-separated.
type FileEntry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	SHA256  string    `json:"sha256,omitempty"`
}

// Identity is the user@host pair stamped into archive names.
type Identity struct {
	User string `json:"user"`
	Host string `json:"host"`
}

// BackupPlan is what a backup would write, computed without touching the archive.
type BackupPlan struct {
	Root        string
	ArchivePath string
	Identity    Identity
	Patterns    []string
	Entries     []FileEntry
	TotalBytes  int64

	// CreatedAt is the instant stamped into the archive name and the manifest.
	CreatedAt time.Time
	// Skipped lists unreadable directories left out of the scan.
	Skipped []string
}

// Manifest records a written archive so it can be listed and verified later.
type Manifest struct {
	ID           string      `json:"id"`
	ArchiveName  string      `json:"archive_name"`
	ArchivePath  string      `json:"archive_path"`
	Root         string      `json:"root"`
	User         string      `json:"user"`
	Host         string      `json:"host"`
	CreatedAt    time.Time   `json:"created_at"`
	Patterns     []string    `json:"patterns"`
	Compression  Compression `json:"compression"`
	Entries      []FileEntry `json:"entries"`
	TotalBytes   int64       `json:"total_bytes"`
	ArchiveBytes int64       `json:"archive_bytes"`
}

// ManifestRef is the index view of a manifest.
type ManifestRef struct {
	ID          string    `json:"id"`
	File        string    `json:"file"`
	ArchiveName string    `json:"archive_name"`
	CreatedAt   time.Time `json:"created_at"`
	Files       int       `json:"files"`
	TotalBytes  int64     `json:"total_bytes"`
}

// Ref builds the index entry for m.
func (m Manifest) Ref(file string) ManifestRef {
	return ManifestRef{
		ID:          m.ID,
		File:        file,
		ArchiveName: m.ArchiveName,
		CreatedAt:   m.CreatedAt,
		Files:       len(m.Entries),
		TotalBytes:  m.TotalBytes,
	}
}

// SumSize adds up entry sizes.
func SumSize(entries []FileEntry) int64 {
	var n int64
	for _, e := range entries {
		n += e.Size
	}
	return n
}

// VerifyReport lists the differences between an archive and its manifest.
type VerifyReport struct {
	ArchivePath string   `json:"archive_path"`
	ManifestID  string   `json:"manifest_id,omitempty"`
	Entries     int      `json:"entries"`
	Missing     []string `json:"missing,omitempty"`
	Extra       []string `json:"extra,omitempty"`
	Changed     []string `json:"changed,omitempty"`

	// Error is set when the archive could not be opened or read back.
	Error string `json:"error,omitempty"`
}

// Readable reports whether every entry of the archive could be read.
func (r VerifyReport) Readable() bool {
	return r.Error == ""
}

// OK reports whether the archive was readable and matched.
func (r VerifyReport) OK() bool {
	return r.Readable() && len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Changed) == 0
}
