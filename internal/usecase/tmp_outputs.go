package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

// ListTmp lists generator outputs in a tmp folder.
type ListTmp struct {
	catalog ports.TmpCatalog
	dir     string
	now     func() time.Time
}

type TmpOption func(*tmpOptions)

type tmpOptions struct {
	now func() time.Time
	log *slog.Logger
}

// WithClock overrides the clock used for age filters (useful for tests).
func WithClock(now func() time.Time) TmpOption {
	return func(o *tmpOptions) { o.now = now }
}

func WithTmpLogger(l *slog.Logger) TmpOption {
	return func(o *tmpOptions) {
		if l != nil {
			o.log = l
		}
	}
}

func buildTmpOptions(opts []TmpOption) tmpOptions {
	o := tmpOptions{
		now: time.Now,
		log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewListTmp(catalog ports.TmpCatalog, dir string, opts ...TmpOption) *ListTmp {
	o := buildTmpOptions(opts)
	return &ListTmp{catalog: catalog, dir: dir, now: o.now}
}

// Dir is the tmp folder being listed.
func (uc *ListTmp) Dir() string {
	return uc.dir
}

func (uc *ListTmp) Execute(filter domain.TmpFilter) ([]domain.TmpGroup, error) {
	groups, err := uc.catalog.Groups(uc.dir)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := make([]domain.TmpGroup, 0, len(groups))
	for _, g := range groups {
		if filter.Match(g, now) {
			out = append(out, g)
		}
	}
	return out, nil
}

// CleanResult summarizes a cleanup.
type CleanResult struct {
	Groups int   `json:"groups"`
	Files  int   `json:"files"`
	Bytes  int64 `json:"bytes"`
}

// CleanTmp deletes every file of the given groups from the tmp folder.
type CleanTmp struct {
	catalog ports.TmpCatalog
	dir     string
	log     *slog.Logger
}

func NewCleanTmp(catalog ports.TmpCatalog, dir string, opts ...TmpOption) *CleanTmp {
	o := buildTmpOptions(opts)
	return &CleanTmp{catalog: catalog, dir: dir, log: o.log}
}

func (uc *CleanTmp) Execute(groups []domain.TmpGroup) (CleanResult, error) {
	var files []domain.TmpFile
	for _, g := range groups {
		files = append(files, g.Files...)
	}
	if len(files) == 0 {
		return CleanResult{}, nil
	}

	n, freed, err := uc.catalog.Remove(uc.dir, files)
	res := CleanResult{Groups: len(groups), Files: n, Bytes: freed}
	if err != nil {
		uc.log.Error("tmp.remove_failed", "dir", uc.dir, "removed", n, "err", err)
		return res, err
	}
	uc.log.Info("tmp.removed", "dir", uc.dir, "groups", len(groups), "files", n, "bytes", freed)
	return res, nil
}
