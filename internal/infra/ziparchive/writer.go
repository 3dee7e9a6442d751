package ziparchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/aalvaropc/pizzapack/internal/domain"
	"github.com/aalvaropc/pizzapack/internal/ports"
)

const partialSuffix = ".partial"

// Writer produces zip archives. Entries are deflated with klauspost/compress
// at the configured level, or stored as-is.
type Writer struct {
	compression domain.Compression
	level       int
}

type Option func(*Writer)

func WithCompression(c domain.Compression) Option {
	return func(w *Writer) {
		if c != "" {
			w.compression = c
		}
	}
}

func WithLevel(level int) Option {
	return func(w *Writer) { w.level = level }
}

func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		compression: domain.CompressionDeflate,
		level:       6,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ ports.ArchiveWriter = (*Writer)(nil)

// Write never replaces an existing dst. The archive is assembled in
// dst+".partial" and renamed into place only once complete.
func (w *Writer) Write(ctx context.Context, root string, entries []domain.FileEntry, dst string) (int64, error) {
	method, err := w.method()
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, &domain.OpError{Op: "ziparchive.mkdir", Kind: domain.KindExecution, Path: filepath.Dir(dst), Err: err}
	}

	// Reserve dst so concurrent runs in the same minute cannot clobber each other.
	placeholder, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, &domain.OpError{
				Op:   "ziparchive.create",
				Kind: domain.KindConflict,
				Path: dst,
				Err:  errors.New("archive already exists"),
			}
		}
		return 0, &domain.OpError{Op: "ziparchive.create", Kind: domain.KindExecution, Path: dst, Err: err}
	}
	_ = placeholder.Close()

	tmp := dst + partialSuffix
	fail := func(op string, path string, err error) (int64, error) {
		_ = os.Remove(tmp)
		_ = os.Remove(dst)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
	}

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fail("ziparchive.create", tmp, err)
	}

	zw := zip.NewWriter(f)
	level := w.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return fail("ziparchive.write", tmp, err)
		}
		src := filepath.Join(root, filepath.FromSlash(e.Path))
		if err := addFile(zw, src, e, method); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return fail("ziparchive.add", src, err)
		}
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fail("ziparchive.finish", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fail("ziparchive.sync", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fail("ziparchive.close", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fail("ziparchive.rename", dst, err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, &domain.OpError{Op: "ziparchive.stat", Kind: domain.KindExecution, Path: dst, Err: err}
	}
	return info.Size(), nil
}

func (w *Writer) method() (uint16, error) {
	switch w.compression {
	case domain.CompressionDeflate:
		if w.level < domain.MinDeflateLevel || w.level > domain.MaxDeflateLevel {
			return 0, &domain.OpError{
				Op:   "ziparchive.config",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("deflate level %d out of range: %w", w.level, domain.ErrInvalidConfig),
			}
		}
		return zip.Deflate, nil
	case domain.CompressionStore:
		return zip.Store, nil
	default:
		return 0, &domain.OpError{
			Op:   "ziparchive.config",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unsupported compression %q: %w", w.compression, domain.ErrInvalidConfig),
		}
	}
}

func addFile(zw *zip.Writer, src string, e domain.FileEntry, method uint16) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	hdr := &zip.FileHeader{
		Name:     e.Path,
		Method:   method,
		Modified: fi.ModTime(),
	}
	hdr.SetMode(fi.Mode())

	out, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	return err
}
