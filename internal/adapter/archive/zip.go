package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/custodianhq/custos/internal/domain"
)

// ZipArchiver reads and writes zip containers.
type ZipArchiver struct{}

var _ domain.Archiver = (*ZipArchiver)(nil)

func NewZip() *ZipArchiver {
	return &ZipArchiver{}
}

func (z *ZipArchiver) Open(path string) (domain.ArchiveReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return &zipReader{rc: rc}, nil
}

func (z *ZipArchiver) Compress(srcPath, destPath, entryName string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer dest.Close()

	zw := zip.NewWriter(dest)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	entry, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return nil
}

type zipReader struct {
	rc *zip.ReadCloser
}

func (r *zipReader) Entries() []domain.ArchiveEntry {
	entries := make([]domain.ArchiveEntry, 0, len(r.rc.File))
	for _, f := range r.rc.File {
		entries = append(entries, zipEntry{f})
	}
	return entries
}

func (r *zipReader) Close() error {
	return r.rc.Close()
}

type zipEntry struct {
	f *zip.File
}

func (e zipEntry) Name() string { return e.f.Name }

func (e zipEntry) Size() int64 { return int64(e.f.UncompressedSize64) }

func (e zipEntry) Open() (io.ReadCloser, error) { return e.f.Open() }
