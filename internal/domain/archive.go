package domain

import "io"

type ArchiveEntry interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type ArchiveReader interface {
	Entries() []ArchiveEntry
	Close() error
}

// Archiver is the zip container capability: enumerate and read entries of
// an existing archive, and pack a single file into a new one.
type Archiver interface {
	Open(path string) (ArchiveReader, error)
	// Compress writes a new archive at destPath holding the contents of
	// srcPath under entryName, at maximum compression.
	Compress(srcPath, destPath, entryName string) error
}
