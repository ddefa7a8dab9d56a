package usecase

import (
	"bytes"
	"io"
	"os"

	"github.com/custodianhq/custos/internal/domain"
)

// compareChunkSize bounds how much of each artifact is held in memory at
// once while comparing.
const compareChunkSize = 1 << 20

// Comparator decides whether two backup artifacts hold identical content.
// Either side may be a plain file or a zip container.
type Comparator struct {
	archiver domain.Archiver
	logger   Logger
}

func NewComparator(archiver domain.Archiver, logger Logger) *Comparator {
	return &Comparator{archiver: archiver, logger: logger}
}

// Same reports whether the two artifacts are byte-identical. Any read
// error is logged and reported as "not same", so a broken comparison can
// never deduplicate a backup.
func (c *Comparator) Same(pathA string, aIsZip bool, pathB string, bIsZip bool) bool {
	same, err := c.compare(pathA, aIsZip, pathB, bIsZip)
	if err != nil {
		c.logger.Errorf("Comparison of %s and %s failed: %v", pathA, pathB, err)
		return false
	}
	return same
}

func (c *Comparator) compare(pathA string, aIsZip bool, pathB string, bIsZip bool) (bool, error) {
	switch {
	case !aIsZip && !bIsZip:
		return c.compareRaw(pathA, pathB)
	case aIsZip && bIsZip:
		return c.compareArchives(pathA, pathB)
	case aIsZip:
		return c.compareArchiveWithRaw(pathA, pathB)
	default:
		return c.compareArchiveWithRaw(pathB, pathA)
	}
}

func (c *Comparator) compareRaw(pathA, pathB string) (bool, error) {
	infoA, err := os.Stat(pathA)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(pathB)
	if err != nil {
		return false, err
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	fileA, err := os.Open(pathA)
	if err != nil {
		return false, err
	}
	defer fileA.Close()

	fileB, err := os.Open(pathB)
	if err != nil {
		return false, err
	}
	defer fileB.Close()

	return compareStreams(fileA, fileB, infoA.Size())
}

// compareArchiveWithRaw matches a single-entry archive against a plain
// file. Archives with any other entry count never match. The entry name
// is irrelevant.
func (c *Comparator) compareArchiveWithRaw(archivePath, rawPath string) (bool, error) {
	reader, err := c.archiver.Open(archivePath)
	if err != nil {
		return false, err
	}
	defer reader.Close()

	entries := reader.Entries()
	if len(entries) != 1 {
		return false, nil
	}
	entry := entries[0]

	info, err := os.Stat(rawPath)
	if err != nil {
		return false, err
	}
	if entry.Size() != info.Size() {
		return false, nil
	}

	entryStream, err := entry.Open()
	if err != nil {
		return false, err
	}
	defer entryStream.Close()

	raw, err := os.Open(rawPath)
	if err != nil {
		return false, err
	}
	defer raw.Close()

	return compareStreams(entryStream, raw, info.Size())
}

func (c *Comparator) compareArchives(pathA, pathB string) (bool, error) {
	readerA, err := c.archiver.Open(pathA)
	if err != nil {
		return false, err
	}
	defer readerA.Close()

	readerB, err := c.archiver.Open(pathB)
	if err != nil {
		return false, err
	}
	defer readerB.Close()

	entriesA, entriesB := readerA.Entries(), readerB.Entries()
	if len(entriesA) != len(entriesB) {
		return false, nil
	}

	// A single-payload container matches on content alone; its internal
	// name may differ between the two sides.
	if len(entriesA) == 1 {
		return compareEntries(entriesA[0], entriesB[0])
	}

	byName := make(map[string]domain.ArchiveEntry, len(entriesB))
	for _, entry := range entriesB {
		byName[entry.Name()] = entry
	}
	for _, entryA := range entriesA {
		entryB, ok := byName[entryA.Name()]
		if !ok {
			return false, nil
		}
		same, err := compareEntries(entryA, entryB)
		if err != nil || !same {
			return same, err
		}
	}
	return true, nil
}

func compareEntries(a, b domain.ArchiveEntry) (bool, error) {
	if a.Size() != b.Size() {
		return false, nil
	}

	streamA, err := a.Open()
	if err != nil {
		return false, err
	}
	defer streamA.Close()

	streamB, err := b.Open()
	if err != nil {
		return false, err
	}
	defer streamB.Close()

	return compareStreams(streamA, streamB, a.Size())
}

// compareStreams reads both streams chunk for chunk and short-circuits on
// the first mismatch. Callers have already established both sides hold
// length bytes.
func compareStreams(a, b io.Reader, length int64) (bool, error) {
	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)

	for remaining := length; remaining > 0; {
		n := int64(compareChunkSize)
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(a, bufA[:n]); err != nil {
			return false, err
		}
		if _, err := io.ReadFull(b, bufB[:n]); err != nil {
			return false, err
		}
		if !bytes.Equal(bufA[:n], bufB[:n]) {
			return false, nil
		}
		remaining -= n
	}
	return true, nil
}
