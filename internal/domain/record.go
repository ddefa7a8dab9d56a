package domain

import (
	"strings"
	"time"
)

const (
	// StampLayout is the fixed-width prefix every backup file name starts
	// with. A folder entry whose segment before the first '.' does not
	// parse with this layout is not a backup file.
	StampLayout = "20060102_150405"

	// SameAsPreviousMarker sits between the timestamp and the extension of
	// a zero-length placeholder left behind when a backup matched the
	// previous one.
	SameAsPreviousMarker = "_same_as_previous"

	ZipExtension = "zip"
)

// FileRecord is one backup artifact as seen during a retention pass. The
// set of records is rebuilt from a folder scan every pass and never
// persisted.
type FileRecord struct {
	Name           string
	Stamp          time.Time
	IsZip          bool
	SameAsPrevious bool
	Keep           bool
}

// FileName builds the artifact name for a run scheduled at stamp.
func FileName(stamp time.Time, extension string) string {
	return stamp.Format(StampLayout) + "." + extension
}

// PlaceholderName builds the zero-length placeholder name for a collapsed
// run.
func PlaceholderName(stamp time.Time, extension string) string {
	return stamp.Format(StampLayout) + SameAsPreviousMarker + "." + extension
}

// IsZipName reports whether a file name carries the zip extension.
func IsZipName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "."+ZipExtension)
}

// ParseFileRecord interprets a folder entry as a backup artifact.
// outputIsZip marks every artifact of the job as a zip container regardless
// of extension. The second return value is false for names that are not
// recognized backup files; those are never counted or deleted.
func ParseFileRecord(name string, outputIsZip bool) (FileRecord, bool) {
	dot := strings.IndexByte(name, '.')
	if dot < 0 {
		return FileRecord{}, false
	}

	stampPart := name[:dot]
	sameAsPrevious := strings.HasSuffix(stampPart, SameAsPreviousMarker)
	if sameAsPrevious {
		stampPart = strings.TrimSuffix(stampPart, SameAsPreviousMarker)
	}
	if len(stampPart) != len(StampLayout) {
		return FileRecord{}, false
	}

	stamp, err := time.ParseInLocation(StampLayout, stampPart, time.Local)
	if err != nil {
		return FileRecord{}, false
	}

	return FileRecord{
		Name:           name,
		Stamp:          stamp,
		IsZip:          outputIsZip || IsZipName(name),
		SameAsPrevious: sameAsPrevious,
	}, true
}
