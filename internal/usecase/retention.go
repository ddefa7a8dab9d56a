package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/custodianhq/custos/internal/domain"
)

// Retention applies the tiered keep policy to a job's output folder. Each
// tier (most-recent, daily, weekly, monthly) independently marks records
// to keep; everything unmarked is deleted.
type Retention struct {
	comparator *Comparator
	logger     Logger
}

func NewRetention(comparator *Comparator, logger Logger) *Retention {
	return &Retention{comparator: comparator, logger: logger}
}

// Apply scans the folder, collapses the newest backup into a zero-length
// placeholder when its content matches the previous one, marks keepers,
// and deletes the rest. The returned flag reports whether the newest
// backup was collapsed (its artifact no longer exists). Delete failures
// abort the pass.
func (uc *Retention) Apply(job domain.Job) (bool, error) {
	records, err := uc.scan(job)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}

	collapsed, err := uc.collapseCurrent(job, records)
	if err != nil {
		return false, err
	}

	uc.markKeep(job, records)

	if err := uc.deleteUnkept(job, records); err != nil {
		return collapsed, err
	}
	return collapsed, nil
}

// scan returns the recognized backup files of the folder, oldest first.
// Entries whose names do not carry a parseable timestamp prefix are
// invisible to retention.
func (uc *Retention) scan(job domain.Job) ([]*domain.FileRecord, error) {
	entries, err := os.ReadDir(job.Folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup folder: %w", err)
	}

	var records []*domain.FileRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		record, ok := domain.ParseFileRecord(entry.Name(), job.OutputIsZip)
		if !ok {
			continue
		}
		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Stamp.Before(records[j].Stamp)
	})
	return records, nil
}

// collapseCurrent replaces the newest backup with a zero-length
// placeholder when its content matches the newest real backup before it.
func (uc *Retention) collapseCurrent(job domain.Job, records []*domain.FileRecord) (bool, error) {
	current := records[len(records)-1]
	if current.SameAsPrevious {
		// Already collapsed by an earlier pass, nothing to compare.
		return false, nil
	}

	var previous *domain.FileRecord
	for i := len(records) - 2; i >= 0; i-- {
		if !records[i].SameAsPrevious {
			previous = records[i]
			break
		}
	}
	if previous == nil {
		return false, nil
	}

	currentPath := filepath.Join(job.Folder, current.Name)
	previousPath := filepath.Join(job.Folder, previous.Name)
	if !uc.comparator.Same(currentPath, current.IsZip, previousPath, previous.IsZip) {
		return false, nil
	}

	extension := job.Extension
	if job.ZipResults {
		extension = domain.ZipExtension
	}
	placeholder := domain.PlaceholderName(current.Stamp, extension)

	uc.logger.Infof("[%s] Backup %s matches %s, collapsing to placeholder",
		job.Name, current.Name, previous.Name)

	if err := os.Remove(currentPath); err != nil {
		return false, fmt.Errorf("failed to remove duplicate backup: %w", err)
	}
	file, err := os.Create(filepath.Join(job.Folder, placeholder))
	if err != nil {
		return false, fmt.Errorf("failed to create placeholder: %w", err)
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("failed to close placeholder: %w", err)
	}

	current.Name = placeholder
	current.SameAsPrevious = true
	current.IsZip = job.OutputIsZip || domain.IsZipName(placeholder)
	return true, nil
}

// markKeep runs every tier over the records. All windows are anchored to
// the newest record's date, not wall-clock today, and each tier keeps the
// earliest entry of its window so the oldest representative of a period
// survives.
func (uc *Retention) markKeep(job domain.Job, records []*domain.FileRecord) {
	current := records[len(records)-1]
	current.Keep = true

	for i := 0; i < job.KeepMostRecent && i < len(records); i++ {
		records[len(records)-1-i].Keep = true
	}

	day := truncateDay(current.Stamp)
	for i := 0; i < job.KeepDays; i++ {
		start := day.AddDate(0, 0, -i)
		keepEarliestIn(records, start, start.AddDate(0, 0, 1))
	}

	sunday := lastSunday(current.Stamp)
	for i := 0; i < job.KeepWeeks; i++ {
		start := sunday.AddDate(0, 0, -7*i)
		keepEarliestIn(records, start, start.AddDate(0, 0, 7))
	}

	monthStart := truncateMonth(current.Stamp)
	for i := 0; i < job.KeepMonths; i++ {
		start := monthStart.AddDate(0, -i, 0)
		keepEarliestIn(records, start, start.AddDate(0, 1, 0))
	}

	keepAntecedents(records)
}

// keepEarliestIn marks the oldest record within [start, end).
func keepEarliestIn(records []*domain.FileRecord, start, end time.Time) {
	for _, record := range records {
		if !record.Stamp.Before(start) && record.Stamp.Before(end) {
			record.Keep = true
			return
		}
	}
}

// keepAntecedents forces the nearest earlier real backup of every kept
// placeholder to be kept too. A placeholder is worthless without the
// payload it references.
func keepAntecedents(records []*domain.FileRecord) {
	for i, record := range records {
		if !record.Keep || !record.SameAsPrevious {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if !records[j].SameAsPrevious {
				records[j].Keep = true
				break
			}
		}
	}
}

func (uc *Retention) deleteUnkept(job domain.Job, records []*domain.FileRecord) error {
	deleted := 0
	for _, record := range records {
		if record.Keep {
			continue
		}
		uc.logger.Infof("[%s] Deleting expired backup: %s", job.Name, record.Name)
		if err := os.Remove(filepath.Join(job.Folder, record.Name)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", record.Name, err)
		}
		deleted++
	}
	if deleted > 0 {
		uc.logger.Infof("[%s] Deleted %d expired backup(s)", job.Name, deleted)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func truncateMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// lastSunday returns the most recent Sunday on or before t, at midnight.
func lastSunday(t time.Time) time.Time {
	d := truncateDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}
