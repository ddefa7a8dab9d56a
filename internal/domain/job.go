package domain

import (
	"time"

	"github.com/custodianhq/custos/internal/schedule"
)

// Job is one configured recurring backup task. Jobs are immutable for the
// process lifetime; ids are 1-based and assigned in configuration order.
type Job struct {
	ID             int
	Name           string
	Program        string
	Args           []string
	Frequency      time.Duration
	Anchor         schedule.TimeOfDay
	KeepMostRecent int
	KeepDays       int
	KeepWeeks      int
	KeepMonths     int
	Folder         string
	Extension      string
	ZipResults     bool
	OutputIsZip    bool
}
