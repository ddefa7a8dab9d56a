package domain

import (
	"context"
	"errors"
	"time"
)

// ErrStart marks a backup program that could not be started at all, as
// opposed to one that ran and exited non-zero.
var ErrStart = errors.New("failed to start process")

// RunResult describes one completed execution of a backup program.
type RunResult struct {
	ExitCode   int
	Output     []byte
	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner starts an external program and waits synchronously for it to exit.
type Runner interface {
	// Run returns an error wrapping ErrStart when the process never ran.
	// A non-zero exit code is reported through the result, not the error.
	// A started process always runs to completion, even when ctx is
	// cancelled; callers decide what to skip afterwards.
	Run(ctx context.Context, program string, args []string) (RunResult, error)
}
