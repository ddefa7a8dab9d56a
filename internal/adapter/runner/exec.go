package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/custodianhq/custos/internal/domain"
)

// ExecRunner runs backup programs through os/exec.
type ExecRunner struct{}

var _ domain.Runner = (*ExecRunner)(nil)

func NewExec() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, program string, args []string) (domain.RunResult, error) {
	// Cancellation must never kill a started backup process; callers
	// observe ctx themselves and skip their destructive steps after the
	// process finishes.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), program, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	result := domain.RunResult{StartedAt: time.Now()}
	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("%w: %v", domain.ErrStart, err)
	}

	err := cmd.Wait()
	result.FinishedAt = time.Now()
	result.Output = output.Bytes()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, fmt.Errorf("failed to wait for process: %w", err)
	}

	return result, nil
}
