package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodianhq/custos/internal/domain"
)

var filenameToken = regexp.MustCompile(`(?i)%filename%`)

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Backup drives one run of a job: invoke the external backup program,
// collapse and prune history, and optionally zip the new artifact. A
// cancelled context makes an in-flight run finish its process but skip
// every destructive step after it.
type Backup struct {
	runner    domain.Runner
	archiver  domain.Archiver
	retention *Retention
	logger    Logger
}

func NewBackup(
	runner domain.Runner,
	archiver domain.Archiver,
	retention *Retention,
	logger Logger,
) *Backup {
	return &Backup{
		runner:    runner,
		archiver:  archiver,
		retention: retention,
		logger:    logger,
	}
}

func (uc *Backup) Execute(ctx context.Context, job domain.Job, scheduledAt time.Time) error {
	start := time.Now()
	uc.logger.Infof("[%s] Starting backup...", job.Name)

	if err := os.MkdirAll(job.Folder, 0755); err != nil {
		return fmt.Errorf("failed to create backup folder: %w", err)
	}

	filename := domain.FileName(scheduledAt, job.Extension)
	target := filepath.Join(job.Folder, filename)

	result, err := uc.runner.Run(ctx, job.Program, substituteFilename(job.Args, target))
	if err != nil {
		uc.removePartial(job, target)
		if errors.Is(err, domain.ErrStart) {
			return fmt.Errorf("%s: %w", job.Program, err)
		}
		return fmt.Errorf("backup process: %w", err)
	}
	if result.ExitCode != 0 {
		uc.logger.Errorf("[%s] %s exited with code %d: %s",
			job.Name, job.Program, result.ExitCode, strings.TrimSpace(string(result.Output)))
		uc.removePartial(job, target)
		return fmt.Errorf("%s exited with code %d", job.Program, result.ExitCode)
	}

	uc.logger.Infof("[%s] Backup process finished in %s",
		job.Name, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if ctx.Err() != nil {
		uc.logger.Warnf("[%s] Shutdown requested, skipping cleanup", job.Name)
		return nil
	}

	collapsed, err := uc.retention.Apply(job)
	if err != nil {
		return fmt.Errorf("retention: %w", err)
	}

	if ctx.Err() != nil {
		uc.logger.Warnf("[%s] Shutdown requested, skipping compression", job.Name)
		return nil
	}

	if job.ZipResults && !collapsed && !domain.IsZipName(filename) {
		if err := uc.zipArtifact(job, target, filename); err != nil {
			return err
		}
	}

	uc.logger.Infof("[%s] Backup completed in %s",
		job.Name, time.Since(start).Round(time.Second))
	return nil
}

// zipArtifact compresses the artifact into a sibling zip and removes the
// original. The archive entry keeps the original file name so a later
// comparison can still match a raw file's bytes against it.
func (uc *Backup) zipArtifact(job domain.Job, target, filename string) error {
	zipPath := strings.TrimSuffix(target, filepath.Ext(target)) + "." + domain.ZipExtension

	uc.logger.Infof("[%s] Compressing %s", job.Name, filename)
	if err := uc.archiver.Compress(target, zipPath, filename); err != nil {
		return fmt.Errorf("failed to compress %s: %w", filename, err)
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to remove uncompressed backup: %w", err)
	}
	return nil
}

// removePartial drops whatever the failed process left at the target path.
func (uc *Backup) removePartial(job domain.Job, target string) {
	if _, err := os.Stat(target); err != nil {
		return
	}
	uc.logger.Warnf("[%s] Removing partial backup output: %s", job.Name, filepath.Base(target))
	if err := os.Remove(target); err != nil {
		uc.logger.Errorf("[%s] Failed to remove partial output: %v", job.Name, err)
	}
}

func substituteFilename(args []string, path string) []string {
	substituted := make([]string, len(args))
	for i, arg := range args {
		substituted[i] = filenameToken.ReplaceAllLiteralString(arg, path)
	}
	return substituted
}
