package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/custodianhq/custos/internal/domain"
	"github.com/custodianhq/custos/internal/schedule"
)

type Config struct {
	App           AppConfig   `mapstructure:"app"`
	SweepSchedule string      `mapstructure:"sweep_schedule"`
	Jobs          []JobConfig `mapstructure:"jobs"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type JobConfig struct {
	Name           string   `mapstructure:"name"`
	Program        string   `mapstructure:"program"`
	Args           []string `mapstructure:"args"`
	Frequency      string   `mapstructure:"frequency"`
	Anchor         string   `mapstructure:"anchor"`
	KeepMostRecent int      `mapstructure:"keep_most_recent"`
	KeepDays       int      `mapstructure:"keep_days"`
	KeepWeeks      int      `mapstructure:"keep_weeks"`
	KeepMonths     int      `mapstructure:"keep_months"`
	Folder         string   `mapstructure:"folder"`
	Extension      string   `mapstructure:"extension"`
	ZipResults     bool     `mapstructure:"zip_results"`
	OutputIsZip    bool     `mapstructure:"output_is_zip"`
	Enabled        bool     `mapstructure:"enabled"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "custos")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("sweep_schedule", "0 0 3 * * *")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return fmt.Errorf("at least one job configuration is required")
	}

	for i, job := range c.Jobs {
		if job.Name == "" {
			return fmt.Errorf("jobs[%d]: name is required", i)
		}
		if job.Program == "" {
			return fmt.Errorf("jobs[%d]: program is required", i)
		}
		if job.Folder == "" {
			return fmt.Errorf("jobs[%d]: folder is required", i)
		}
		if job.Extension == "" {
			return fmt.Errorf("jobs[%d]: extension is required", i)
		}
		// Out-of-band frequencies are clamped at scheduling time, only
		// unparseable values are rejected here.
		if _, err := time.ParseDuration(job.Frequency); err != nil {
			return fmt.Errorf("jobs[%d]: invalid frequency: %w", i, err)
		}
		if _, err := schedule.ParseTimeOfDay(job.Anchor); err != nil {
			return fmt.Errorf("jobs[%d]: invalid anchor: %w", i, err)
		}
		if job.KeepMostRecent < 0 || job.KeepDays < 0 || job.KeepWeeks < 0 || job.KeepMonths < 0 {
			return fmt.Errorf("jobs[%d]: retention counts must not be negative", i)
		}
	}

	return nil
}

// EnabledJobs converts the enabled job definitions into domain jobs. Ids
// are 1-based positions in the full configured list, so they stay stable
// when individual jobs are toggled off.
func (c *Config) EnabledJobs() []domain.Job {
	var jobs []domain.Job
	for i, jc := range c.Jobs {
		if !jc.Enabled {
			continue
		}
		// Validate already proved these parse.
		frequency, _ := time.ParseDuration(jc.Frequency)
		anchor, _ := schedule.ParseTimeOfDay(jc.Anchor)

		jobs = append(jobs, domain.Job{
			ID:             i + 1,
			Name:           jc.Name,
			Program:        jc.Program,
			Args:           jc.Args,
			Frequency:      frequency,
			Anchor:         anchor,
			KeepMostRecent: jc.KeepMostRecent,
			KeepDays:       jc.KeepDays,
			KeepWeeks:      jc.KeepWeeks,
			KeepMonths:     jc.KeepMonths,
			Folder:         jc.Folder,
			Extension:      jc.Extension,
			ZipResults:     jc.ZipResults,
			OutputIsZip:    jc.OutputIsZip,
		})
	}
	return jobs
}
