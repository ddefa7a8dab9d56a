package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
app:
  name: custos
  log_level: debug
jobs:
  - name: first
    program: /usr/local/bin/dumptool
    args: ["--out", "%filename%"]
    frequency: 6h
    anchor: "03:30"
    keep_most_recent: 3
    keep_days: 7
    folder: /var/backups/first
    extension: bak
    zip_results: true
    enabled: true
  - name: second
    program: /usr/local/bin/othertool
    frequency: 24h
    anchor: "01:00"
    folder: /var/backups/second
    extension: sql
    enabled: false
  - name: third
    program: /usr/local/bin/dumptool
    frequency: 48h
    anchor: "02:15"
    folder: /var/backups/third
    extension: zip
    output_is_zip: true
    enabled: true
`

func TestLoad(t *testing.T) {
	Convey("Given the config loader", t, func() {
		Convey("When loading a valid file", func() {
			cfg, err := Load(writeConfig(t, validConfig))

			Convey("It should load and apply defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.App.Name, ShouldEqual, "custos")
				So(cfg.App.LogLevel, ShouldEqual, "debug")
				So(cfg.SweepSchedule, ShouldEqual, "0 0 3 * * *")
				So(cfg.Jobs, ShouldHaveLength, 3)
			})

			Convey("EnabledJobs should skip disabled jobs but keep ids stable", func() {
				jobs := cfg.EnabledJobs()

				So(jobs, ShouldHaveLength, 2)
				So(jobs[0].ID, ShouldEqual, 1)
				So(jobs[0].Name, ShouldEqual, "first")
				So(jobs[0].Frequency, ShouldEqual, 6*time.Hour)
				So(jobs[0].Anchor.Hour, ShouldEqual, 3)
				So(jobs[0].Anchor.Minute, ShouldEqual, 30)
				So(jobs[0].ZipResults, ShouldBeTrue)
				So(jobs[1].ID, ShouldEqual, 3)
				So(jobs[1].Name, ShouldEqual, "third")
				So(jobs[1].OutputIsZip, ShouldBeTrue)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})

		Convey("When no jobs are configured", func() {
			_, err := Load(writeConfig(t, "app:\n  name: custos\n"))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "at least one job")
		})

		Convey("When a job has an unparseable frequency", func() {
			_, err := Load(writeConfig(t, `
jobs:
  - name: bad
    program: /bin/true
    frequency: often
    anchor: "03:00"
    folder: /tmp/bad
    extension: bak
    enabled: true
`))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid frequency")
		})

		Convey("When a job has an unparseable anchor", func() {
			_, err := Load(writeConfig(t, `
jobs:
  - name: bad
    program: /bin/true
    frequency: 6h
    anchor: "25:00"
    folder: /tmp/bad
    extension: bak
    enabled: true
`))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid anchor")
		})

		Convey("When a job is missing its name", func() {
			_, err := Load(writeConfig(t, `
jobs:
  - program: /bin/true
    frequency: 6h
    anchor: "03:00"
    folder: /tmp/bad
    extension: bak
    enabled: true
`))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "name is required")
		})

		Convey("When a retention count is negative", func() {
			_, err := Load(writeConfig(t, `
jobs:
  - name: bad
    program: /bin/true
    frequency: 6h
    anchor: "03:00"
    keep_days: -1
    folder: /tmp/bad
    extension: bak
    enabled: true
`))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "must not be negative")
		})

		Convey("An out-of-band frequency is accepted, not rejected", func() {
			cfg, err := Load(writeConfig(t, `
jobs:
  - name: lenient
    program: /bin/true
    frequency: 5m
    anchor: "03:00"
    folder: /tmp/lenient
    extension: bak
    enabled: true
`))

			So(err, ShouldBeNil)
			So(cfg.EnabledJobs()[0].Frequency, ShouldEqual, 5*time.Minute)
		})
	})
}
