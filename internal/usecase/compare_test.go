package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/custodianhq/custos/internal/adapter/archive"
)

type testLogger struct{}

func (testLogger) Infof(string, ...interface{})  {}
func (testLogger) Warnf(string, ...interface{})  {}
func (testLogger) Errorf(string, ...interface{}) {}

func writeFile(dir, name string, content []byte) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		panic(err)
	}
	return path
}

func writeZip(dir, name string, entries map[string][]byte) string {
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for entryName, content := range entries {
		w, err := zw.Create(entryName)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(content); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return path
}

func TestComparator(t *testing.T) {
	Convey("Given a Comparator", t, func() {
		tempDir, err := os.MkdirTemp("", "compare_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		comparator := NewComparator(archive.NewZip(), testLogger{})

		Convey("Comparing two plain files", func() {
			Convey("Identical bytes should be same, symmetrically", func() {
				a := writeFile(tempDir, "a.bak", []byte("identical payload"))
				b := writeFile(tempDir, "b.bak", []byte("identical payload"))

				So(comparator.Same(a, false, b, false), ShouldBeTrue)
				So(comparator.Same(b, false, a, false), ShouldBeTrue)
			})

			Convey("A one-byte difference should not be same", func() {
				a := writeFile(tempDir, "a.bak", []byte("identical payload"))
				b := writeFile(tempDir, "b.bak", []byte("identical paYload"))

				So(comparator.Same(a, false, b, false), ShouldBeFalse)
				So(comparator.Same(b, false, a, false), ShouldBeFalse)
			})

			Convey("Different lengths should not be same", func() {
				a := writeFile(tempDir, "a.bak", []byte("short"))
				b := writeFile(tempDir, "b.bak", []byte("a bit longer"))

				So(comparator.Same(a, false, b, false), ShouldBeFalse)
			})

			Convey("A missing file should fail closed", func() {
				a := writeFile(tempDir, "a.bak", []byte("payload"))
				missing := filepath.Join(tempDir, "missing.bak")

				So(comparator.Same(a, false, missing, false), ShouldBeFalse)
			})
		})

		Convey("Comparing a zip with a plain file", func() {
			raw := writeFile(tempDir, "raw.bak", []byte("zip me up"))

			Convey("A single entry with identical bytes should be same, whatever its name", func() {
				z := writeZip(tempDir, "one.zip", map[string][]byte{"unrelated-name.dat": []byte("zip me up")})

				So(comparator.Same(z, true, raw, false), ShouldBeTrue)
				So(comparator.Same(raw, false, z, true), ShouldBeTrue)
			})

			Convey("A single entry with different bytes should not be same", func() {
				z := writeZip(tempDir, "one.zip", map[string][]byte{"raw.bak": []byte("zip me UP")})

				So(comparator.Same(z, true, raw, false), ShouldBeFalse)
			})

			Convey("More than one entry should never be same", func() {
				z := writeZip(tempDir, "two.zip", map[string][]byte{
					"raw.bak":   []byte("zip me up"),
					"extra.bak": []byte("zip me up"),
				})

				So(comparator.Same(z, true, raw, false), ShouldBeFalse)
			})

			Convey("A corrupt archive should fail closed", func() {
				bogus := writeFile(tempDir, "bogus.zip", []byte("not a zip at all"))

				So(comparator.Same(bogus, true, raw, false), ShouldBeFalse)
				So(comparator.Same(raw, false, bogus, true), ShouldBeFalse)
			})
		})

		Convey("Comparing two zips", func() {
			Convey("Single entries should match on content alone, entry names may differ", func() {
				a := writeZip(tempDir, "a.zip", map[string][]byte{"monday.bak": []byte("same bytes")})
				b := writeZip(tempDir, "b.zip", map[string][]byte{"tuesday.bak": []byte("same bytes")})

				So(comparator.Same(a, true, b, true), ShouldBeTrue)
				So(comparator.Same(b, true, a, true), ShouldBeTrue)
			})

			Convey("Different entry counts should not be same", func() {
				a := writeZip(tempDir, "a.zip", map[string][]byte{"one.bak": []byte("x")})
				b := writeZip(tempDir, "b.zip", map[string][]byte{"one.bak": []byte("x"), "two.bak": []byte("y")})

				So(comparator.Same(a, true, b, true), ShouldBeFalse)
			})

			Convey("Multi-entry archives should match entry for entry by name", func() {
				a := writeZip(tempDir, "a.zip", map[string][]byte{"one.bak": []byte("x"), "two.bak": []byte("yy")})
				b := writeZip(tempDir, "b.zip", map[string][]byte{"two.bak": []byte("yy"), "one.bak": []byte("x")})

				So(comparator.Same(a, true, b, true), ShouldBeTrue)
			})

			Convey("A renamed entry in a multi-entry archive should not be same", func() {
				a := writeZip(tempDir, "a.zip", map[string][]byte{"one.bak": []byte("x"), "two.bak": []byte("yy")})
				b := writeZip(tempDir, "b.zip", map[string][]byte{"one.bak": []byte("x"), "other.bak": []byte("yy")})

				So(comparator.Same(a, true, b, true), ShouldBeFalse)
			})

			Convey("A changed entry in a multi-entry archive should not be same", func() {
				a := writeZip(tempDir, "a.zip", map[string][]byte{"one.bak": []byte("x"), "two.bak": []byte("yy")})
				b := writeZip(tempDir, "b.zip", map[string][]byte{"one.bak": []byte("x"), "two.bak": []byte("yz")})

				So(comparator.Same(a, true, b, true), ShouldBeFalse)
			})
		})
	})
}
