package cli

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/tally"
)

func sampleReport() ReportFile {
	entries := []tally.Entry{{Output: 3, Count: 2}, {Output: 7, Count: 1}}
	return ReportFile{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Sampler:     "replay",
		N:           21,
		Trials:      3,
		Duration:    1500 * time.Millisecond,
		Entries:     entries,
		Summary:     tally.Summarize(entries, 21),
	}
}

func TestWriteReportToFile_JSONAndMsgpack(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	want := sampleReport()

	for _, name := range []string{"report.json", filepath.Join("nested", "dir", "report.msgpack")} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(dir, name)
			if err := WriteReportToFile(want, path); err != nil {
				t.Fatalf("WriteReportToFile: %v", err)
			}
			got, err := ReadReportFile(path)
			if err != nil {
				t.Fatalf("ReadReportFile: %v", err)
			}
			if diff := cmp.Diff(want.Entries, got.Entries); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
			if got.RunID != want.RunID || got.N != want.N || got.Trials != want.Trials {
				t.Errorf("metadata mismatch: %+v", got)
			}
			if !got.GeneratedAt.Equal(want.GeneratedAt) {
				t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, want.GeneratedAt)
			}
		})
	}
}

func TestWriteReportToFile_CSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := WriteReportToFile(sampleReport(), path); err != nil {
		t.Fatalf("WriteReportToFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"output", "count"}, {"3", "2"}, {"7", "1"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportToFile_EmptyPath(t *testing.T) {
	t.Parallel()
	if err := WriteReportToFile(sampleReport(), ""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}

func TestWriteReportToFile_UnsupportedFormat(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.xml")
	err := WriteReportToFile(sampleReport(), path)
	if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
		t.Errorf("expected a config error, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be created for an unsupported format")
	}
}

func TestCheckReportPath(t *testing.T) {
	t.Parallel()
	for _, path := range []string{"", "report.json", "out/REPORT.CSV", "r.msgpack"} {
		if err := CheckReportPath(path); err != nil {
			t.Errorf("CheckReportPath(%q) = %v, want nil", path, err)
		}
	}
	for _, path := range []string{"report.txt", "report", "report.json.bak"} {
		err := CheckReportPath(path)
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("CheckReportPath(%q) = %v, want a config error", path, err)
		}
	}
}

func TestDisplaySavedReport(t *testing.T) {
	var buf bytes.Buffer
	DisplaySavedReport("out.json", &buf)
	if !strings.Contains(buf.String(), "out.json") {
		t.Errorf("output should name the file, got %q", buf.String())
	}
}
