// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayProgressLines], [DisplaySavedReport].
//
//   - Format* functions return a formatted string without performing I/O.
//     They are pure functions suitable for composition.
//     Examples: [FormatTable], [FormatSpinnerSuffix].
//
//   - Write* functions write data to files on the filesystem.
//     They handle file creation, directory setup, and error handling.
//     Examples: [WriteReportToFile].

package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/tally"
	"github.com/agbru/grovertally/internal/ui"
)

// ReportFile is the exported form of a finished batch.
type ReportFile struct {
	RunID       string        `json:"run_id" msgpack:"run_id"`
	GeneratedAt time.Time     `json:"generated_at" msgpack:"generated_at"`
	Sampler     string        `json:"sampler" msgpack:"sampler"`
	N           uint64        `json:"n" msgpack:"n"`
	Trials      int           `json:"trials" msgpack:"trials"`
	Duration    time.Duration `json:"duration_ns" msgpack:"duration_ns"`
	Entries     []tally.Entry `json:"entries" msgpack:"entries"`
	Summary     tally.Summary `json:"summary" msgpack:"summary"`
}

// ReportFormats lists the file extensions accepted by WriteReportToFile.
var ReportFormats = []string{".json", ".csv", ".msgpack"}

// CheckReportPath reports whether path names a supported report format. An
// empty path is accepted.
func CheckReportPath(path string) error {
	if path == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(ReportFormats, ext) {
		return apperrors.NewConfigError("unsupported report format %q for %s (accepted: %s)", filepath.Ext(path), path, strings.Join(ReportFormats, ", "))
	}
	return nil
}

// WriteReportToFile writes report to path in the format given by its
// extension. Missing parent directories are created. An empty path is a no-op.
func WriteReportToFile(report ReportFile, path string) error {
	if path == "" {
		return nil
	}
	if err := CheckReportPath(path); err != nil {
		return err
	}

	var encode func(io.Writer, ReportFile) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		encode = encodeJSON
	case ".csv":
		encode = encodeCSV
	default:
		encode = encodeMsgpack
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encode(file, report); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return file.Close()
}

func encodeJSON(w io.Writer, r ReportFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// encodeCSV writes one row per entry in report order, preceded by a header.
func encodeCSV(w io.Writer, r ReportFile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"output", "count"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if err := cw.Write([]string{strconv.FormatInt(e.Output, 10), strconv.Itoa(e.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeMsgpack(w io.Writer, r ReportFile) error {
	return msgpack.NewEncoder(w).Encode(r)
}

// ReadReportFile decodes a report written by WriteReportToFile in JSON or
// msgpack form.
func ReadReportFile(path string) (ReportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReportFile{}, err
	}
	var r ReportFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &r)
	case ".msgpack":
		err = msgpack.Unmarshal(data, &r)
	default:
		err = fmt.Errorf("cannot read report format %q", filepath.Ext(path))
	}
	return r, err
}

// DisplaySavedReport confirms where a report was written.
func DisplaySavedReport(path string, out io.Writer) {
	fmt.Fprintf(out, "%s✓ Report saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
}
