package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// buildBinary compiles a command of this module into dir.
func buildBinary(t *testing.T, dir, name string) string {
	t.Helper()
	bin := filepath.Join(dir, name)
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	// go test runs in test/e2e; build from the module root.
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/"+name)
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to build %s: %v", name, err)
	}
	return bin
}

// tableCounts parses the frequency table from stdout and returns the sum of
// its counts and the number of rows.
func tableCounts(t *testing.T, stdout string) (sum, rows int) {
	t.Helper()
	_, table, ok := strings.Cut(stdout, "Output,  Frequency\n")
	if !ok {
		t.Fatalf("no table header in output:\n%s", stdout)
	}
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			break
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			break
		}
		sum += count
		rows++
	}
	return sum, rows
}

func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("builds binaries")
	}
	tmpDir := t.TempDir()
	binPath := buildBinary(t, tmpDir, "grovertally")
	fakePath := buildBinary(t, tmpDir, "fakesampler")

	replayPath := filepath.Join(tmpDir, "runs.txt")
	if err := os.WriteFile(replayPath, []byte("3\n3\n7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fakeCmd := strconv.Quote(fakePath) + " -seed 5 {n}"

	tests := []struct {
		name       string
		args       []string
		wantStdout string // exact match when set
		wantOut    string // substring of combined output (case-insensitive)
		wantCode   int
		wantSum    int // expected sum of table counts, -1 to skip
	}{
		{
			name:       "Replay Table",
			args:       []string{"--sampler", "replay", "--input", replayPath, "--trials", "3", "--no-chart"},
			wantStdout: "Experiment: 0 of 3\nExperiment: 1 of 3\nExperiment: 2 of 3\nOutput,  Frequency\n3        2\n7        1\n",
			wantSum:    3,
		},
		{
			name:    "Exec Sampler With Chart",
			args:    []string{"--command", fakeCmd, "-n", "21", "--trials", "5", "-q"},
			wantOut: "Outputs for Grover's factoring. N=21, 5 iterations",
			wantSum: 5,
		},
		{
			name:    "Zero Trials",
			args:    []string{"--command", fakeCmd, "--trials", "0", "--no-chart"},
			wantOut: "Output,  Frequency",
			wantSum: 0,
		},
		{
			name:     "Failing Trial",
			args:     []string{"--command", strconv.Quote(fakePath) + " -fail {n}", "--trials", "3"},
			wantOut:  "Status: Failure",
			wantCode: 3,
			wantSum:  -1,
		},
		{
			name:     "Replay Exhausted",
			args:     []string{"--sampler", "replay", "--input", replayPath, "--trials", "4"},
			wantOut:  "exhausted",
			wantCode: 3,
			wantSum:  -1,
		},
		{
			name:     "Missing Command",
			args:     []string{"--trials", "1"},
			wantOut:  "command",
			wantCode: 4,
			wantSum:  -1,
		},
		{
			name:     "Invalid Trials",
			args:     []string{"--trials", "-1"},
			wantOut:  "trials",
			wantCode: 4,
			wantSum:  -1,
		},
		{
			name:    "Help",
			args:    []string{"--help"},
			wantOut: "usage",
			wantSum: -1,
		},
		{
			name:    "Version Flag",
			args:    []string{"--version"},
			wantOut: "grovertally",
			wantSum: -1,
		},
		{
			name:    "Completion",
			args:    []string{"--completion", "zsh"},
			wantOut: "#compdef",
			wantSum: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Dir = tmpDir
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			var stdout, stderr strings.Builder
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			err := cmd.Run()

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("running binary: %v", err)
			}
			combined := stdout.String() + stderr.String()
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nOutput:\n%s", code, tt.wantCode, combined)
			}
			if tt.wantStdout != "" && stdout.String() != tt.wantStdout {
				t.Errorf("stdout mismatch\nwant:\n%s\ngot:\n%s", tt.wantStdout, stdout.String())
			}
			if tt.wantOut != "" && !strings.Contains(strings.ToLower(combined), strings.ToLower(tt.wantOut)) {
				t.Errorf("output missing %q\nGot:\n%s", tt.wantOut, combined)
			}
			if tt.wantCode != 0 && strings.Contains(stdout.String(), "Output,  Frequency") {
				t.Errorf("failed run must not print a table:\n%s", stdout.String())
			}
			if tt.wantSum >= 0 {
				if sum, _ := tableCounts(t, stdout.String()); sum != tt.wantSum {
					t.Errorf("table counts sum to %d, want %d", sum, tt.wantSum)
				}
			}
		})
	}
}

func TestCLI_E2E_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("builds binaries")
	}
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	binPath := buildBinary(t, t.TempDir(), "grovertally")
	cmd := exec.Command(binPath, "--command", "sleep {n}", "--trials", "2", "--timeout", "200ms")
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %v\nOutput:\n%s", err, out)
	}
	if !strings.Contains(string(out), "Status: Timeout") {
		t.Errorf("output should report the timeout:\n%s", out)
	}
}
