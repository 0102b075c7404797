package sampler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	apperrors "github.com/agbru/grovertally/internal/errors"
)

// SizePlaceholder is replaced by the problem size in exec arguments.
const SizePlaceholder = "{n}"

const killGrace = 500 * time.Millisecond

// Exec runs an external program once per trial. The program receives the
// problem size either through a {n} argument or as its last argument, and in
// the GROVERTALLY_N environment variable. The last non-empty line it writes
// to stdout is the trial output.
type Exec struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewExec parses a shell-style command line. A zero timeout disables the
// per-trial deadline.
func NewExec(command string, timeout time.Duration) (*Exec, error) {
	fields, err := shlex.Split(command)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid sampler command %q: %v", command, err)
	}
	if len(fields) == 0 {
		return nil, apperrors.NewConfigError("exec sampler requires a command (--command or GROVERTALLY_COMMAND)")
	}
	return &Exec{path: fields[0], args: fields[1:], timeout: timeout}, nil
}

// Name returns "exec".
func (e *Exec) Name() string { return "exec" }

// Command returns the program and the arguments used for problem size n.
func (e *Exec) Command(n uint64) (string, []string) {
	size := strconv.FormatUint(n, 10)
	args := make([]string, 0, len(e.args)+1)
	substituted := false
	for _, a := range e.args {
		if strings.Contains(a, SizePlaceholder) {
			a = strings.ReplaceAll(a, SizePlaceholder, size)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, size)
	}
	return e.path, args
}

// Sample runs the program and parses its output.
func (e *Exec) Sample(ctx context.Context, n uint64) (int64, error) {
	parent := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	path, args := e.Command(n)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), "GROVERTALLY_N="+strconv.FormatUint(n, 10))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of the program may hold stdout open after it is killed.
	cmd.WaitDelay = killGrace

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if parent.Err() == nil {
				return 0, apperrors.TimeoutError{Operation: apperrors.OperationTrial, Limit: e.timeout}
			}
			return 0, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, fmt.Errorf("%s: %w: %s", path, err, lastLine(msg))
		}
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return ParseOutput(stdout.String())
}

// ParseOutput extracts the trial output from a program's stdout: the last
// non-empty line, as a base-10 integer.
func ParseOutput(stdout string) (int64, error) {
	line := lastLine(stdout)
	if line == "" {
		return 0, fmt.Errorf("%w: empty output", ErrInvalidOutput)
	}
	v, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutput, line)
	}
	return v, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
