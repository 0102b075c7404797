package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when printing errors.
// A nil provider prints plain text.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type plainColors struct{}

func (plainColors) Red() string    { return "" }
func (plainColors) Yellow() string { return "" }
func (plainColors) Reset() string  { return "" }

// HandleTrialError prints a user-facing message for a failed batch and
// returns the exit code for it. No partial report is printed by callers once
// this has been invoked.
func HandleTrialError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = plainColors{}
	}

	elapsed := ""
	if duration > 0 {
		elapsed = fmt.Sprintf(" after %s", duration)
	}

	var timeoutErr TimeoutError
	switch {
	case errors.As(err, &timeoutErr) && timeoutErr.Operation == OperationTrial:
		which := "A trial"
		var trialErr TrialError
		if errors.As(err, &trialErr) {
			which = fmt.Sprintf("Trial %d", trialErr.Index)
		}
		fmt.Fprintf(out, "%sStatus: Timeout. %s exceeded its %s limit%s.%s\n",
			colors.Yellow(), which, timeoutErr.Limit, elapsed, colors.Reset())
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sStatus: Timeout. The experiment batch exceeded its deadline%s.%s\n",
			colors.Yellow(), elapsed, colors.Reset())
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), elapsed, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure%s. %v%s\n", colors.Red(), elapsed, err, colors.Reset())
	}
	return ExitCodeFor(err)
}
