package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/grovertally/internal/config"
	"github.com/agbru/grovertally/internal/ui"
)

// PrintExecutionConfig displays the batch about to run. It is shown in
// verbose mode only so that the default output matches the plain progress
// and table format. source names where a replaying sampler reads its
// outputs and is omitted when empty.
func PrintExecutionConfig(cfg config.AppConfig, samplerName, source string, out io.Writer) {
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Running %s%d%s trials of the %s%s%s sampler for N=%s%d%s, timeout %s%s%s.\n",
		ui.ColorCyan(), cfg.Trials, ui.ColorReset(),
		ui.ColorGreen(), samplerName, ui.ColorReset(),
		ui.ColorMagenta(), cfg.N, ui.ColorReset(),
		ui.ColorYellow(), timeout, ui.ColorReset())
	if source != "" {
		fmt.Fprintf(out, "Outputs replayed from %s%s%s.\n", ui.ColorCyan(), source, ui.ColorReset())
	}
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
