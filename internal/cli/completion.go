package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "number", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsSampler bool     // true if values come from the sampler registry (dynamic)
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Short: "n", Help: "Problem size passed to the sampler", Values: []string{"15", "21", "35"}, ValueName: "number"},
	{Long: "trials", Short: "r", Help: "Number of trials", Values: []string{"10", "100", "1000"}, ValueName: "count"},
	{Long: "sampler", Help: "Sampler backend", IsSampler: true, ValueName: "sampler"},
	{Long: "command", Help: "Command run by the exec sampler", ValueName: "command"},
	{Long: "input", Help: "Replay file", IsFile: true, ValueName: "file"},
	{Long: "timeout", Help: "Deadline for the whole batch", Values: []string{"1m", "5m", "10m", "30m", "1h"}, ValueName: "duration"},
	{Long: "trial-timeout", Help: "Deadline for a single trial", Values: []string{"10s", "30s", "1m", "5m"}, ValueName: "duration"},
	{Long: "tui", Help: "Run the interactive dashboard"},
	{Long: "no-chart", Help: "Print the frequency table only"},
	{Long: "chart-file", Help: "Write the chart to an image file", IsFile: true, ValueName: "file"},
	{Long: "output", Short: "o", Help: "Write the report to a file", IsFile: true, ValueName: "file"},
	{Long: "metrics-file", Help: "Write Prometheus metrics", IsFile: true, ValueName: "file"},
	{Long: "config", Help: "YAML configuration file", IsFile: true, ValueName: "file"},
	{Long: "log-level", Help: "Log level", Values: []string{"trace", "debug", "info", "warn", "error", "disabled"}, ValueName: "level"},
	{Long: "spinner", Help: "Show a spinner instead of progress lines"},
	{Long: "quiet", Short: "q", Help: "Suppress progress output"},
	{Long: "verbose", Short: "v", Help: "Print a distribution summary"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// GenerateCompletion generates a shell completion script for the specified
// shell ("bash", "zsh" or "fish"). samplers lists the registered backends.
func GenerateCompletion(out io.Writer, shell string, samplers []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, samplers)
	case "zsh":
		return generateZshCompletion(out, samplers)
	case "fish":
		return generateFishCompletion(out, samplers)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

// flagKey returns the identifier used for lookups: Long name if present, else Short.
func flagKey(f FlagCompletion) string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

func flagPatterns(f FlagCompletion) []string {
	var patterns []string
	if f.Long != "" {
		patterns = append(patterns, "--"+f.Long)
	}
	if f.Short != "" {
		patterns = append(patterns, "-"+f.Short)
	}
	return patterns
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer, samplers []string) error {
	var opts []string
	for _, f := range flagRegistry {
		opts = append(opts, flagPatterns(f)...)
	}

	type caseEntry struct {
		patterns []string
		body     string
	}
	var cases []caseEntry
	var filePatterns []string
	for _, f := range flagRegistry {
		switch {
		case f.IsSampler:
			cases = append(cases, caseEntry{
				patterns: flagPatterns(f),
				body:     `COMPREPLY=( $(compgen -W "${samplers}" -- "${cur}") )`,
			})
		case f.IsFile:
			filePatterns = append(filePatterns, flagPatterns(f)...)
		case len(f.Values) > 0:
			cases = append(cases, caseEntry{
				patterns: flagPatterns(f),
				body:     fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")),
			})
		}
	}
	if len(filePatterns) > 0 {
		cases = append(cases, caseEntry{
			patterns: filePatterns,
			body:     `COMPREPLY=( $(compgen -f -- "${cur}") )`,
		})
	}

	var caseBody strings.Builder
	for _, c := range cases {
		caseBody.WriteString("        ")
		caseBody.WriteString(strings.Join(c.patterns, "|"))
		caseBody.WriteString(")\n            ")
		caseBody.WriteString(c.body)
		caseBody.WriteString("\n            return 0\n            ;;\n")
	}

	script := fmt.Sprintf(`# Bash completion script for grovertally
# Add this to your ~/.bashrc or ~/.bash_completion

_grovertally_completions() {
    local cur prev opts samplers
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    samplers="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _grovertally_completions grovertally
`, strings.Join(opts, " "), strings.Join(samplers, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer, samplers []string) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	script := fmt.Sprintf(`#compdef grovertally

# Zsh completion script for grovertally
# Add this to your ~/.zshrc or place in $fpath

_grovertally() {
    local -a samplers
    samplers=(%s)

    _arguments -s \
%s
}

_grovertally "$@"
`, strings.Join(samplers, " "), strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsSampler:
		valueSuffix = fmt.Sprintf(":%s:($samplers)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '%s[%s]%s'", flagPatterns(f)[0], f.Help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer, samplers []string) error {
	lines := []string{
		"# Fish completion script for grovertally",
		"# Add this to ~/.config/fish/completions/grovertally.fish",
		"",
		"# Disable file completion by default",
		"complete -c grovertally -f",
		"",
	}

	sections := []struct {
		comment string
		flags   []FlagCompletion
	}{
		{"# Help and version", filterFlags("help", "version")},
		{"# Experiment", filterFlags("n", "trials", "sampler", "command", "input", "timeout", "trial-timeout")},
		{"# Display", filterFlags("tui", "no-chart", "spinner", "quiet", "verbose", "no-color", "log-level")},
		{"# Files", filterFlags("chart-file", "output", "metrics-file", "config")},
		{"# Completion", filterFlags("completion")},
	}

	samplerList := strings.Join(samplers, " ")
	for _, sec := range sections {
		lines = append(lines, sec.comment)
		for _, f := range sec.flags {
			lines = append(lines, fishCompleteLine(f, samplerList))
		}
		lines = append(lines, "")
	}

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// filterFlags returns flags from the registry matching the given keys, in
// the order given.
func filterFlags(keys ...string) []FlagCompletion {
	var result []FlagCompletion
	for _, key := range keys {
		for _, f := range flagRegistry {
			if flagKey(f) == key {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion, samplerList string) string {
	parts := []string{"complete -c grovertally"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsSampler:
		parts = append(parts, fmt.Sprintf("-xa '%s'", samplerList))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
