package sampler

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/grovertally/internal/errors"
)

// Replay returns previously recorded outputs in order. It lets a batch be
// re-reported without rerunning the simulator, and gives tests a
// deterministic source.
type Replay struct {
	source string

	mu      sync.Mutex
	outputs []int64
	next    int
}

// replayDocument is the mapping form of a YAML replay file.
type replayDocument struct {
	Outputs []int64 `yaml:"outputs"`
}

// LoadReplay reads a replay file. Files ending in .yaml or .yml hold either
// a sequence of integers or a mapping with an "outputs" key. Any other file
// holds one integer per line; blank lines and # comments are ignored.
func LoadReplay(path string) (*Replay, error) {
	if path == "" {
		return nil, apperrors.NewConfigError("replay sampler requires an input file (--input or GROVERTALLY_INPUT)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapError(err, "reading replay file")
	}

	var outputs []int64
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		outputs, err = ParseReplayYAML(data)
	default:
		outputs, err = ParseReplayText(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Replay{source: path, outputs: outputs}, nil
}

// ParseReplayText reads one integer per line.
func ParseReplayText(r io.Reader) ([]int64, error) {
	var outputs []int64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrInvalidOutput, line)
		}
		outputs = append(outputs, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// ParseReplayYAML decodes a YAML sequence of integers or a mapping with an
// "outputs" sequence.
func ParseReplayYAML(data []byte) ([]int64, error) {
	var list []int64
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc replayDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return doc.Outputs, nil
}

// Name returns "replay".
func (r *Replay) Name() string { return "replay" }

// Source returns the file the outputs were read from, or "memory" for a
// Sequence.
func (r *Replay) Source() string { return r.source }

// Sample returns the next recorded output. The context is checked while
// holding the lock, so a caller canceled before a Rewind never consumes an
// output of the rewound replay.
func (r *Replay) Sample(ctx context.Context, _ uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r.next >= len(r.outputs) {
		return 0, fmt.Errorf("%w after %d outputs", ErrReplayExhausted, len(r.outputs))
	}
	v := r.outputs[r.next]
	r.next++
	return v, nil
}

// Remaining returns the number of outputs not yet returned.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outputs) - r.next
}

// Rewind restarts the replay from the first output.
func (r *Replay) Rewind() {
	r.mu.Lock()
	r.next = 0
	r.mu.Unlock()
}
