package sampler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseReplayText(t *testing.T) {
	t.Parallel()
	got, err := ParseReplayText(strings.NewReader("# N=21\n3\n\n7 # second run\n  1\n"))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7, 1}, got)

	_, err = ParseReplayText(strings.NewReader("3\nseven\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseReplayYAML(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		doc     string
		want    []int64
		wantErr bool
	}{
		{name: "sequence", doc: "- 3\n- 7\n- 3\n", want: []int64{3, 7, 3}},
		{name: "flow sequence", doc: "[5, 9]", want: []int64{5, 9}},
		{name: "mapping", doc: "n: 21\noutputs: [1, 21]\n", want: []int64{1, 21}},
		{name: "invalid", doc: "outputs: [a, b]\n", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseReplayYAML([]byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadReplay(t *testing.T) {
	t.Parallel()

	_, err := LoadReplay("")
	require.Error(t, err)

	_, err = LoadReplay(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	r, err := LoadReplay(writeFile(t, "runs.yaml", "outputs: [3, 3, 7]\n"))
	require.NoError(t, err)
	assert.Equal(t, "replay", r.Name())
	assert.Equal(t, 3, r.Remaining())
}

func TestReplaySample(t *testing.T) {
	t.Parallel()
	r, err := LoadReplay(writeFile(t, "runs.txt", "3\n7\n"))
	require.NoError(t, err)
	ctx := context.Background()

	v, err := r.Sample(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	v, err = r.Sample(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	_, err = r.Sample(ctx, 21)
	assert.ErrorIs(t, err, ErrReplayExhausted)

	r.Rewind()
	v, err = r.Sample(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestReplaySample_CanceledContext(t *testing.T) {
	t.Parallel()
	s := Sequence(1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Sample(ctx, 21)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplaySample_CanceledWhileWaitingForRewind(t *testing.T) {
	t.Parallel()
	r := Sequence(1, 2).(*Replay)
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	done := make(chan error, 1)
	go func() {
		_, err := r.Sample(ctx, 21)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	r.next = 0
	r.mu.Unlock()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 2, r.Remaining(), "a canceled caller must not consume a rewound output")
}

func TestReplaySource(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "runs.txt", "3\n")
	r, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, path, r.Source())
	assert.Equal(t, "memory", Sequence(1).(*Replay).Source())
}

func TestSequenceCopiesInput(t *testing.T) {
	t.Parallel()
	in := []int64{4, 5}
	s := Sequence(in...)
	in[0] = 99
	v, err := s.Sample(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}
