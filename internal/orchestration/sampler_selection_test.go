package orchestration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/grovertally/internal/config"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/sampler"
)

func TestSelectSampler(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "runs.txt")
	require.NoError(t, os.WriteFile(path, []byte("3\n7\n"), 0o600))

	cfg := config.DefaultConfig()
	cfg.Sampler = "replay"
	cfg.Input = path
	s, err := SelectSampler(cfg, sampler.NewDefaultRegistry())
	require.NoError(t, err)
	assert.Equal(t, "replay", s.Name())
	v, err := s.Sample(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestSelectSampler_ExecWithoutCommand(t *testing.T) {
	t.Parallel()
	_, err := SelectSampler(config.DefaultConfig(), sampler.NewDefaultRegistry())
	assert.Equal(t, apperrors.ExitErrorConfig, apperrors.ExitCodeFor(err))
}
