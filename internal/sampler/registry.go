package sampler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/agbru/grovertally/internal/errors"
)

// Options carries the backend-specific settings a constructor may need.
type Options struct {
	// Command is the command line run by the exec backend.
	Command string
	// Input is the file read by the replay backend.
	Input string
	// TrialTimeout bounds a single exec run. Zero means no limit.
	TrialTimeout time.Duration
}

// Constructor builds a Sampler from Options.
type Constructor func(opts Options) (Sampler, error)

// Registry maps backend names to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// NewDefaultRegistry returns a registry holding the built-in backends.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("exec", func(opts Options) (Sampler, error) {
		return NewExec(opts.Command, opts.TrialTimeout)
	})
	r.Register("replay", func(opts Options) (Sampler, error) {
		return LoadReplay(opts.Input)
	})
	return r
}

// Register adds or replaces a backend.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// List returns the registered backend names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named backend.
func (r *Registry) New(name string, opts Options) (Sampler, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewConfigError("unknown sampler %q (available: %v)", name, r.List())
	}
	s, err := ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("sampler %s: %w", name, err)
	}
	return s, nil
}
