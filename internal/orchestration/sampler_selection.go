package orchestration

import (
	"github.com/agbru/grovertally/internal/config"
	"github.com/agbru/grovertally/internal/sampler"
)

// SelectSampler builds the backend named by cfg.Sampler from the registry.
func SelectSampler(cfg config.AppConfig, registry *sampler.Registry) (sampler.Sampler, error) {
	return registry.New(cfg.Sampler, sampler.Options{
		Command:      cfg.Command,
		Input:        cfg.Input,
		TrialTimeout: cfg.TrialTimeout,
	})
}
