package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/spirograph/internal/config"
	"github.com/san-kum/spirograph/internal/experiment"
)

// Scenario is a scripted set of renders read from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parallel    int            `yaml:"parallel"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep renders Count animations of one preset. Config holds config
// keys applied over the preset, in the same layout as a config file.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Count  int       `yaml:"count"`
	Config yaml.Node `yaml:"config"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Configs expands step i into validated run configs. An unnamed step gets a
// prefix derived from its index so steps never share output names.
func (s *ScenarioStep) Configs(i int) ([]*config.Config, error) {
	base := config.DefaultConfig()
	if s.Preset != "" {
		base = config.GetPreset(s.Preset)
		if base == nil {
			return nil, fmt.Errorf("step %d: unknown preset %s", i+1, s.Preset)
		}
	}

	cfg := base.Clone()
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if cfg.Output.Prefix == base.Output.Prefix {
		if s.Name != "" {
			cfg.Output.Prefix = s.Name
		} else {
			cfg.Output.Prefix = fmt.Sprintf("%s_step%02d", base.Output.Prefix, i+1)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("step %d: %w", i+1, err)
	}

	if s.Count <= 1 {
		return []*config.Config{cfg}, nil
	}
	return experiment.Variants(cfg, s.Count), nil
}

// RunScenario renders every step. When outputDir is set it replaces each
// step's output directory.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, outputDir string, opts ...experiment.Option) ([]*experiment.Outcome, error) {
	var cfgs []*config.Config
	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		stepCfgs, err := step.Configs(i)
		if err != nil {
			return nil, err
		}
		for _, c := range stepCfgs {
			if outputDir != "" {
				c.Output.Dir = outputDir
			}
		}
		log.Info().
			Str("scenario", scenario.Name).
			Int("step", i+1).
			Str("preset", step.Preset).
			Int("runs", len(stepCfgs)).
			Msg("scenario step queued")
		cfgs = append(cfgs, stepCfgs...)
	}

	return experiment.RunBatch(ctx, cfgs, registry, scenario.Parallel, opts...)
}
