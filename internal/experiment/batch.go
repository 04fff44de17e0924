package experiment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/spirograph/internal/config"
)

// Variants derives count configs from base. Each gets its own output prefix
// so runs started in the same second do not collide, and seed base+i. A zero
// base seed is replaced by one time-derived seed for the whole set.
func Variants(base *config.Config, count int) []*config.Config {
	seed := base.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfgs := make([]*config.Config, count)
	for i := range cfgs {
		c := base.Clone()
		c.Output.Prefix = fmt.Sprintf("%s_%03d", base.Output.Prefix, i)
		c.Seed = seed + int64(i)
		cfgs[i] = c
	}
	return cfgs
}

// assignSeeds gives every unseeded config base+i from a single clock read,
// cloning those it changes. Seeded configs are returned as is.
func assignSeeds(cfgs []*config.Config, base int64) []*config.Config {
	out := make([]*config.Config, len(cfgs))
	for i, c := range cfgs {
		if c.Seed == 0 {
			c = c.Clone()
			c.Seed = base + int64(i)
		}
		out[i] = c
	}
	return out
}

// RunBatch renders independent animations with at most parallel running at
// once. Unseeded configs get distinct seeds from one clock read. Each animation stays a single sequential loop. The first failure
// cancels the runs that have not finished; outcomes of completed runs are kept.
func RunBatch(ctx context.Context, cfgs []*config.Config, reg *Registry, parallel int, opts ...Option) ([]*Outcome, error) {
	if parallel < 1 {
		parallel = 1
	}

	cfgs = assignSeeds(cfgs, time.Now().UnixNano())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	outcomes := make([]*Outcome, len(cfgs))
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			exp, err := New(cfg, reg, opts...)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			out, err := exp.Run(ctx)
			outcomes[i] = out
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			return nil
		})
	}

	return outcomes, g.Wait()
}
