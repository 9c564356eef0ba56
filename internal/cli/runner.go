package cli

import (
	"context"
	"fmt"
	"io"

	service "github.com/okian/batsim/internal/app"
	"github.com/okian/batsim/internal/config"
	"github.com/okian/batsim/internal/report"
	"github.com/okian/batsim/pkg/logger"
)

// Runner executes the selected modes against one service.
type Runner struct {
	svc *service.Service
	out io.Writer
	log logger.Logger
}

// NewRunner builds and starts a service from cfg with the flag overrides
// applied.
func NewRunner(ctx context.Context, cfg *config.Config, o Options, out io.Writer) (*Runner, error) {
	if o.Workers > 0 {
		cfg.WorkerCount = o.Workers
	}
	if o.Seed > 0 {
		cfg.Seed = o.Seed
	}
	if o.Seasons > 0 {
		cfg.FinalSeasons = o.Seasons
	}
	opts, err := service.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.Named("calibrate")
	svc := service.New(append(opts, service.WithLogger(log))...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return &Runner{svc: svc, out: out, log: log}, nil
}

// Close stops the service.
func (r *Runner) Close() { r.svc.Stop() }

// Run executes every selected mode in a fixed order.
func (r *Runner) Run(ctx context.Context, o Options) error {
	if o.Archetypes || o.idle() {
		if err := r.archetypes(ctx); err != nil {
			return err
		}
	}
	if o.Sweep != "" {
		if err := r.sweep(ctx, o); err != nil {
			return err
		}
	}
	if o.Player != "" {
		if err := r.calibrate(ctx, o.Player); err != nil {
			return err
		}
	}
	if o.All {
		ps, err := r.svc.Players(ctx)
		if err != nil {
			return err
		}
		for _, p := range ps {
			if err := r.calibrate(ctx, p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// archetypes simulates each archetype at its known abilities.
func (r *Runner) archetypes(ctx context.Context) error {
	as, err := r.svc.Archetypes(ctx)
	if err != nil {
		return err
	}
	for _, a := range as {
		stats, err := r.svc.Simulate(ctx, a.Attributes, a.Target, 0)
		if err != nil {
			return fmt.Errorf("archetype %q: %w", a.Name, err)
		}
		if err := report.WriteComparison(r.out, "archetype "+a.Name, a.Attributes, stats, a.Target); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
	}
	return nil
}

// calibrate prints the anchor simulation, the calibration and the
// confirmation run for one reference player.
func (r *Runner) calibrate(ctx context.Context, name string) error {
	p, err := r.svc.Player(ctx, name)
	if err != nil {
		return err
	}
	anchor := r.svc.Anchor(p.Metrics)
	direct, err := r.svc.Simulate(ctx, anchor, p.Target, 0)
	if err != nil {
		return err
	}
	if err := report.WriteComparison(r.out, p.Name+" at anchor", anchor, direct, p.Target); err != nil {
		return err
	}
	fmt.Fprintln(r.out)

	r.log.Info(ctx, "calibrating", logger.String("player", p.Name), logger.String("anchor", anchor.String()))
	cal, err := r.svc.Calibrate(ctx, anchor, p.Target, r.svc.Ranges(anchor))
	if err != nil {
		return fmt.Errorf("calibrate %q: %w", p.Name, err)
	}
	if err := report.WriteCalibration(r.out, cal); err != nil {
		return err
	}
	fmt.Fprintln(r.out)

	confirm, err := r.svc.Simulate(ctx, cal.Best, p.Target, r.svc.FinalSeasons())
	if err != nil {
		return err
	}
	heading := fmt.Sprintf("%s confirmation, %d seasons", p.Name, r.svc.FinalSeasons())
	if err := report.WriteComparison(r.out, heading, cal.Best, confirm, p.Target); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	return nil
}

// sweep prints one attribute sweep as a table or CSV.
func (r *Runner) sweep(ctx context.Context, o Options) error {
	attr, err := report.ParseAttribute(o.Sweep)
	if err != nil {
		return err
	}
	req := report.DefaultSweep(attr)
	req.Step = 10
	if o.Seasons > 0 {
		req.Seasons = o.Seasons
	}
	req.Seed = o.Seed
	if err := req.Validate(); err != nil {
		return err
	}
	rows, err := r.svc.Sweep(ctx, req)
	if err != nil {
		return err
	}
	if o.CSV {
		return report.WriteSweepCSV(r.out, rows)
	}
	return report.WriteSweep(r.out, attr, rows)
}
