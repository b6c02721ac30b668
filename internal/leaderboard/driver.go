package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Source is one extraction backend driven round by round. Load runs
// once; Extract and Advance alternate until the driver stops. Extract
// errors are recoverable, Load errors are not.
type Source interface {
	// Load brings the target page up and verifies it is usable.
	Load(ctx context.Context) error
	// Extract returns the candidates currently visible. Round numbers
	// start at zero for the extraction right after Load.
	Extract(ctx context.Context, round int) ([]Candidate, error)
	// Advance reveals more content, typically by scrolling.
	Advance(ctx context.Context) error
}

// State is the driver's position in the scrape loop.
type State int

const (
	StateLoading State = iota
	StateExtracting
	StateContinue
	StateDone
)

// Config bounds a run. Target is the unique-record count that stops the
// loop early; MaxScrolls is the number of Advance calls allowed, so a
// run performs MaxScrolls+1 extraction rounds at most. Settle is the
// pause after each Advance before re-extracting.
type Config struct {
	Target     int
	MaxScrolls int
	Settle     time.Duration
}

// Driver owns the scroll-extract-merge loop shared by all backends.
type Driver struct {
	source Source
	acc    *Accumulator
	cfg    Config
}

// NewDriver wires a source to an accumulator under the given bounds.
func NewDriver(source Source, acc *Accumulator, cfg Config) *Driver {
	return &Driver{source: source, acc: acc, cfg: cfg}
}

// Run executes the loop to completion. A Load failure aborts the run;
// everything after that is soft, so whatever the accumulator holds when
// Run returns is valid regardless of the error paths taken along the
// way.
func (d *Driver) Run(ctx context.Context) error {
	state := StateLoading
	round := 0

	for {
		switch state {
		case StateLoading:
			if err := d.source.Load(ctx); err != nil {
				return fmt.Errorf("initial load failed: %w", err)
			}
			state = StateExtracting

		case StateExtracting:
			candidates, err := d.source.Extract(ctx, round)
			if err != nil {
				slog.Warn("extraction round failed", "round", round, "error", err)
			}
			added := d.acc.Merge(candidates)
			slog.Info("round complete",
				"round", round,
				"added", added,
				"total", d.acc.Size(),
				"duplicates", d.acc.Duplicates(),
				"skipped", d.acc.Skipped())

			switch {
			case d.acc.Size() >= d.cfg.Target:
				slog.Info("target reached", "total", d.acc.Size(), "target", d.cfg.Target)
				state = StateDone
			case round >= d.cfg.MaxScrolls:
				slog.Info("scroll budget exhausted", "rounds", round+1, "total", d.acc.Size())
				state = StateDone
			default:
				state = StateContinue
			}

		case StateContinue:
			if err := d.source.Advance(ctx); err != nil {
				slog.Warn("advance failed", "round", round, "error", err)
			}
			if d.cfg.Settle > 0 {
				time.Sleep(d.cfg.Settle)
			}
			round++
			state = StateExtracting

		case StateDone:
			return nil
		}
	}
}
