package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roach88/converge/internal/entity"
	"github.com/roach88/converge/internal/store"
)

// LocalSource supplies the authoritative desired-state snapshot.
// Implemented by source.Provider.
type LocalSource interface {
	LocalSnapshot(ctx context.Context) ([]entity.Entity, error)
}

// RemoteSource supplies the remote store's current snapshot.
// Implemented by *store.Store.
type RemoteSource interface {
	RemoteSnapshot(ctx context.Context) ([]entity.Entity, error)
}

// Applier executes a patchset against the remote store. It owns retry and
// partial-failure recovery; instructions are independently, idempotently
// applicable. Implemented by *store.Store.
type Applier interface {
	Apply(ctx context.Context, ps *entity.Patchset) (store.ApplyStats, error)
}

// CycleReport summarizes one reconciliation cycle.
type CycleReport struct {
	Token     string           `json:"token"`
	Cycle     int64            `json:"cycle"`
	LocalN    int              `json:"local_records"`
	RemoteN   int              `json:"remote_records"`
	Additions int              `json:"additions"`
	Deletions int              `json:"deletions"`
	Applied   store.ApplyStats `json:"applied"`
	Converged bool             `json:"converged"`
	Duration  time.Duration    `json:"duration_ns"`
}

// DefaultInterval is the default cadence of the periodic loop.
const DefaultInterval = 30 * time.Second

// Engine runs reconciliation cycles.
//
// Cycles execute strictly one at a time: Run is a single-goroutine loop, and
// RunOnce performs a full cycle synchronously. The engine holds no state
// between cycles beyond the logical cycle counter; every cycle re-reads both
// snapshots, so convergence follows from re-derivation rather than from any
// cached plan.
type Engine struct {
	local   LocalSource
	remote  RemoteSource
	applier Applier

	cycles   *Clock
	tokens   TokenGenerator
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the periodic loop cadence. Default: DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithClock substitutes the wall clock driving the periodic loop.
// Tests pass a clockwork fake to step through ticks synthetically.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTokenGenerator substitutes the cycle token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over the three collaborators.
func New(local LocalSource, remote RemoteSource, applier Applier, opts ...Option) *Engine {
	e := &Engine{
		local:    local,
		remote:   remote,
		applier:  applier,
		cycles:   NewClock(),
		tokens:   UUIDv7Generator{},
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOnce executes one reconciliation cycle synchronously.
//
// Stages: local snapshot, remote snapshot, reconcile, apply. An empty
// patchset skips the applier entirely. Errors carry the cycle token and
// stage via *CycleError.
func (e *Engine) RunOnce(ctx context.Context) (*CycleReport, error) {
	cycle := e.cycles.Next()
	token := e.tokens.Generate()
	started := e.clock.Now()

	local, err := e.local.LocalSnapshot(ctx)
	if err != nil {
		return nil, &CycleError{Code: ErrCodeSnapshotFailed, Token: token, Cycle: cycle, Err: err}
	}
	remote, err := e.remote.RemoteSnapshot(ctx)
	if err != nil {
		return nil, &CycleError{Code: ErrCodeSnapshotFailed, Token: token, Cycle: cycle, Err: err}
	}

	ps, err := entity.Reconcile(local, remote)
	if err != nil {
		return nil, &CycleError{Code: ErrCodeReconcileFailed, Token: token, Cycle: cycle, Err: err}
	}

	report := &CycleReport{
		Token:     token,
		Cycle:     cycle,
		LocalN:    len(local),
		RemoteN:   len(remote),
		Additions: len(ps.Additions()),
		Deletions: len(ps.Deletions()),
		Converged: ps.Empty(),
	}

	if !ps.Empty() {
		stats, err := e.applier.Apply(ctx, ps)
		if err != nil {
			return nil, &CycleError{Code: ErrCodeApplyFailed, Token: token, Cycle: cycle, Err: err}
		}
		report.Applied = stats
	}

	report.Duration = e.clock.Since(started)
	return report, nil
}

// Run executes cycles on the configured interval until ctx is cancelled.
//
// The first cycle runs immediately rather than one interval in. Failed
// cycles are logged and the loop continues: a transient snapshot or apply
// failure should not stop reconciliation, and a precondition violation may
// be fixed in the desired state before the next tick.
func (e *Engine) Run(ctx context.Context) error {
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		report, err := e.RunOnce(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			e.logger.Error("reconciliation cycle failed", "error", err)
		case report.Converged:
			e.logger.Debug("cycle converged",
				"token", report.Token, "cycle", report.Cycle,
				"local", report.LocalN, "remote", report.RemoteN)
		default:
			e.logger.Info("cycle applied patchset",
				"token", report.Token, "cycle", report.Cycle,
				"additions", report.Additions, "deletions", report.Deletions,
				"added", report.Applied.Added, "deleted", report.Applied.Deleted,
				"skipped", report.Applied.Skipped)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}
