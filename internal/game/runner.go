package game

import (
	"context"
	"time"

	"bubblevoyage/internal/logger"
)

// Ticker is the part of time.Ticker the runner needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock makes tickers. Tests swap in a manual one.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (t realTicker) C() <-chan time.Time { return t.t.C }
func (t realTicker) Stop()               { t.t.Stop() }

// Runner is the heartbeat of a session. A ticker only exists while the
// bubble is moving: it is stopped at quizzes and arrival and recreated when
// the session wakes it.
type Runner struct {
	session *Session
	clock   Clock
	log     *logger.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock replaces the wall clock.
func WithClock(c Clock) RunnerOption { return func(r *Runner) { r.clock = c } }

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(l *logger.Logger) RunnerOption { return func(r *Runner) { r.log = l } }

func NewRunner(s *Session, opts ...RunnerOption) *Runner {
	r := &Runner{session: s, clock: realClock{}, log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks the session until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("runner started, tick every %s", r.session.cfg.Interval)
	for {
		if !r.session.Ticking() {
			select {
			case <-ctx.Done():
				r.log.Info("runner stopped")
				return nil
			case <-r.session.wake:
			}
			continue
		}
		if err := r.travel(ctx); err != nil {
			r.log.Info("runner stopped")
			return nil
		}
	}
}

// travel ticks until the journey pauses or ends.
func (r *Runner) travel(ctx context.Context) error {
	t := r.clock.NewTicker(r.session.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			if !r.session.Step() {
				return nil
			}
		}
	}
}
