package game

import (
	"context"
	"testing"
	"time"

	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/sim"
)

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { close(t.stopped) }

type manualClock struct {
	created chan *manualTicker
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	t := &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.created <- t
	return t
}

func waitTicker(t *testing.T, c *manualClock) *manualTicker {
	t.Helper()
	select {
	case tk := <-c.created:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("runner never started a ticker")
	}
	return nil
}

func waitStopped(t *testing.T, tk *manualTicker) {
	t.Helper()
	select {
	case <-tk.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker was not stopped")
	}
}

func TestRunnerTicksOnlyWhileTraveling(t *testing.T) {
	quizzes := []sim.Quiz{{ID: "q", Options: []string{"a", "b"}, Correct: 1}}
	cfg := sim.DefaultConfig()
	cfg.Delta = 20
	s, _, _ := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent(quizzes...)})),
		WithConfig(cfg),
	)
	clock := &manualClock{created: make(chan *manualTicker, 4)}
	r := NewRunner(s, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case <-clock.created:
		t.Fatal("ticker created before launch")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	tk := waitTicker(t, clock)
	tk.ch <- time.Time{} // 20
	tk.ch <- time.Time{} // 40, checkpoint 35
	waitStopped(t, tk)
	if got := s.Snapshot().Travel; got != "paused" {
		t.Fatalf("travel = %s", got)
	}

	if _, err := s.AnswerQuiz(1); err != nil {
		t.Fatal(err)
	}
	tk = waitTicker(t, clock)
	tk.ch <- time.Time{} // 60
	tk.ch <- time.Time{} // 80, checkpoint 70
	waitStopped(t, tk)

	if _, err := s.AnswerQuiz(0); err != nil {
		t.Fatal(err)
	}
	tk = waitTicker(t, clock)
	tk.ch <- time.Time{} // 100
	waitStopped(t, tk)
	if got := s.Snapshot().Phase; got != "ARRIVAL" {
		t.Fatalf("phase = %s", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	s.Wait()
}
