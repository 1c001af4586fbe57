package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nstehr/vimy/vimy-triggers/model"
	"github.com/nstehr/vimy/vimy-triggers/trigger"
)

// diagEvery is how often, in ticks, the loop logs a progress line.
const diagEvery = 100

// Loop drives one match: each tick applies queued world changes, then
// gives the trigger engine exactly one step. Only the goroutine calling
// Run or Step touches World and Engine; other goroutines go through Submit.
type Loop struct {
	World  *model.World
	Engine *trigger.Engine
	Game   *trigger.Game
	// Interval paces ticks. Zero runs them back to back.
	Interval time.Duration

	mu       sync.Mutex
	pending  []func(*model.World)
	tick     int
	lastDiag int
}

// Submit queues a world change for the start of the next tick.
func (l *Loop) Submit(f func(*model.World)) {
	l.mu.Lock()
	l.pending = append(l.pending, f)
	l.mu.Unlock()
}

// Tick is the number of ticks run so far.
func (l *Loop) Tick() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Step runs one tick. A trigger error is returned unchanged; the match
// cannot continue after one. Once the game has ended Step only applies
// queued changes: the result an end-of-game action set is final.
func (l *Loop) Step() error {
	l.mu.Lock()
	queued := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, f := range queued {
		f(l.World)
	}
	if !l.Game.Running {
		return nil
	}
	if err := l.Engine.Step(); err != nil {
		return err
	}

	l.mu.Lock()
	l.tick++
	tick := l.tick
	l.mu.Unlock()

	if tick-l.lastDiag >= diagEvery {
		l.lastDiag = tick
		slog.Info("loop diagnostics",
			"tick", tick,
			"units", len(l.World.Units()),
			"pendingTriggers", l.Engine.Pending(),
		)
	}
	return nil
}

// Run ticks until the game stops running, ctx is done, or maxTicks ticks
// have run (maxTicks <= 0 means no limit). It returns ctx.Err() when
// cancelled and a wrapped trigger error when a step fails.
func (l *Loop) Run(ctx context.Context, maxTicks int) error {
	var pace <-chan time.Time
	if l.Interval > 0 {
		t := time.NewTicker(l.Interval)
		defer t.Stop()
		pace = t.C
	}

	slog.Info("match started", "maxTicks", maxTicks, "interval", l.Interval)
	for n := 0; maxTicks <= 0 || n < maxTicks; n++ {
		if !l.Game.Running {
			break
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Step(); err != nil {
			return fmt.Errorf("tick %d: %w", l.Tick()+1, err)
		}
	}
	slog.Info("match stopped", "tick", l.Tick(), "result", l.Game.Result, "running", l.Game.Running)
	return nil
}
