package coordinator

import (
	"context"
	"sync"
)

// pauseGate is the cooperative barrier spec.md §4.3/§5 describes:
// pause() and resume() toggle it, and the runner blocks on Wait at
// every suspension point (before advancing the engine, before the
// remote model call, and before committing an action). A cancelled
// run's context wakes any blocked Wait immediately regardless of the
// paused flag, so stop_run never hangs behind a paused run.
type pauseGate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
}

func newPauseGate() *pauseGate {
	g := &pauseGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *pauseGate) pause() {
	g.mu.Lock()
	g.paused = true
	g.mu.Unlock()
}

func (g *pauseGate) resume() {
	g.mu.Lock()
	g.paused = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

func (g *pauseGate) isPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// watch wakes any blocked Wait as soon as ctx is cancelled.
func (g *pauseGate) watch(ctx context.Context) {
	<-ctx.Done()
	g.mu.Lock()
	g.cond.Broadcast()
	g.mu.Unlock()
}

// wait blocks while the gate is paused, unless ctx is cancelled first.
func (g *pauseGate) wait(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.paused && ctx.Err() == nil {
		g.cond.Wait()
	}
}
