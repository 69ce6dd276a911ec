package watchdog

import (
	"sync"
	"time"
)

// Bus is the write primitive guarded by Guard.
type Bus interface {
	Write(p []byte) (int, error)
	Close() error
}

type Watchdog struct {
	wait    time.Duration
	onStall func()
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New returns a watchdog that calls onStall once it stays armed for longer
// than wait.
func New(wait time.Duration, onStall func()) *Watchdog {
	return &Watchdog{wait: wait, onStall: onStall}
}

// Arm (re)starts the countdown.
func (w *Watchdog) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.wait, w.onStall)
}

// Disarm cancels a running countdown.
func (w *Watchdog) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop disarms the watchdog for good.
func (w *Watchdog) Stop() {
	w.Disarm()
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
}

type guarded struct {
	Bus
	w *Watchdog
}

// Guard returns a bus whose writes are each watched by w.
func Guard(b Bus, w *Watchdog) Bus {
	return &guarded{Bus: b, w: w}
}

func (g *guarded) Write(p []byte) (int, error) {
	g.w.Arm()
	defer g.w.Disarm()
	return g.Bus.Write(p)
}

func (g *guarded) Close() error {
	g.w.Stop()
	return g.Bus.Close()
}
