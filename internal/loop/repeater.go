package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Repeater posts a task to a Loop every interval while started. At most one
// tick is pending on the loop at any time; a tick that comes due while the
// previous one has not run yet is dropped, never queued.
type Repeater struct {
	loop     *Loop
	interval time.Duration
	task     func()

	mu     sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup

	gen     atomic.Uint64
	pending atomic.Bool

	ticks atomic.Uint64
	drops atomic.Uint64
}

// NewRepeater binds task to l. A non-positive interval falls back to 30 Hz.
func NewRepeater(l *Loop, interval time.Duration, task func()) *Repeater {
	if interval <= 0 {
		interval = time.Second / 30
	}
	return &Repeater{loop: l, interval: interval, task: task}
}

// Start begins ticking. Starting a running repeater does nothing.
func (r *Repeater) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopCh != nil {
		return
	}
	r.stopCh = make(chan struct{})
	gen := r.gen.Add(1)
	r.pending.Store(false)

	r.wg.Add(1)
	go r.run(gen, r.stopCh)
}

// Stop halts ticking and waits for the timer goroutine. A tick already
// posted to the loop becomes a no-op. Stopping a stopped repeater does nothing.
func (r *Repeater) Stop() {
	r.mu.Lock()
	if r.stopCh == nil {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.stopCh = nil
	r.gen.Add(1)
	r.mu.Unlock()

	r.wg.Wait()
}

// Running reports whether the repeater is started.
func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopCh != nil
}

// Ticks is the number of task runs so far.
func (r *Repeater) Ticks() uint64 { return r.ticks.Load() }

// Drops is the number of ticks skipped because the previous one was pending.
func (r *Repeater) Drops() uint64 { return r.drops.Load() }

func (r *Repeater) run(gen uint64, stop <-chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.fire(gen)
		}
	}
}

func (r *Repeater) fire(gen uint64) {
	if !r.pending.CompareAndSwap(false, true) {
		r.drops.Add(1)
		return
	}
	ok := r.loop.Post(func() {
		r.pending.Store(false)
		if r.gen.Load() != gen {
			return
		}
		r.ticks.Add(1)
		r.task()
	})
	if !ok {
		r.pending.Store(false)
	}
}
