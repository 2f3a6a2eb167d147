// Package upload reports the progress of blob uploads to observers.
//
// Backends do not expose byte-level progress, so progress is simulated:
// it advances by a fixed step on every tick until it reaches a ceiling,
// and jumps to 100 once the upload completes.
package upload

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultInterval = 300 * time.Millisecond
	DefaultStep     = 10
	DefaultCeiling  = 90
	Complete        = 100
)

// Observer receives progress percentages. It is called from the progress
// goroutine and must not block.
type Observer func(percent int)

type Progress struct {
	mu       sync.Mutex
	value    int
	observer Observer
	step     int
	ceiling  int

	stop     chan struct{}
	stopOnce sync.Once
	finished chan struct{}
}

// Start begins reporting progress every interval until Done or Stop is
// called or ctx is cancelled. A nil observer is allowed.
func Start(ctx context.Context, interval time.Duration, observer Observer) *Progress {
	if observer == nil {
		observer = func(int) {}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Progress{
		observer: observer,
		step:     DefaultStep,
		ceiling:  DefaultCeiling,
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	p.observer(0)
	go p.run(ctx, interval)
	return p
}

func (p *Progress) run(ctx context.Context, interval time.Duration) {
	defer close(p.finished)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.value >= p.ceiling {
				p.mu.Unlock()
				continue
			}
			p.value = min(p.value+p.step, p.ceiling)
			v := p.value
			p.mu.Unlock()
			p.observer(v)
		}
	}
}

func (p *Progress) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Done marks the upload complete and reports 100.
func (p *Progress) Done() {
	p.Stop()
	p.mu.Lock()
	p.value = Complete
	p.mu.Unlock()
	p.observer(Complete)
}

// Stop halts reporting without completing, leaving the last value.
// It is safe to call multiple times.
func (p *Progress) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.finished
}
