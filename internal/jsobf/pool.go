package jsobf

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when acquiring from a closed pool.
var ErrPoolClosed = errors.New("runtime pool is closed")

// runtimePool hands out goja runtimes, creating them lazily up to size.
type runtimePool struct {
	newRuntime func() (*gojaRuntime, error)
	runtimes   chan *gojaRuntime
	freed      chan struct{} // signalled when a broken runtime gives up its slot
	size       int

	mu      sync.Mutex
	created int
	closed  bool
}

func newRuntimePool(size int, factory func() (*gojaRuntime, error)) *runtimePool {
	if size <= 0 {
		size = 1
	}
	return &runtimePool{
		newRuntime: factory,
		runtimes:   make(chan *gojaRuntime, size),
		freed:      make(chan struct{}, size),
		size:       size,
	}
}

// acquire returns an idle runtime, builds a new one while under size, or
// waits for a release.
func (p *runtimePool) acquire(ctx context.Context) (*gojaRuntime, error) {
	for {
		select {
		case rt, ok := <-p.runtimes:
			if !ok {
				return nil, ErrPoolClosed
			}
			return rt, nil
		default:
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if p.created < p.size {
			p.created++
			p.mu.Unlock()
			rt, err := p.newRuntime()
			if err != nil {
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				return nil, err
			}
			return rt, nil
		}
		p.mu.Unlock()

		select {
		case rt, ok := <-p.runtimes:
			if !ok {
				return nil, ErrPoolClosed
			}
			return rt, nil
		case <-p.freed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// release returns rt to the pool. A broken runtime is dropped and its slot
// handed back, so the next acquire builds a fresh one.
func (p *runtimePool) release(rt *gojaRuntime, broken bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if broken || p.closed {
		p.created--
		if !p.closed {
			select {
			case p.freed <- struct{}{}:
			default:
			}
		}
		return
	}
	p.runtimes <- rt
}

func (p *runtimePool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.runtimes)
	for range p.runtimes {
	}
}

// stats reports pool occupancy.
func (p *runtimePool) stats() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]interface{}{
		"size":      p.size,
		"created":   p.created,
		"available": len(p.runtimes),
		"closed":    p.closed,
	}
}
