package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// intentQueue is an unbounded, thread-safe FIFO of intents.
//
// Producers may enqueue from any goroutine; Run is the only consumer. The
// signal channel has a buffer of one so several enqueues coalesce into one
// wake-up.
type intentQueue struct {
	mu      sync.Mutex
	intents []Intent
	closed  bool
	signal  chan struct{}
}

func newIntentQueue() *intentQueue {
	return &intentQueue{
		intents: make([]Intent, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// enqueue returns false once the queue is closed.
func (q *intentQueue) enqueue(in Intent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.intents = append(q.intents, in)
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *intentQueue) tryDequeue() (Intent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.intents) == 0 {
		return Intent{}, false
	}
	in := q.intents[0]
	q.intents[0] = Intent{}
	if len(q.intents) == 1 {
		q.intents = q.intents[:0]
	} else {
		q.intents = q.intents[1:]
	}
	return in, true
}

func (q *intentQueue) wait() <-chan struct{} {
	return q.signal
}

// drained reports whether the queue is closed with nothing left in it.
func (q *intentQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.intents) == 0
}

func (q *intentQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.intents)
}

func (q *intentQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Enqueue submits an intent for Run. Safe from any goroutine; returns false
// after Stop.
func (p *Page) Enqueue(in Intent) bool {
	return p.queue.enqueue(in)
}

// Pending returns the number of queued intents not yet dispatched.
func (p *Page) Pending() int {
	return p.queue.len()
}

// Run dispatches queued intents one at a time until ctx is cancelled or Stop
// is called and the queue is empty. Outcomes reach the notifier. A storage
// failure is logged and the loop moves on to the next intent.
//
// Run must be called from exactly one goroutine.
func (p *Page) Run(ctx context.Context) error {
	p.log.Debug("page_loop_started")
	for {
		if in, ok := p.queue.tryDequeue(); ok {
			if _, err := p.Dispatch(ctx, in); err != nil {
				p.log.Warn("queued_intent_failed", zap.String("intent", string(in.Kind)), zap.Error(err))
			}
			continue
		}

		select {
		case <-ctx.Done():
			p.queue.close()
			p.log.Debug("page_loop_stopped", zap.String("reason", "context cancelled"))
			return ctx.Err()
		case <-p.queue.wait():
			if p.queue.drained() {
				p.log.Debug("page_loop_stopped", zap.String("reason", "queue closed"))
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the remaining intents are done.
func (p *Page) Stop() {
	p.queue.close()
}
