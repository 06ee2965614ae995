package storefront

import "sync"

// Notifier receives the outcome of every intent that has something to say.
type Notifier interface {
	Notify(Outcome)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Outcome)

// Notify calls f.
func (f NotifierFunc) Notify(o Outcome) { f(o) }

// Inbox collects notifications in arrival order.
type Inbox struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// Notify appends o.
func (b *Inbox) Notify(o Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes = append(b.outcomes, o)
}

// Outcomes returns a copy of everything received so far.
func (b *Inbox) Outcomes() []Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Outcome(nil), b.outcomes...)
}

// Messages returns the notification texts received so far.
func (b *Inbox) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := make([]string, len(b.outcomes))
	for i, o := range b.outcomes {
		msgs[i] = o.Message
	}
	return msgs
}
