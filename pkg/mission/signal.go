package mission

import "sync"

// SignalQueue collects operator signals from any source (console reader,
// dashboard) for the control loop to poll once per cycle. Only the highest
// priority pending signal is kept: quit beats reset beats continue.
type SignalQueue struct {
	mu      sync.Mutex
	pending Signal
}

// Offer records a signal. A lower-priority signal never displaces a pending
// higher-priority one.
func (q *SignalQueue) Offer(sig Signal) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if sig > q.pending {
		q.pending = sig
	}
}

// Poll returns the pending signal and clears it.
func (q *SignalQueue) Poll() Signal {
	q.mu.Lock()
	defer q.mu.Unlock()
	sig := q.pending
	q.pending = SignalNone
	return sig
}
