package mail

import (
	"context"
	"sync"
)

// Delivery tracks one dispatched message. Send operations return it before the
// transport has finished; callers that don't care may drop it.
type Delivery struct {
	ID string

	once sync.Once
	done chan struct{}
	err  error
}

func newDelivery(id string) *Delivery {
	return &Delivery{ID: id, done: make(chan struct{})}
}

func (d *Delivery) finish(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// Done is closed once the transport returned.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Err returns the transport error. It is nil until Done is closed.
func (d *Delivery) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}

// Wait blocks until the transport returned or ctx is done.
func (d *Delivery) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// inflight counts running transport calls. Unlike sync.WaitGroup it may be
// incremented from zero while another goroutine is waiting on idle.
type inflight struct {
	mu      sync.Mutex
	pending int
	// idleCh is closed whenever pending is zero
	idleCh chan struct{}
}

func newInflight() *inflight {
	ch := make(chan struct{})
	close(ch)
	return &inflight{idleCh: ch}
}

func (f *inflight) add() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == 0 {
		f.idleCh = make(chan struct{})
	}
	f.pending++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending--
	if f.pending == 0 {
		close(f.idleCh)
	}
}

// idle returns a channel closed once nothing is in flight. Work added before
// that point extends the wait.
func (f *inflight) idle() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idleCh
}
