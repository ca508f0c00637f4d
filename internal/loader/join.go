package loader

import (
	"fmt"
	"sync"
)

// JoinState tracks how many of the expected resources have arrived.
type JoinState int

const (
	Pending JoinState = iota
	Partial
	Ready
	Failed
)

func (s JoinState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Partial:
		return "partial"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("JoinState(%d)", int(s))
}

// Join is a count-based barrier over a fixed number of loads. The Ready
// channel closes exactly once, when every load has completed, whatever the
// completion order. The first failure moves the join to Failed instead and
// later completions are ignored.
type Join struct {
	mu     sync.Mutex
	total  int
	loaded int
	state  JoinState
	err    error
	done   chan struct{}

	// OnProgress, when set, is called with the loaded count after each
	// successful completion. It runs under the join's lock and before
	// Settled closes, so it must not call back into the join.
	OnProgress func(loaded, total int)
}

func NewJoin(total int) *Join {
	j := &Join{total: total, done: make(chan struct{})}
	if total <= 0 {
		j.state = Ready
		close(j.done)
	}
	return j
}

// Done records one completion. It reports whether this call settled the
// join.
func (j *Join) Done(err error) bool {
	j.mu.Lock()
	if j.state == Ready || j.state == Failed {
		j.mu.Unlock()
		return false
	}
	if err != nil {
		j.state = Failed
		j.err = err
		close(j.done)
		j.mu.Unlock()
		return true
	}
	j.loaded++
	if j.OnProgress != nil {
		j.OnProgress(j.loaded, j.total)
	}
	settled := false
	if j.loaded >= j.total {
		j.state = Ready
		close(j.done)
		settled = true
	} else {
		j.state = Partial
	}
	j.mu.Unlock()
	return settled
}

// Settled is closed once the join is Ready or Failed.
func (j *Join) Settled() <-chan struct{} { return j.done }

func (j *Join) State() JoinState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Err is the failure that settled the join, if any.
func (j *Join) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
