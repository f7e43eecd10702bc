package job

import (
	"context"
	"sync"
	"sync/atomic"
)

// Handle is the caller's view of a started job.
type Handle struct {
	id         string
	events     chan Event
	rejections chan struct{}
	cancel     context.CancelFunc
	state      atomic.Int32
	done       chan struct{}
	result     Result

	// emitMu orders event sends against Cancel so no progress or status event is
	// sent once Cancel has returned.
	emitMu sync.Mutex
}

func newHandle(id string, buffer int, cancel context.CancelFunc) *Handle {
	h := &Handle{
		id:         id,
		events:     make(chan Event, buffer),
		rejections: make(chan struct{}, 1),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	h.state.Store(int32(StateIdle))
	return h
}

// ID returns the job ID.
func (h *Handle) ID() string {
	return h.id
}

// Events returns the event stream of the run. It is closed after the EventCompleted
// event. Callers must drain it until it is closed.
func (h *Handle) Events() <-chan Event {
	return h.events
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Cancel requests the run to stop.
//
// During warm-up the request is refused with ErrNotCancellable and the run emits an
// EventCancelRejected. Once converting, the run stops at the next checkpoint and
// the only event still delivered is EventCompleted. Cancelling a finished job is
// a no-op. A request racing the end of the run returns ErrFinished when the run
// completed first.
func (h *Handle) Cancel() error {
	state := h.State()
	switch {
	case state.Terminal():
		return nil
	case !state.Cancellable():
		select {
		case h.rejections <- struct{}{}:
		default:
		}
		return ErrNotCancellable
	}

	h.cancel()
	// Wait for an in-flight send or settle.
	h.emitMu.Lock()
	defer h.emitMu.Unlock()
	if h.State() == StateDone {
		return ErrFinished
	}
	return nil
}

// Done is closed once the run has finished and its events were delivered.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its result. Events must be
// drained concurrently.
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

func (h *Handle) setState(s State) {
	h.state.Store(int32(s))
}

// settle moves the run to s unless ctx was cancelled first. Cancel waits for it, so
// a request either stops the run or observes s.
func (h *Handle) settle(ctx context.Context, s State) bool {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	h.setState(s)
	return true
}

// emit sends a progress, status or rejection event unless ctx is done.
func (h *Handle) emit(ctx context.Context, ev Event) bool {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	ev.JobID = h.id
	select {
	case h.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// complete records the result and delivers the terminal event.
func (h *Handle) complete(res Result) {
	h.result = res
	h.setState(res.State)
	h.events <- Event{
		JobID:   h.id,
		Kind:    EventCompleted,
		Success: res.Success,
		Message: res.Message,
		State:   res.State,
		Summary: res.Summary,
	}
	close(h.events)
}
