package walletpay

import "sync"

// Event names emitted to the session caller.
const (
	EventReady                   = "ready"
	EventError                   = "error"
	EventToken                   = "token"
	EventCancel                  = "cancel"
	EventShippingContactSelected = "shippingContactSelected"
	EventShippingMethodSelected  = "shippingMethodSelected"
	EventPaymentAuthorized       = "paymentAuthorized"
)

// Event is the single message shape delivered to caller listeners. Err is set
// for error events, Data carries the raw event or token payload otherwise.
type Event struct {
	Name string
	Err  *Error
	Data interface{}
}

// emitter provides observer registration and serialized dispatch. Events are
// queued and drained by whichever goroutine first entered emit, so handlers
// for one session never run concurrently and always observe session order.
//
// The ready event and an initialization error are sticky: listeners attached
// after the fact still receive them, which mirrors the replay-on-next-turn
// contract of the construction path.
type emitter struct {
	mu       sync.Mutex
	handlers map[string][]func(Event)
	queue    []Event
	draining bool
	sticky   map[string]Event
}

func (e *emitter) On(name string, fn func(Event)) {
	e.mu.Lock()
	if e.handlers == nil {
		e.handlers = make(map[string][]func(Event))
	}
	e.handlers[name] = append(e.handlers[name], fn)
	replay, ok := e.sticky[name]
	e.mu.Unlock()

	if ok {
		fn(replay)
	}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	e.queue = append(e.queue, ev)
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true

	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		listeners := append([]func(Event){}, e.handlers[next.Name]...)
		e.mu.Unlock()

		for _, fn := range listeners {
			fn(next)
		}

		e.mu.Lock()
	}
	e.draining = false
	e.mu.Unlock()
}

func (e *emitter) emitSticky(ev Event) {
	e.mu.Lock()
	if e.sticky == nil {
		e.sticky = make(map[string]Event)
	}
	e.sticky[ev.Name] = ev
	e.mu.Unlock()

	e.emit(ev)
}
