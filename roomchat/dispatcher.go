package roomchat

import "sync"

// Dispatcher routes classified frames and client events to registered
// callbacks. Callbacks run on the client's loop goroutines and must not
// block or call Logout synchronously.
type Dispatcher struct {
	mu             sync.RWMutex
	onChat         func(Frame)
	onPrivate      func(Frame)
	onSystem       func(Frame)
	onImage        func(Frame)
	onRoster       func(Roster)
	onNotice       func(Notice)
	onStateChanged func(StateEvent)
	onError        func(error)
}

func (d *Dispatcher) SetOnChat(fn func(Frame))    { d.set(func() { d.onChat = fn }) }
func (d *Dispatcher) SetOnPrivate(fn func(Frame)) { d.set(func() { d.onPrivate = fn }) }
func (d *Dispatcher) SetOnSystem(fn func(Frame))  { d.set(func() { d.onSystem = fn }) }
func (d *Dispatcher) SetOnImage(fn func(Frame))   { d.set(func() { d.onImage = fn }) }
func (d *Dispatcher) SetOnRoster(fn func(Roster)) { d.set(func() { d.onRoster = fn }) }
func (d *Dispatcher) SetOnNotice(fn func(Notice)) { d.set(func() { d.onNotice = fn }) }
func (d *Dispatcher) SetOnStateChanged(fn func(StateEvent)) {
	d.set(func() { d.onStateChanged = fn })
}
func (d *Dispatcher) SetOnError(fn func(error)) { d.set(func() { d.onError = fn }) }

func (d *Dispatcher) set(apply func()) {
	d.mu.Lock()
	apply()
	d.mu.Unlock()
}

// Dispatch delivers a frame. The roster argument is the snapshot the
// client stored for KindRoster frames.
func (d *Dispatcher) Dispatch(f Frame, roster Roster) {
	d.mu.RLock()
	onRoster := d.onRoster
	var fn func(Frame)
	switch f.Kind {
	case KindRoster:
	case KindPrivate:
		fn = d.onPrivate
	case KindSystem:
		fn = d.onSystem
	case KindImage:
		fn = d.onImage
	default:
		fn = d.onChat
	}
	d.mu.RUnlock()

	if f.Kind == KindRoster {
		if onRoster != nil {
			onRoster(roster)
		}
		return
	}
	if fn != nil {
		fn(f)
	}
}

func (d *Dispatcher) fireNotice(n Notice) {
	d.mu.RLock()
	fn := d.onNotice
	d.mu.RUnlock()
	if fn != nil {
		fn(n)
	}
}

func (d *Dispatcher) fireState(ev StateEvent) {
	d.mu.RLock()
	fn := d.onStateChanged
	d.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}

func (d *Dispatcher) fireError(err error) {
	d.mu.RLock()
	fn := d.onError
	d.mu.RUnlock()
	if fn != nil && err != nil {
		fn(err)
	}
}
