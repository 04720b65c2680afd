// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package desim

// A Signal is an observable value with delta-cycle write semantics: Read
// returns the value committed at the end of the previous round, Write only
// records the value to commit at the end of the current one. The last write
// of a round wins.
//
// A signal has a single driver. The first process writing a signal becomes
// its driver and a write from any other process panics. Writes issued from
// outside of any process, typically by a test bench between two runs, are
// always accepted.
type Signal[T comparable] struct {
	name string
	s    *Scheduler

	cur     T
	next    T
	queued  bool
	changed *Event
	driver  *Process

	watchers []func(t Time, v T)
	onChange func(old, cur T)
}

// NewSignal returns a new signal with initial value init.
func NewSignal[T comparable](s *Scheduler, name string, init T) *Signal[T] {
	return &Signal[T]{
		name:    name,
		s:       s,
		cur:     init,
		next:    init,
		queued:  false,
		changed: s.NewEvent(name + ".changed"),
	}
}

// Name returns the signal name.
func (sig *Signal[T]) Name() string { return sig.name }

// Read returns the current value of the signal.
func (sig *Signal[T]) Read() T { return sig.cur }

// Write schedules v to become the value of the signal at the end of the
// current round.
func (sig *Signal[T]) Write(v T) {
	if p := sig.s.current; p != nil {
		switch sig.driver {
		case nil:
			sig.driver = p
		case p:
		default:
			panic("signal " + sig.name + " has multiple drivers: " + sig.driver.name + " and " + p.name)
		}
	}
	sig.next = v
	if !sig.queued {
		sig.queued = true
		sig.s.updates = append(sig.s.updates, sig)
	}
}

// Driver returns the process driving the signal, if any.
func (sig *Signal[T]) Driver() *Process { return sig.driver }

// Changed returns the event triggered in the round following a commit that
// changed the value of the signal.
func (sig *Signal[T]) Changed() *Event { return sig.changed }

// Watch registers fn to be called with the current time and the new value
// every time a change of value is committed.
func (sig *Signal[T]) Watch(fn func(t Time, v T)) {
	sig.watchers = append(sig.watchers, fn)
}

func (sig *Signal[T]) update() {
	sig.queued = false
	if sig.next == sig.cur {
		return
	}
	old := sig.cur
	sig.cur = sig.next
	sig.changed.NotifyAfter(0)
	if sig.onChange != nil {
		sig.onChange(old, sig.cur)
	}
	for _, w := range sig.watchers {
		w(sig.s.now, sig.cur)
	}
}

// A Bit is a boolean signal with edge events.
type Bit struct {
	*Signal[bool]
	pos *Event
	neg *Event
}

// NewBit returns a new boolean signal with initial value init.
func NewBit(s *Scheduler, name string, init bool) *Bit {
	b := &Bit{
		Signal: NewSignal(s, name, init),
		pos:    s.NewEvent(name + ".pos"),
		neg:    s.NewEvent(name + ".neg"),
	}
	b.onChange = func(_, cur bool) {
		if cur {
			b.pos.NotifyAfter(0)
		} else {
			b.neg.NotifyAfter(0)
		}
	}
	return b
}

// Posedge returns the event triggered when the signal goes from false to
// true.
func (b *Bit) Posedge() *Event { return b.pos }

// Negedge returns the event triggered when the signal goes from true to
// false.
func (b *Bit) Negedge() *Event { return b.neg }

// Toggle writes the complement of the current value.
func (b *Bit) Toggle() { b.Write(!b.Read()) }
