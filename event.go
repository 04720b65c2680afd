// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package desim

type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingDelta
	pendingTimed
)

// waiter is a dynamic subscription. It is only honoured while gen matches the
// generation of its process: waking a process for any reason invalidates all
// of its other subscriptions.
type waiter struct {
	p   *Process
	gen uint64
}

// An Event is a notifiable token. Notifying an event wakes every process
// waiting on it.
//
// An event holds at most one pending notification. Notifying an event that
// already has a pending notification due at the same time or earlier has no
// effect, an earlier notification replaces a later one.
type Event struct {
	name    string
	s       *Scheduler
	static  []*Process
	dynamic []waiter
	pending pendingKind
	timer   *timer
	fired   uint64
}

// NewEvent returns a new event.
func (s *Scheduler) NewEvent(name string) *Event {
	return &Event{name: name, s: s, pending: pendingNone}
}

// Name returns the event name.
func (e *Event) Name() string { return e.name }

func (e *Event) String() string { return e.name }

// Fired returns the number of times e has been triggered.
func (e *Event) Fired() uint64 { return e.fired }

// Pending reports whether a notification is pending.
func (e *Event) Pending() bool { return e.pending != pendingNone }

// Notify triggers e immediately. Processes waiting on e become runnable in
// the current evaluation round. Any pending delayed notification is cancelled.
func (e *Event) Notify() {
	e.Cancel()
	e.trigger()
}

// NotifyAfter schedules e to trigger after d time units. A zero delay
// triggers e at the start of the next delta round of the current instant.
func (e *Event) NotifyAfter(d Time) {
	at := e.s.now.add(d)
	switch e.pending {
	case pendingDelta:
		return
	case pendingTimed:
		if e.timer.at <= at && d != 0 {
			return
		}
		e.Cancel()
	}
	if d == 0 {
		e.pending = pendingDelta
		e.s.deltaEvents = append(e.s.deltaEvents, e)
		return
	}
	e.pending = pendingTimed
	e.timer = e.s.schedule(&timer{at: at, ev: e})
}

// Cancel drops a pending notification, if any.
func (e *Event) Cancel() {
	if e.timer != nil {
		e.timer.dead = true
		e.timer = nil
	}
	e.pending = pendingNone
}

func (e *Event) addStatic(p *Process) {
	e.static = append(e.static, p)
}

func (e *Event) addWaiter(p *Process) {
	if len(e.dynamic) >= 32 {
		// drop stale subscriptions of processes woken by something else.
		live := e.dynamic[:0]
		for _, w := range e.dynamic {
			if w.gen == w.p.gen && w.p.dynamic {
				live = append(live, w)
			}
		}
		e.dynamic = live
	}
	e.dynamic = append(e.dynamic, waiter{p, p.gen})
}

func (e *Event) trigger() {
	e.fired++
	for _, p := range e.static {
		if !p.dynamic {
			e.s.ready(p, e, false)
		}
	}
	ws := e.dynamic
	e.dynamic = nil
	for _, w := range ws {
		if w.gen == w.p.gen && w.p.dynamic {
			e.s.ready(w.p, e, false)
		}
	}
}
