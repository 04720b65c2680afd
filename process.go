// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package desim

// A ProcessFn is the body of a process. It is called every time the process
// wakes up and must return without blocking. Before returning, it may arm a
// dynamic wait with Wait or WaitFor; otherwise the static sensitivity given
// to Spawn decides when it runs again.
type ProcessFn func(p *Process)

// A Process is a schedulable unit of work.
type Process struct {
	name string
	s    *Scheduler
	fn   ProcessFn

	// gen is bumped every time the process is woken or re-armed. Timers and
	// dynamic event subscriptions carrying an older generation are stale.
	gen      uint64
	queued   bool
	dynamic  bool
	cause    *Event
	timedOut bool
	runs     uint64
}

// Spawn creates a process running fn, statically sensitive to the given
// events. The process is scheduled to run once at the current time in order
// to initialize; during that run Cause returns nil and TimedOut false.
func (s *Scheduler) Spawn(name string, fn ProcessFn, sensitivity ...*Event) *Process {
	if s.stopped {
		panic("spawn of process " + name + " on a stopped scheduler")
	}
	p := &Process{name: name, s: s, fn: fn}
	for _, e := range sensitivity {
		e.addStatic(p)
	}
	s.procs = append(s.procs, p)
	s.ready(p, nil, false)
	return p
}

// Name returns the process name.
func (p *Process) Name() string { return p.name }

func (p *Process) String() string { return p.name }

// Cause returns the event that woke the process, or nil if it was woken by
// a timeout or is running for initialization.
func (p *Process) Cause() *Event { return p.cause }

// TimedOut reports whether the process was woken by the deadline of a
// WaitFor.
func (p *Process) TimedOut() bool { return p.timedOut }

// Runs returns how many times the process body has been called.
func (p *Process) Runs() uint64 { return p.runs }

// Waiting reports whether the process is suspended on a dynamic wait.
func (p *Process) Waiting() bool { return p.dynamic }

// Wait suspends the process until one of the given events triggers. Static
// sensitivity is ignored until then. Calling Wait replaces any wait armed
// earlier in the same run.
func (p *Process) Wait(events ...*Event) {
	p.arm()
	for _, e := range events {
		e.addWaiter(p)
	}
}

// WaitFor suspends the process until d time units have elapsed or one of the
// given events triggers, whichever comes first. Once the process has been
// woken, the other wake-up sources are void: in particular the timer of a
// wait woken early by an event never fires.
func (p *Process) WaitFor(d Time, events ...*Event) {
	p.Wait(events...)
	p.s.schedule(&timer{at: p.s.now.add(d), p: p, gen: p.gen})
}

func (p *Process) arm() {
	p.gen++
	p.dynamic = true
}

func (p *Process) run() {
	p.queued = false
	p.runs++
	p.fn(p)
}
