// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package desim

import (
	"container/heap"

	"github.com/db47h/desim/logger"
)

// An Option configures a Scheduler.
type Option func(s *Scheduler)

// WithLogger sets the logger used by the scheduler and made available to
// models through Scheduler.Logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// updater is implemented by signals with a pending write.
type updater interface {
	update()
}

// A Scheduler runs processes in simulated time.
//
// Each instant is settled in delta rounds. A round runs every runnable
// process, then commits all pending signal writes at once, then fires the
// events notified for the next round (including the value-changed events of
// the committed signals). Rounds repeat until nothing is left to do at the
// current instant; only then does time move forward to the next timed
// wake-up.
type Scheduler struct {
	now    Time
	deltas uint64
	seq    uint64

	runnable    []*Process
	updates     []updater
	deltaEvents []*Event
	timers      timerQueue
	procs       []*Process
	current     *Process
	stopped     bool

	log *logger.Logger
}

// New returns a new Scheduler at time 0.
func New(options ...Option) *Scheduler {
	s := &Scheduler{
		now:    0,
		deltas: 0,
		log:    logger.Discard(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Now returns the current simulated time.
func (s *Scheduler) Now() Time { return s.now }

// Deltas returns the number of delta rounds run so far.
func (s *Scheduler) Deltas() uint64 { return s.deltas }

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *logger.Logger { return s.log }

// Current returns the process currently running or nil when called from
// outside of any process.
func (s *Scheduler) Current() *Process { return s.current }

// Processes returns the number of processes spawned.
func (s *Scheduler) Processes() int { return len(s.procs) }

// Stop halts the simulation. Processes still runnable in the current round
// are not run and time no longer advances.
func (s *Scheduler) Stop() {
	if !s.stopped {
		s.log.Debugf("@%v: simulation stopped", s.now)
	}
	s.stopped = true
}

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool { return s.stopped }

// ready queues p for the current evaluation round.
func (s *Scheduler) ready(p *Process, cause *Event, timedOut bool) {
	if p.queued {
		return
	}
	p.queued = true
	p.dynamic = false
	p.gen++
	p.cause = cause
	p.timedOut = timedOut
	s.runnable = append(s.runnable, p)
}

func (s *Scheduler) schedule(t *timer) *timer {
	t.seq = s.seq
	s.seq++
	heap.Push(&s.timers, t)
	return t
}

func (s *Scheduler) busy() bool {
	return len(s.runnable) > 0 || len(s.updates) > 0 || len(s.deltaEvents) > 0
}

// settle runs delta rounds until the current instant is quiescent.
func (s *Scheduler) settle() {
	for !s.stopped && s.busy() {
		s.evaluate()
		s.update()
		s.notifyDeltas()
		s.deltas++
	}
}

func (s *Scheduler) evaluate() {
	// immediate notifications may append to s.runnable while we iterate.
	for i := 0; i < len(s.runnable) && !s.stopped; i++ {
		p := s.runnable[i]
		s.runnable[i] = nil
		s.current = p
		p.run()
		s.current = nil
	}
	s.runnable = s.runnable[:0]
}

func (s *Scheduler) update() {
	ups := s.updates
	s.updates = nil
	for _, u := range ups {
		u.update()
	}
}

func (s *Scheduler) notifyDeltas() {
	evs := s.deltaEvents
	s.deltaEvents = nil
	for _, e := range evs {
		if e.pending != pendingDelta {
			continue
		}
		e.pending = pendingNone
		e.trigger()
	}
}

// next returns the time of the earliest live timer.
func (s *Scheduler) next() (Time, bool) {
	for len(s.timers) > 0 {
		t := s.timers[0]
		if !t.dead && (t.p == nil || t.gen == t.p.gen) {
			return t.at, true
		}
		heap.Pop(&s.timers)
	}
	return 0, false
}

// fire moves time to t and fires every timer due at t.
func (s *Scheduler) fire(at Time) {
	if at != s.now {
		s.log.Debugf("@%v: advance to %v", s.now, at)
	}
	s.now = at
	for len(s.timers) > 0 && s.timers[0].at == at {
		t := heap.Pop(&s.timers).(*timer)
		if t.dead {
			continue
		}
		if t.p != nil {
			// stale if the process was woken by something else since.
			if t.gen == t.p.gen {
				s.ready(t.p, nil, true)
			}
			continue
		}
		e := t.ev
		if e.timer == t {
			e.timer = nil
			e.pending = pendingNone
			e.trigger()
		}
	}
}

// Advance settles the current instant, then moves simulated time to the
// next scheduled wake-up and fires it. The processes woken run on the next
// call to Advance, RunUntil or Await.
//
// Advance returns false if the simulation is stopped or if nothing is left
// to schedule.
func (s *Scheduler) Advance() bool {
	s.settle()
	if s.stopped {
		return false
	}
	at, ok := s.next()
	if !ok {
		return false
	}
	s.fire(at)
	return true
}

// RunUntil runs the simulation through every instant up to and including t.
// If the simulation runs out of work earlier, time is parked at t.
func (s *Scheduler) RunUntil(t Time) {
	s.Await(func() bool { return false }, t)
}

// Run runs the simulation until it is stopped or runs out of work.
func (s *Scheduler) Run() {
	for s.Advance() {
	}
}

// Await runs the simulation until done returns true or the deadline is
// reached. done is checked at the end of every settled instant. Await
// returns true if done returned true; otherwise the next wake-up lies past
// the deadline (or there is none), time is parked at the deadline and Await
// returns false.
//
// Await is the building block of observers that wait for a condition with a
// timeout.
func (s *Scheduler) Await(done func() bool, deadline Time) bool {
	for {
		s.settle()
		if done() {
			return true
		}
		if s.stopped {
			return false
		}
		at, ok := s.next()
		if !ok || at > deadline {
			if deadline != Forever && deadline > s.now {
				s.log.Debugf("@%v: advance to %v", s.now, deadline)
				s.now = deadline
			}
			return false
		}
		s.fire(at)
	}
}

type timer struct {
	at   Time
	seq  uint64
	ev   *Event
	p    *Process
	gen  uint64
	dead bool
}

// timerQueue is a min-heap of timers ordered by time then by insertion
// order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timerQueue) Push(x interface{}) { *q = append(*q, x.(*timer)) }

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
