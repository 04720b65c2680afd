// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pll

import (
	"strconv"

	"github.com/db47h/desim"
	"github.com/db47h/desim/logger"
)

// LockState is the state of the lock sequence.
type LockState int

// Lock sequence states.
const (
	Idle LockState = iota
	Locking
	Locked
)

var stateNames = [...]string{"Idle", "Locking", "Locked"}

func (s LockState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "LockState(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// lockSequence owns the lock status line. It is the only writer of that
// signal: disable requests from the register interface come in through an
// event.
type lockSequence struct {
	name string
	s    *desim.Scheduler
	log  *logger.Logger
	cfg  Config

	regs    *Registers
	reset   *desim.Bit
	status  *desim.Bit
	start   *desim.Event
	disable *desim.Event

	state    LockState
	deadline desim.Time
	diag     Diagnostic
	locks    uint64
}

func (l *lockSequence) run(p *desim.Process) {
	if l.reset.Read() {
		if l.state != Idle {
			l.log.Infof("@%v: %s: reset, lock sequence aborted in state %v", l.s.Now(), l.name, l.state)
		}
		l.idle()
		return
	}

	switch l.state {
	case Idle:
		switch p.Cause() {
		case l.disable:
			l.idle()
		case l.start, l.reset.Changed():
			if l.regs.Enabled {
				l.begin(p)
			}
		}
	case Locking:
		switch {
		case p.TimedOut():
			if !l.regs.Enabled {
				l.log.Infof("@%v: %s: lock time elapsed but PLL is disabled", l.s.Now(), l.name)
				l.idle()
				return
			}
			l.lock()
		case p.Cause() == l.disable:
			l.log.Infof("@%v: %s: disabled while locking", l.s.Now(), l.name)
			l.idle()
		default:
			// reset released while waiting: keep the original deadline.
			l.wait(p, l.deadline-l.s.Now())
		}
	case Locked:
		switch p.Cause() {
		case l.disable:
			l.log.Infof("@%v: %s: disabled, lock lost", l.s.Now(), l.name)
			l.idle()
		case l.start:
			if l.regs.Enabled {
				l.begin(p)
			}
		}
	}
}

func (l *lockSequence) idle() {
	l.status.Write(false)
	l.state = Idle
}

func (l *lockSequence) begin(p *desim.Process) {
	l.status.Write(false)
	l.state = Locking
	l.deadline = l.s.Now() + l.cfg.LockDelay
	l.log.Infof("@%v: %s enabled. Starting lock sequence.", l.s.Now(), l.name)
	l.log.Infof("@%v: %s is in LOCKING state. Waiting for %v.", l.s.Now(), l.name, l.cfg.LockDelay)
	l.wait(p, l.cfg.LockDelay)
}

func (l *lockSequence) wait(p *desim.Process, d desim.Time) {
	p.WaitFor(d, l.reset.Changed(), l.disable)
}

func (l *lockSequence) lock() {
	l.status.Write(true)
	l.state = Locked
	l.locks++
	l.diag = computeDiagnostic(l.cfg.RefFreqMHz, *l.regs)
	l.log.Infof("@%v: %s lock time elapsed.", l.s.Now(), l.name)
	if !l.diag.Valid {
		l.log.Warnf("@%v: %s LOCKED. No output clock: invalid dividers (%v).", l.s.Now(), l.name, *l.regs)
		return
	}
	l.log.Infof("@%v: %s LOCKED. Generating output clock with period %g ns (%g MHz).", l.s.Now(), l.name, l.diag.PeriodNS, l.diag.FreqMHz)
}
