// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pmu

import (
	"github.com/db47h/desim"
	"github.com/db47h/desim/pll"
	"github.com/pkg/errors"
)

// Report is the outcome of Run.
type Report struct {
	Enabled    desim.Time // time the enabling CTRL write was sampled
	Locked     bool
	LockedAt   desim.Time
	Registers  pll.Registers
	Diagnostic pll.Diagnostic
	End        desim.Time
}

// Run plays the reference stimulus: reset the system, program the dividers
// from the bench configuration, enable the PLL and wait for the lock status
// under watchdog. It then runs until the configured end time and stops the
// simulation.
//
// Run returns ErrNoLock (possibly wrapped) if the watchdog expired.
func (b *Bench) Run() (Report, error) {
	var r Report
	b.Tick()

	b.log.Infof("@%v: PMU_TEST: Resetting the system...", b.s.Now())
	b.AssertReset(desim.Time(b.cfg.ResetCycles) * b.cfg.ClockPeriod)

	b.log.Infof("@%v: PMU_TEST: Programming PLL registers N=%d, M=%d, OD=%d...", b.s.Now(), b.cfg.N, b.cfg.M, b.cfg.OD)
	r.Enabled = b.Program(b.cfg.N, b.cfg.M, b.cfg.OD)

	b.log.Infof("@%v: PMU_TEST: Waiting for PLL lock signal...", b.s.Now())
	r.Locked, r.LockedAt = b.ObserveStatus(b.cfg.Watchdog)
	r.Registers = b.PLL.Registers()
	r.Diagnostic = b.PLL.Diagnostic()

	var err error
	if r.Locked {
		b.log.Infof("@%v: PMU_TEST: SUCCESS! PLL lock signal asserted.", b.s.Now())
	} else {
		b.log.Errorf("@%v: PMU_TEST: FAILED! PLL did not lock.", b.s.Now())
		err = errors.Wrapf(ErrNoLock, "no lock within %v of enabling at %v", b.cfg.Watchdog, r.Enabled)
	}
	b.log.Infof("@%v: PMU_TEST: Test finished.", b.s.Now())

	if b.cfg.EndTime > b.s.Now() {
		b.s.RunUntil(b.cfg.EndTime)
	}
	b.s.Stop()
	r.End = b.s.Now()
	return r, err
}
