// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package pmu provides the test bench of the PLL model: the bus signals, the
// device instance, and a power management unit driver that programs the PLL
// through its register interface and watches its lock status.
//
// The bench drives the model from outside of any process: each operation
// writes the bus signals, then runs the scheduler until the condition it
// waits for is met.
package pmu

import (
	"github.com/db47h/desim"
	"github.com/db47h/desim/logger"
	"github.com/db47h/desim/pll"
	"github.com/pkg/errors"
)

// ErrNoLock is returned by Run when the lock status was not asserted before
// the watchdog expired.
var ErrNoLock = errors.New("PLL did not lock")

// Bench is a PLL wired to a bus and a clock.
type Bench struct {
	cfg Config
	s   *desim.Scheduler
	log *logger.Logger

	Clk    *desim.Clock
	Reset  *desim.Bit
	Addr   *desim.Signal[uint32]
	WData  *desim.Signal[uint32]
	WE     *desim.Bit
	Locked *desim.Bit
	PLL    *pll.Device
}

// New builds a bench with a new scheduler configured with options.
func New(cfg Config, pllCfg pll.Config, options ...desim.Option) (*Bench, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid bench configuration")
	}
	s := desim.New(options...)
	clk, err := desim.NewClock(s, "clk", cfg.ClockPeriod)
	if err != nil {
		return nil, err
	}
	b := &Bench{
		cfg:    cfg,
		s:      s,
		log:    s.Logger(),
		Clk:    clk,
		Reset:  desim.NewBit(s, "reset", false),
		Addr:   desim.NewSignal(s, "bus_addr", uint32(0)),
		WData:  desim.NewSignal(s, "bus_wdata", uint32(0)),
		WE:     desim.NewBit(s, "bus_we", false),
		Locked: desim.NewBit(s, "locked", false),
	}
	b.PLL, err = pll.New(s, "PLL", pllCfg, pll.Ports{
		Clk:    b.Clk.Bit,
		Reset:  b.Reset,
		Addr:   b.Addr,
		WData:  b.WData,
		WE:     b.WE,
		Locked: b.Locked,
	})
	if err != nil {
		return nil, errors.Wrap(err, "PLL instantiation failed")
	}
	return b, nil
}

// Scheduler returns the bench scheduler.
func (b *Bench) Scheduler() *desim.Scheduler { return b.s }

// Config returns the bench configuration.
func (b *Bench) Config() Config { return b.cfg }

// Now returns the current simulated time.
func (b *Bench) Now() desim.Time { return b.s.Now() }

// Tick runs the simulation up to the next rising edge of the clock. When Tick
// returns, every process woken by that edge has run.
func (b *Bench) Tick() {
	target := b.Clk.Cycles() + 1
	b.s.Await(func() bool { return b.Clk.Cycles() >= target }, desim.Forever)
}

// Cycles runs the simulation for n rising clock edges.
func (b *Bench) Cycles(n int) {
	for i := 0; i < n; i++ {
		b.Tick()
	}
}

// AssertReset holds reset for d time units. The release is committed before
// AssertReset returns.
func (b *Bench) AssertReset(d desim.Time) {
	b.Reset.Write(true)
	b.s.RunUntil(b.s.Now() + d)
	b.Reset.Write(false)
	b.s.RunUntil(b.s.Now())
}

// WriteRegister issues a one cycle write transaction. It drives the bus and
// write enable, runs to the next rising clock edge where the device samples
// the bus, then releases write enable. It returns the sampling time.
func (b *Bench) WriteRegister(addr, data uint32) desim.Time {
	b.log.Infof("@%v:   PMU_DRIVER: Wrote 0x%x to address 0x%x", b.s.Now(), data, addr)
	b.Addr.Write(addr)
	b.WData.Write(data)
	b.WE.Write(true)
	b.Tick()
	at := b.s.Now()
	b.WE.Write(false)
	return at
}

// ObserveStatus waits for a rising edge of the lock status, at most timeout
// time units. It returns the value of the status line and the time at which
// the wait ended.
func (b *Bench) ObserveStatus(timeout desim.Time) (bool, desim.Time) {
	pos := b.Locked.Posedge()
	seen := pos.Fired()
	deadline := desim.Forever
	if timeout < desim.Forever-b.s.Now() {
		deadline = b.s.Now() + timeout
	}
	b.s.Await(func() bool { return pos.Fired() > seen }, deadline)
	return b.Locked.Read(), b.s.Now()
}

// Program writes the dividers, then enables the PLL. It returns the time at
// which the device sampled the enabling write.
func (b *Bench) Program(n, m, od uint8) desim.Time {
	b.WriteRegister(pll.AddrN, uint32(n))
	b.WriteRegister(pll.AddrM, uint32(m))
	b.WriteRegister(pll.AddrOD, uint32(od))
	return b.WriteRegister(pll.AddrCtrl, pll.CtrlEnable)
}
