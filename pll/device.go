// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package pll models a PLL clock generator programmed through a memory-mapped
// register interface.
//
// The model has two processes. The register interface decodes bus writes on
// rising clock edges into the N, M and OD dividers and the enable flag; it
// has no notion of time. The lock sequence owns the lock status line: once
// enabled it waits for the configured lock delay, then asserts the line. A
// reset or a disable write received during that wait aborts the sequence
// and the line is never asserted for that attempt.
package pll

import (
	"github.com/db47h/desim"
	"github.com/pkg/errors"
)

// Ports are the signals a Device is connected to. Locked is driven by the
// device, all others are inputs.
type Ports struct {
	Clk    *desim.Bit
	Reset  *desim.Bit
	Addr   *desim.Signal[uint32]
	WData  *desim.Signal[uint32]
	WE     *desim.Bit
	Locked *desim.Bit
}

func (p *Ports) check() error {
	switch {
	case p.Clk == nil:
		return errors.New("clk not connected")
	case p.Reset == nil:
		return errors.New("reset not connected")
	case p.Addr == nil:
		return errors.New("bus address not connected")
	case p.WData == nil:
		return errors.New("bus data not connected")
	case p.WE == nil:
		return errors.New("write enable not connected")
	case p.Locked == nil:
		return errors.New("locked output not connected")
	}
	return nil
}

// A Device is a PLL instance mounted in a simulation.
type Device struct {
	name string
	regs Registers
	ri   *registerInterface
	ls   *lockSequence
}

// New creates a PLL named name, connects it to ports and spawns its processes
// in s.
func New(s *desim.Scheduler, name string, cfg Config, ports Ports) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, name)
	}
	if err := ports.check(); err != nil {
		return nil, errors.Wrap(err, name)
	}

	start := s.NewEvent(name + ".start")
	disable := s.NewEvent(name + ".disable")
	d := &Device{name: name, regs: ResetRegisters()}
	d.ri = &registerInterface{
		name:    name,
		s:       s,
		log:     s.Logger(),
		regs:    &d.regs,
		clk:     ports.Clk,
		reset:   ports.Reset,
		addr:    ports.Addr,
		wdata:   ports.WData,
		we:      ports.WE,
		start:   start,
		disable: disable,
	}
	d.ls = &lockSequence{
		name:    name,
		s:       s,
		log:     s.Logger(),
		cfg:     cfg,
		regs:    &d.regs,
		reset:   ports.Reset,
		status:  ports.Locked,
		start:   start,
		disable: disable,
		state:   Idle,
		diag:    Diagnostic{},
	}
	s.Spawn(name+".regs", d.ri.run, ports.Clk.Posedge(), ports.Reset.Changed())
	s.Spawn(name+".lock", d.ls.run, ports.Reset.Changed(), start, disable)
	s.Logger().Debugf("@%v: %s constructed", s.Now(), name)
	return d, nil
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Registers returns a copy of the configuration registers.
func (d *Device) Registers() Registers { return d.regs }

// State returns the state of the lock sequence.
func (d *Device) State() LockState { return d.ls.state }

// Diagnostic returns the output clock computed at the last lock.
func (d *Device) Diagnostic() Diagnostic { return d.ls.diag }

// Locks returns how many times the PLL has locked.
func (d *Device) Locks() uint64 { return d.ls.locks }
