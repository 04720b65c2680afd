// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package desim

import "github.com/pkg/errors"

// A Clock is a Bit driven by its own process. It rises at the time it is
// created, then toggles every half period.
type Clock struct {
	*Bit
	period Time
	cycles uint64
}

// NewClock returns a new clock with the given period. The period must be an
// even number of time units.
func NewClock(s *Scheduler, name string, period Time) (*Clock, error) {
	if period < 2 || period%2 != 0 {
		return nil, errors.Errorf("clock %s: period must be an even number of time units >= 2, got %d", name, period)
	}
	c := &Clock{Bit: NewBit(s, name, false), period: period}
	s.Spawn(name, c.toggle)
	return c, nil
}

func (c *Clock) toggle(p *Process) {
	if !c.Read() {
		c.cycles++
	}
	c.Toggle()
	p.WaitFor(c.period / 2)
}

// Period returns the clock period.
func (c *Clock) Period() Time { return c.period }

// Cycles returns the number of rising edges driven so far, including one
// still pending commit.
func (c *Clock) Cycles() uint64 { return c.cycles }
