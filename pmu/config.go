// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pmu

import (
	"github.com/db47h/desim"
	"github.com/pkg/errors"
)

// Config holds the bench parameters and the stimulus.
type Config struct {
	// ClockPeriod is the bus clock period.
	ClockPeriod desim.Time
	// ResetCycles is how many clock cycles reset is held.
	ResetCycles int
	// Divider values programmed by Run.
	N, M, OD uint8
	// Watchdog bounds the wait for the lock status.
	Watchdog desim.Time
	// EndTime is the time at which Run stops the simulation, if the lock
	// happened earlier.
	EndTime desim.Time
}

// DefaultConfig returns the reference stimulus: a 10 ns clock, reset held
// for 5 cycles and the PLL configured for 800 MHz from a 25 MHz reference
// (N=1, M=32, OD=1), with a 20 us watchdog.
func DefaultConfig() Config {
	return Config{
		ClockPeriod: 10 * desim.NS,
		ResetCycles: 5,
		N:           1,
		M:           32,
		OD:          1,
		Watchdog:    20 * desim.US,
		EndTime:     850 * desim.NS,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ClockPeriod < 2 || c.ClockPeriod%2 != 0 {
		return errors.Errorf("clock period must be an even number >= 2, got %d", c.ClockPeriod)
	}
	if c.ResetCycles < 1 {
		return errors.Errorf("reset must be held for at least one cycle, got %d", c.ResetCycles)
	}
	if c.Watchdog == 0 {
		return errors.New("watchdog timeout must be greater than 0")
	}
	return nil
}
