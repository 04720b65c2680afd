// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pll

import (
	"github.com/db47h/desim"
	"github.com/pkg/errors"
)

// Config holds the timing parameters of the PLL model.
type Config struct {
	// LockDelay is the time between the enabling write to CTRL and the
	// assertion of the lock status.
	LockDelay desim.Time
	// RefFreqMHz is the reference clock frequency. It is only used to
	// compute the output frequency diagnostic.
	RefFreqMHz float64
}

// DefaultConfig returns the default configuration: a 500 ns lock delay and a
// 25 MHz reference clock.
func DefaultConfig() Config {
	return Config{
		LockDelay:  500 * desim.NS,
		RefFreqMHz: 25,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.LockDelay == 0 {
		return errors.New("lock delay must be greater than 0")
	}
	if c.RefFreqMHz <= 0 {
		return errors.Errorf("invalid reference frequency %g MHz", c.RefFreqMHz)
	}
	return nil
}
