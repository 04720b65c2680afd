// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pll

import "fmt"

// Diagnostic is the output clock computed when the PLL locks.
//
//	FreqMHz = RefFreqMHz * M / (N * OD)
//	PeriodNS = 1000 / FreqMHz
//
// A zero divider or multiplier leaves the output clock undefined. Valid is
// false in that case and the other fields are zero.
type Diagnostic struct {
	Valid    bool
	FreqMHz  float64
	PeriodNS float64
}

func computeDiagnostic(refMHz float64, r Registers) Diagnostic {
	if r.N == 0 || r.OD == 0 || r.M == 0 {
		return Diagnostic{Valid: false, FreqMHz: 0, PeriodNS: 0}
	}
	f := refMHz * float64(r.M) / (float64(r.N) * float64(r.OD))
	return Diagnostic{
		Valid:    true,
		FreqMHz:  f,
		PeriodNS: 1000 / f,
	}
}

func (d Diagnostic) String() string {
	if !d.Valid {
		return "no output clock"
	}
	return fmt.Sprintf("%g MHz, period %g ns", d.FreqMHz, d.PeriodNS)
}
