// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package desim

import (
	"math"
	"strconv"
)

// Time is a point in, or a span of, simulated time expressed in time units.
// By convention one time unit is a nanosecond.
type Time uint64

// Time units.
const (
	NS Time = 1
	US      = 1000 * NS
	MS      = 1000 * US
	S       = 1000 * MS

	// Forever is a deadline that is never reached.
	Forever Time = math.MaxUint64
)

func (t Time) String() string {
	switch {
	case t == Forever:
		return "forever"
	case t == 0:
		return "0 ns"
	case t%S == 0:
		return strconv.FormatUint(uint64(t/S), 10) + " s"
	case t%MS == 0:
		return strconv.FormatUint(uint64(t/MS), 10) + " ms"
	case t%US == 0:
		return strconv.FormatUint(uint64(t/US), 10) + " us"
	}
	return strconv.FormatUint(uint64(t), 10) + " ns"
}

// add returns t+d, saturating at Forever.
func (t Time) add(d Time) Time {
	if d > Forever-t {
		return Forever
	}
	return t + d
}
