package pmu_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/desim"
	"github.com/db47h/desim/logger"
	"github.com/db47h/desim/pll"
	"github.com/db47h/desim/pmu"
	"github.com/db47h/desim/simtest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func newBench(t *testing.T) *pmu.Bench {
	t.Helper()
	b, err := pmu.New(pmu.DefaultConfig(), pll.DefaultConfig())
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return b
}

// resetBench brings the bench out of reset at t=50 like the reference
// stimulus.
func resetBench(t *testing.T, b *pmu.Bench) {
	t.Helper()
	b.Tick()
	b.AssertReset(5 * b.Config().ClockPeriod)
	require.Equal(t, desim.Time(50), b.Now())
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	b, err := pmu.New(pmu.DefaultConfig(), pll.DefaultConfig(),
		desim.WithLogger(logger.New(&out, logger.LevelInfo, "")))
	require.NoError(t, err)
	status := simtest.Record(b.Locked)

	r, err := b.Run()
	require.NoError(t, err)

	assert.Equal(t, desim.Time(90), r.Enabled)
	assert.True(t, r.Locked)
	assert.Equal(t, desim.Time(590), r.LockedAt)
	assert.Equal(t, desim.Time(850), r.End)
	assert.Equal(t, pll.Registers{N: 1, M: 32, OD: 1, Enabled: true}, r.Registers)
	assert.True(t, r.Diagnostic.Valid)
	assert.InDelta(t, 800.0, r.Diagnostic.FreqMHz, 1e-9)
	assert.InDelta(t, 1.25, r.Diagnostic.PeriodNS, 1e-9)
	assert.Equal(t, []desim.Time{590}, status.Rises())
	assert.Empty(t, status.Falls())
	assert.True(t, b.Scheduler().Stopped())

	log := out.String()
	for _, line := range []string{
		"@0 ns: PMU_TEST: Resetting the system...",
		"@90 ns: PLL enabled. Starting lock sequence.",
		"@590 ns: PLL LOCKED. Generating output clock with period 1.25 ns (800 MHz).",
		"@590 ns: PMU_TEST: SUCCESS! PLL lock signal asserted.",
	} {
		assert.Contains(t, log, line)
	}
}

func TestRun_watchdog(t *testing.T) {
	cfg := pll.DefaultConfig()
	cfg.LockDelay = 30 * desim.US
	b, err := pmu.New(pmu.DefaultConfig(), cfg)
	require.NoError(t, err)

	r, err := b.Run()
	require.Error(t, err)
	trace(t, err)
	assert.Equal(t, pmu.ErrNoLock, errors.Cause(err))
	assert.False(t, r.Locked)
	assert.Equal(t, r.Enabled+20*desim.US, r.End)
	assert.Equal(t, pll.Locking, b.PLL.State())
}

func TestNew_invalid(t *testing.T) {
	cfg := pmu.DefaultConfig()
	cfg.ClockPeriod = 5
	_, err := pmu.New(cfg, pll.DefaultConfig())
	assert.Error(t, err)

	pcfg := pll.DefaultConfig()
	pcfg.LockDelay = 0
	_, err = pmu.New(pmu.DefaultConfig(), pcfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "PLL instantiation failed: PLL:"), err.Error())
}

func TestAssertReset(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	b.Program(3, 4, 5)
	require.Equal(t, pll.Registers{N: 3, M: 4, OD: 5, Enabled: true}, b.PLL.Registers())

	b.AssertReset(1)
	assert.Equal(t, pll.ResetRegisters(), b.PLL.Registers())
	assert.Equal(t, pll.Idle, b.PLL.State())
	assert.False(t, b.Locked.Read())

	// registers stay cleared until the next write.
	b.Cycles(10)
	assert.Equal(t, pll.Registers{}, b.PLL.Registers())
}

func TestLock_timing(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	status := simtest.Record(b.Locked)

	at := b.Program(1, 32, 1)
	assert.Equal(t, desim.Time(90), at)
	assert.Equal(t, pll.Locking, b.PLL.State())

	// not a single unit early.
	ok, now := b.ObserveStatus(499)
	assert.False(t, ok)
	assert.Equal(t, at+499, now)

	ok, now = b.ObserveStatus(desim.US)
	assert.True(t, ok)
	assert.Equal(t, at+500, now)
	assert.Equal(t, pll.Locked, b.PLL.State())
	assert.Equal(t, uint64(1), b.PLL.Locks())
	assert.Equal(t, []desim.Time{at + 500}, status.Rises())
}

func TestLock_disable(t *testing.T) {
	for _, data := range []uint32{0, 2, 0xffffffff} {
		b := newBench(t)
		resetBench(t, b)
		status := simtest.Record(b.Locked)

		at := b.Program(1, 32, 1)
		b.Cycles(20)
		b.WriteRegister(pll.AddrCtrl, data)
		assert.False(t, b.PLL.Registers().Enabled)

		ok, _ := b.ObserveStatus(2 * desim.US)
		assert.False(t, ok)
		assert.Empty(t, status.Transitions(), "data=%d", data)
		assert.False(t, status.ValueAt(at+500))
		assert.Equal(t, pll.Idle, b.PLL.State())
	}
}

func TestLock_reset(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	status := simtest.Record(b.Locked)

	at := b.Program(1, 32, 1)
	b.Cycles(10)
	b.AssertReset(30)
	assert.False(t, b.Locked.Read())
	assert.Equal(t, pll.Idle, b.PLL.State())

	// no late assertion when the abandoned timer would have expired.
	b.Scheduler().RunUntil(at + 2000)
	assert.Empty(t, status.Transitions())
	assert.Equal(t, pll.ResetRegisters(), b.PLL.Registers())
}

func TestLock_resetWhileLocked(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	status := simtest.Record(b.Locked)

	b.Program(1, 32, 1)
	ok, _ := b.ObserveStatus(desim.US)
	require.True(t, ok)

	b.Tick()
	fall := b.Now()
	b.AssertReset(50)
	assert.Equal(t, []desim.Time{fall}, status.Falls())
	assert.Equal(t, pll.Idle, b.PLL.State())
}

func TestLock_disableWhileLocked(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	status := simtest.Record(b.Locked)

	b.Program(1, 32, 1)
	ok, lockedAt := b.ObserveStatus(desim.US)
	require.True(t, ok)

	off := b.WriteRegister(pll.AddrCtrl, 0)
	b.Cycles(100)
	assert.Equal(t, []simtest.Transition{{At: lockedAt, Value: true}, {At: off, Value: false}}, status.Transitions())
	assert.Equal(t, pll.Idle, b.PLL.State())
}

func TestLock_reenable(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	status := simtest.Record(b.Locked)

	b.Program(1, 32, 1)
	b.Cycles(30)
	b.WriteRegister(pll.AddrCtrl, 0)
	b.Cycles(5)
	at := b.WriteRegister(pll.AddrCtrl, pll.CtrlEnable)

	ok, now := b.ObserveStatus(desim.US)
	assert.True(t, ok)
	assert.Equal(t, at+500, now)
	assert.Equal(t, []desim.Time{at + 500}, status.Rises())
}

// A repeated enable while locking does not restart the delay.
func TestLock_enableWhileLocking(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)

	at := b.Program(1, 32, 1)
	b.Cycles(10)
	b.WriteRegister(pll.AddrCtrl, pll.CtrlEnable)

	ok, now := b.ObserveStatus(desim.US)
	assert.True(t, ok)
	assert.Equal(t, at+500, now)
}

// Enabling a locked PLL invalidates the lock and runs the sequence again.
func TestLock_enableWhileLocked(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)
	status := simtest.Record(b.Locked)

	b.Program(1, 32, 1)
	ok, first := b.ObserveStatus(desim.US)
	require.True(t, ok)

	at := b.WriteRegister(pll.AddrCtrl, pll.CtrlEnable)
	ok, second := b.ObserveStatus(desim.US)
	require.True(t, ok)
	assert.Equal(t, at+500, second)
	assert.Equal(t, []simtest.Transition{
		{At: first, Value: true},
		{At: at, Value: false},
		{At: second, Value: true},
	}, status.Transitions())
	assert.Equal(t, uint64(2), b.PLL.Locks())
}

func TestWrite_unmapped(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)

	at := b.Program(2, 40, 4)
	regs := b.PLL.Registers()
	for _, addr := range []uint32{0x01, 0x03, 0x0D, 0x10, 0x40, 0xffffffff} {
		b.WriteRegister(addr, 0)
	}
	assert.Equal(t, regs, b.PLL.Registers())
	assert.Equal(t, pll.Locking, b.PLL.State())

	ok, now := b.ObserveStatus(desim.US)
	assert.True(t, ok)
	assert.Equal(t, at+500, now)
	assert.InDelta(t, 125.0, b.PLL.Diagnostic().FreqMHz, 1e-9)
}

func TestWrite_truncates(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)

	b.WriteRegister(pll.AddrN, 0x1ff)
	b.WriteRegister(pll.AddrM, 0xabcd)
	b.WriteRegister(pll.AddrOD, 0x100)
	assert.Equal(t, pll.Registers{N: 0xff, M: 0xcd, OD: 0, Enabled: false}, b.PLL.Registers())
}

// Writes are ignored while reset is asserted.
func TestWrite_duringReset(t *testing.T) {
	b := newBench(t)
	resetBench(t, b)

	b.Reset.Write(true)
	b.WriteRegister(pll.AddrN, 9)
	b.WriteRegister(pll.AddrCtrl, pll.CtrlEnable)
	b.Reset.Write(false)
	b.Cycles(60)

	assert.Equal(t, pll.ResetRegisters(), b.PLL.Registers())
	assert.False(t, b.Locked.Read())
}

func TestLock_zeroDivider(t *testing.T) {
	td := []struct {
		name     string
		n, m, od uint8
	}{
		{"N=0", 0, 32, 1},
		{"OD=0", 1, 32, 0},
		{"M=0", 1, 0, 1},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			b := newBench(t)
			resetBench(t, b)
			at := b.Program(d.n, d.m, d.od)
			ok, now := b.ObserveStatus(desim.US)
			assert.True(t, ok)
			assert.Equal(t, at+500, now)
			assert.False(t, b.PLL.Diagnostic().Valid)
		})
	}
}
