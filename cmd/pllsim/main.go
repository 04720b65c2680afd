// Command pllsim runs the PLL model against the reference stimulus: reset,
// program the dividers, enable the PLL and check that the lock status is
// asserted before the watchdog expires.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/db47h/desim"
	"github.com/db47h/desim/logger"
	"github.com/db47h/desim/pll"
	"github.com/db47h/desim/pmu"
	"github.com/db47h/desim/vcd"
	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pllsim:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := pmu.DefaultConfig()
	pcfg := pll.DefaultConfig()

	fs := flag.NewFlagSet("pllsim", flag.ContinueOnError)
	period := fs.Uint64("period", uint64(cfg.ClockPeriod), "bus clock `period` (ns)")
	fs.IntVar(&cfg.ResetCycles, "reset-cycles", cfg.ResetCycles, "reset hold time in clock cycles")
	lockDelay := fs.Uint64("lock-delay", uint64(pcfg.LockDelay), "PLL lock `delay` (ns)")
	fs.Float64Var(&pcfg.RefFreqMHz, "ref", pcfg.RefFreqMHz, "reference clock `frequency` (MHz)")
	n := fs.Uint("n", uint(cfg.N), "N divider")
	m := fs.Uint("m", uint(cfg.M), "M multiplier")
	od := fs.Uint("od", uint(cfg.OD), "OD output divider")
	watchdog := fs.Uint64("watchdog", uint64(cfg.Watchdog), "lock watchdog `timeout` (ns)")
	end := fs.Uint64("end", uint64(cfg.EndTime), "simulation end `time` (ns)")
	vcdFile := fs.String("vcd", "", "write a waveform to `file`")
	level := fs.String("log", "info", "log `level` (error, warn, info, debug)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, d := range []struct {
		name string
		v    uint
	}{{"n", *n}, {"m", *m}, {"od", *od}} {
		if d.v > 0xff {
			return errors.Errorf("-%s: %d does not fit in 8 bits", d.name, d.v)
		}
	}
	cfg.ClockPeriod = desim.Time(*period)
	cfg.N, cfg.M, cfg.OD = uint8(*n), uint8(*m), uint8(*od)
	cfg.Watchdog = desim.Time(*watchdog)
	cfg.EndTime = desim.Time(*end)
	pcfg.LockDelay = desim.Time(*lockDelay)

	lvl, err := logger.ParseLevel(*level)
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, lvl, "")

	b, err := pmu.New(cfg, pcfg, desim.WithLogger(log))
	if err != nil {
		return err
	}

	var wave *vcd.Writer
	if *vcdFile != "" {
		f, err := os.Create(*vcdFile)
		if err != nil {
			return errors.Wrap(err, "waveform")
		}
		defer f.Close()
		wave = vcd.New(f, "pmu")
		wave.AddBit(b.Clk.Bit)
		wave.AddBit(b.Reset)
		wave.AddBit(b.WE)
		vcd.AddBus(wave, b.Addr, 32)
		vcd.AddBus(wave, b.WData, 32)
		wave.AddBit(b.Locked)
		if err = wave.Begin(b.Now()); err != nil {
			return err
		}
	}

	r, runErr := b.Run()
	log.Infof("Simulation finished at %v", r.End)
	if r.Locked {
		log.Infof("Lock asserted %v after enable: %v", r.LockedAt-r.Enabled, r.Diagnostic)
	}
	if wave != nil {
		if err := wave.Close(); err != nil {
			return err
		}
	}
	return runErr
}
