// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd writes the value changes of simulation signals to a Value
// Change Dump file, viewable with any waveform viewer.
//
// Signals are registered before the simulation runs. Begin writes the header
// and the initial values, then every committed change is appended:
//
//	w := vcd.New(f, "top")
//	w.AddBit(clk)
//	vcd.AddBus(w, addr, 32)
//	if err := w.Begin(s.Now()); err != nil { ... }
//	s.Run()
//	err := w.Close()
package vcd

import (
	"bufio"
	"io"
	"strconv"

	"github.com/db47h/desim"
	"github.com/pkg/errors"
)

type variable struct {
	id    string
	name  string
	width int
	value func() string
}

// Writer is a VCD writer. It records the first write error and ignores
// subsequent output; Close returns that error.
type Writer struct {
	w       *bufio.Writer
	scope   string
	vars    []*variable
	started bool
	closed  bool
	stamped bool
	last    desim.Time
	err     error
}

// New returns a writer dumping to w. All variables are declared in a module
// named scope.
func New(w io.Writer, scope string) *Writer {
	return &Writer{w: bufio.NewWriter(w), scope: scope}
}

// identifier returns the short identifier code of the n-th variable, using
// the printable ASCII characters '!' to '~'.
func identifier(n int) string {
	const base = '~' - '!' + 1
	var b []byte
	for {
		b = append(b, byte('!'+n%base))
		n /= base
		if n == 0 {
			break
		}
		n--
	}
	return string(b)
}

func (w *Writer) add(name string, width int, value func() string) *variable {
	if w.started {
		panic("vcd: variable " + name + " added after Begin")
	}
	v := &variable{id: identifier(len(w.vars)), name: name, width: width, value: value}
	w.vars = append(w.vars, v)
	return v
}

// AddBit registers a boolean signal.
func (w *Writer) AddBit(b *desim.Bit) {
	v := w.add(b.Name(), 1, func() string { return bitValue(b.Read()) })
	b.Watch(func(t desim.Time, val bool) {
		w.change(t, bitValue(val)+v.id)
	})
}

// AddBus registers an unsigned integer signal of the given bit width.
func AddBus[T ~uint8 | ~uint16 | ~uint32 | ~uint64](w *Writer, sig *desim.Signal[T], width int) {
	v := w.add(sig.Name(), width, func() string { return busValue(uint64(sig.Read())) })
	sig.Watch(func(t desim.Time, val T) {
		w.change(t, busValue(uint64(val))+" "+v.id)
	})
}

func bitValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func busValue(v uint64) string {
	return "b" + strconv.FormatUint(v, 2)
}

func (w *Writer) printf(ss ...string) {
	if w.err != nil {
		return
	}
	for _, s := range ss {
		if _, err := w.w.WriteString(s); err != nil {
			w.err = errors.Wrap(err, "vcd write failed")
			return
		}
	}
}

// Begin writes the header and the current value of every variable, stamped
// at time now.
func (w *Writer) Begin(now desim.Time) error {
	if w.started {
		return errors.New("vcd: Begin called twice")
	}
	w.started = true
	w.printf("$version desim $end\n", "$timescale 1ns $end\n")
	w.printf("$scope module ", w.scope, " $end\n")
	for _, v := range w.vars {
		name := v.name
		if v.width > 1 {
			name += " [" + strconv.Itoa(v.width-1) + ":0]"
		}
		w.printf("$var wire ", strconv.Itoa(v.width), " ", v.id, " ", name, " $end\n")
	}
	w.printf("$upscope $end\n", "$enddefinitions $end\n")
	w.stamp(now)
	w.printf("$dumpvars\n")
	for _, v := range w.vars {
		if v.width > 1 {
			w.printf(v.value(), " ", v.id, "\n")
		} else {
			w.printf(v.value(), v.id, "\n")
		}
	}
	w.printf("$end\n")
	return w.err
}

func (w *Writer) stamp(t desim.Time) {
	if w.stamped && t == w.last {
		return
	}
	w.stamped = true
	w.last = t
	w.printf("#", strconv.FormatUint(uint64(t), 10), "\n")
}

func (w *Writer) change(t desim.Time, line string) {
	if !w.started || w.closed {
		return
	}
	w.stamp(t)
	w.printf(line, "\n")
}

// Close flushes the output. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if err := w.w.Flush(); err != nil && w.err == nil {
		w.err = errors.Wrap(err, "vcd flush failed")
	}
	return w.err
}
