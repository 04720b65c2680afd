package vcd_test

import (
	"bytes"
	"testing"

	"github.com/db47h/desim"
	"github.com/db47h/desim/vcd"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	s := desim.New()
	clk, err := desim.NewClock(s, "clk", 10)
	require.NoError(t, err)
	addr := desim.NewSignal(s, "addr", uint32(0))

	var buf bytes.Buffer
	w := vcd.New(&buf, "top")
	w.AddBit(clk.Bit)
	vcd.AddBus(w, addr, 4)
	require.NoError(t, w.Begin(s.Now()))

	s.RunUntil(7)
	addr.Write(0x0c)
	s.RunUntil(10)
	require.NoError(t, w.Close())

	exp := `$version desim $end
$timescale 1ns $end
$scope module top $end
$var wire 1 ! clk $end
$var wire 4 " addr [3:0] $end
$upscope $end
$enddefinitions $end
#0
$dumpvars
0!
b0 "
$end
1!
#5
0!
#7
b1100 "
#10
1!
`
	assert.Equal(t, exp, buf.String())
}

func TestWriter_lateAdd(t *testing.T) {
	s := desim.New()
	w := vcd.New(&bytes.Buffer{}, "top")
	require.NoError(t, w.Begin(0))
	assert.Panics(t, func() { w.AddBit(desim.NewBit(s, "b", false)) })
	assert.Error(t, w.Begin(0))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_error(t *testing.T) {
	s := desim.New()
	b := desim.NewBit(s, "b", false)
	w := vcd.New(failWriter{}, "top")
	w.AddBit(b)
	require.NoError(t, w.Begin(0)) // buffered
	err := w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, err, w.Close())
}
