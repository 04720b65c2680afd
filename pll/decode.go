// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pll

import (
	"github.com/db47h/desim"
	"github.com/db47h/desim/logger"
)

// registerInterface decodes bus writes into the configuration registers.
// It wakes up on rising clock edges and reset transitions and never waits on
// time.
type registerInterface struct {
	name string
	s    *desim.Scheduler
	log  *logger.Logger

	regs  *Registers
	clk   *desim.Bit
	reset *desim.Bit
	addr  *desim.Signal[uint32]
	wdata *desim.Signal[uint32]
	we    *desim.Bit

	// lock sequence requests
	start   *desim.Event
	disable *desim.Event
}

func (ri *registerInterface) run(p *desim.Process) {
	if ri.reset.Read() {
		*ri.regs = ResetRegisters()
		ri.log.Debugf("@%v: %s: registers cleared by reset", ri.s.Now(), ri.name)
		return
	}
	// bus writes are sampled on the rising edge only.
	if p.Cause() != ri.clk.Posedge() || !ri.we.Read() {
		return
	}
	ri.write(ri.addr.Read(), ri.wdata.Read())
}

func (ri *registerInterface) write(addr, data uint32) {
	switch addr {
	case AddrN:
		ri.regs.N = uint8(data)
	case AddrM:
		ri.regs.M = uint8(data)
	case AddrOD:
		ri.regs.OD = uint8(data)
	case AddrCtrl:
		if data == CtrlEnable {
			ri.regs.Enabled = true
			ri.start.NotifyAfter(0)
		} else {
			ri.regs.Enabled = false
			ri.disable.NotifyAfter(0)
		}
	default:
		ri.log.Debugf("@%v: %s: ignored write to unmapped address 0x%02x", ri.s.Now(), ri.name, addr)
		return
	}
	n, _ := RegisterName(addr)
	ri.log.Infof("@%v: %s received write to %s (REG[%d]) with data 0x%x", ri.s.Now(), ri.name, n, addr/4, data)
}
