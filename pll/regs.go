// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pll

import "fmt"

// Register map. The bus is byte addressed with 32 bits data.
const (
	AddrN    uint32 = 0x00 // input divider, 8 bits
	AddrM    uint32 = 0x04 // feedback divider, 8 bits
	AddrOD   uint32 = 0x08 // output divider, 8 bits
	AddrCtrl uint32 = 0x0C // control

	// CtrlEnable written to AddrCtrl enables the PLL and starts the lock
	// sequence. Any other value disables it.
	CtrlEnable uint32 = 1
)

// Registers is the configuration state of the PLL.
type Registers struct {
	N       uint8
	M       uint8
	OD      uint8
	Enabled bool
}

// ResetRegisters returns the register values after reset.
func ResetRegisters() Registers {
	return Registers{N: 0, M: 0, OD: 0, Enabled: false}
}

func (r Registers) String() string {
	return fmt.Sprintf("N=%d M=%d OD=%d enabled=%v", r.N, r.M, r.OD, r.Enabled)
}

// RegisterName returns the name of the register at addr and whether addr is
// mapped.
func RegisterName(addr uint32) (string, bool) {
	switch addr {
	case AddrN:
		return "N", true
	case AddrM:
		return "M", true
	case AddrOD:
		return "OD", true
	case AddrCtrl:
		return "CTRL", true
	}
	return "", false
}
