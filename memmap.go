package spimem

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// RegWrite is one step of a register program.
type RegWrite struct {
	Reg   Reg    `yaml:"reg"`
	Value uint32 `yaml:"value"`
}

// Program is an ordered list of register writes.
type Program []RegWrite

// QuadMemoryMapProgram arms memory-mapped quad reads on the SC598 SOM, with
// 0x6B (quad output fast read) as the MMRDH read opcode.
var QuadMemoryMapProgram = Program{
	{RegControl, 0x00000000},
	{RegClock, 0x00000006},
	{RegRxControl, 0x00000005}, // Receive Control Register
	{RegTxControl, 0x00000005}, // Transmit Control Register
	{RegDelay, 0x00000301},
	{RegSSEL, 0x0000FE02},
	{RegMMRDH, 0x0500136B}, // Memory Mapped Read Header
	{RegMMTOP, 0x7FFFFFFF},
	{RegControl, 0x80240073},
}

// Validate checks that p clears control first and re-arms it last, so the
// controller never runs the new mode with stale configuration.
func (p Program) Validate() error {
	if len(p) < 2 {
		return errors.New("program needs at least a control clear and a control write")
	}
	if first := p[0]; first.Reg != RegControl || first.Value != 0 {
		return fmt.Errorf("program must start by clearing control, got %s=%s", first.Reg, hex32(first.Value))
	}
	if last := p[len(p)-1]; last.Reg != RegControl {
		return fmt.Errorf("program must end with a control write, got %s", last.Reg)
	}
	for i, w := range p {
		if !w.Reg.Valid() || w.Reg.Reserved() {
			return fmt.Errorf("step %d: register %s is not writable", i, w.Reg)
		}
	}
	return nil
}

// EnableQuadMemoryMap writes p to the controller in order. Every write is
// logged with the register's physical address. There is no readback; see
// VerifyProgram.
func (c *Controller) EnableQuadMemoryMap(p Program) {
	for _, w := range p {
		c.info("write register",
			slog.String("reg", w.Reg.String()),
			addrAttr("addr", c.Addr(w.Reg)),
			slog.String("value", hex32(w.Value)),
		)
		c.Write(w.Reg, w.Value)
	}
}

// ReadbackError lists registers whose value differs from the last value
// written by a program.
type ReadbackError struct {
	Mismatches []Mismatch
}

type Mismatch struct {
	Reg       Reg
	Want, Got uint32
}

func (e *ReadbackError) Error() string {
	s := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		s[i] = fmt.Sprintf("%s want %s got %s", m.Reg, hex32(m.Want), hex32(m.Got))
	}
	return "register readback mismatch: " + strings.Join(s, ", ")
}

// VerifyProgram reads back every register p writes and compares it with the
// last value p wrote there. Control is skipped: once armed it reports
// hardware state bits that differ from the written value.
func (c *Controller) VerifyProgram(p Program) error {
	want := make(map[Reg]uint32)
	var order []Reg
	for _, w := range p {
		if w.Reg == RegControl {
			continue
		}
		if _, ok := want[w.Reg]; !ok {
			order = append(order, w.Reg)
		}
		want[w.Reg] = w.Value
	}

	var mm []Mismatch
	for _, r := range order {
		got := c.Read(r)
		c.debug("readback", slog.String("reg", r.String()), slog.String("value", hex32(got)))
		if got != want[r] {
			mm = append(mm, Mismatch{Reg: r, Want: want[r], Got: got})
		}
	}
	if len(mm) > 0 {
		return &ReadbackError{Mismatches: mm}
	}
	return nil
}

// ChipSelectEnable enables hardware slave select line cs and drives its value
// bit, leaving the other lines untouched. Read-modify-write; not atomic.
func (c *Controller) ChipSelectEnable(cs int) uint32 {
	ssel := c.Read(RegSSEL)
	ssel |= sselEnable(cs)
	ssel |= sselValue(cs)
	c.info("chip select enable",
		slog.Int("cs", cs),
		addrAttr("addr", c.Addr(RegSSEL)),
		slog.String("value", hex32(ssel)),
	)
	c.Write(RegSSEL, ssel)
	return ssel
}
