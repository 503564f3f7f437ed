package spimem

import (
	"fmt"

	"periph.io/x/host/v3/pmem"
)

// Window gives ordered 32-bit access to a memory-mapped register block.
// Offsets are in bytes from the start of the block.
type Window interface {
	Read32(off uint32) uint32
	Write32(off uint32, v uint32)
}

// MapWindow is a Window onto physical memory, mapped through /dev/mem.
type MapWindow struct {
	view *pmem.View
	regs []uint32
}

// MapRegisters maps the register block at physical address base. The caller
// must Close the window. Requires root.
func MapRegisters(base uint64) (*MapWindow, error) {
	v, err := pmem.Map(base, int(RegisterBlockSize))
	if err != nil {
		return nil, fmt.Errorf("map registers at %#x: %w", base, err)
	}
	return &MapWindow{view: v, regs: v.Uint32()}, nil
}

func (m *MapWindow) Read32(off uint32) uint32 { return m.regs[off/4] }

func (m *MapWindow) Write32(off uint32, v uint32) { m.regs[off/4] = v }

func (m *MapWindow) Close() error { return m.view.Close() }

// Access is one register access recorded by a MemWindow.
type Access struct {
	Write bool
	Off   uint32
	Value uint32
}

// MemWindow is a Window backed by ordinary memory. It records every access
// and is used for dry runs.
type MemWindow struct {
	Words [numRegs]uint32
	Log   []Access
}

func (m *MemWindow) Read32(off uint32) uint32 {
	v := m.Words[off/4]
	m.Log = append(m.Log, Access{Off: off, Value: v})
	return v
}

func (m *MemWindow) Write32(off uint32, v uint32) {
	m.Words[off/4] = v
	m.Log = append(m.Log, Access{Write: true, Off: off, Value: v})
}

// Writes returns the recorded writes in order.
func (m *MemWindow) Writes() []Access {
	var out []Access
	for _, a := range m.Log {
		if a.Write {
			out = append(out, a)
		}
	}
	return out
}
