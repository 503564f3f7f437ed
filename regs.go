package spimem

import (
	"fmt"
	"log/slog"
)

// Reg is a 32-bit register slot of the SPI controller. The constants are in
// hardware order; the byte offset of a register is its index times four.
//
// [ADSP-SC598-HRM|SPI Register List]
type Reg uint8

const (
	RegRevID     Reg = iota // Revision ID
	RegControl              // Control
	RegRxControl            // Receive Control
	RegTxControl            // Transmit Control
	RegClock                // Clock Rate
	RegDelay                // Delay
	RegSSEL                 // Slave Select
	RegRWC                  // Received Word Count
	RegRWCR                 // Received Word Count Reload
	RegTWC                  // Transmitted Word Count
	RegTWCR                 // Transmitted Word Count Reload
	regReserved0
	RegEMask   // Interrupt Mask
	RegEMaskCl // Interrupt Mask Clear
	RegEMaskSt // Interrupt Mask Set
	regReserved1
	RegStatus // Status
	RegELat   // Masked Interrupt Condition
	RegELatCl // Masked Interrupt Clear
	regReserved2
	RegRFIFO // Receive FIFO Data
	regReserved3
	RegTFIFO // Transmit FIFO Data
	regReserved4
	RegMMRDH // Memory Mapped Read Header
	RegMMTOP // SPI Memory Top Address

	numRegs
)

// RegisterBlockSize is the size in bytes of the register block.
const RegisterBlockSize = uint32(numRegs) * 4

var regNames = [numRegs]string{
	RegRevID:     "revid",
	RegControl:   "control",
	RegRxControl: "rx_control",
	RegTxControl: "tx_control",
	RegClock:     "clock",
	RegDelay:     "delay",
	RegSSEL:      "ssel",
	RegRWC:       "rwc",
	RegRWCR:      "rwcr",
	RegTWC:       "twc",
	RegTWCR:      "twcr",
	regReserved0: "reserved0",
	RegEMask:     "emask",
	RegEMaskCl:   "emaskcl",
	RegEMaskSt:   "emaskst",
	regReserved1: "reserved1",
	RegStatus:    "status",
	RegELat:      "elat",
	RegELatCl:    "elatcl",
	regReserved2: "reserved2",
	RegRFIFO:     "rfifo",
	regReserved3: "reserved3",
	RegTFIFO:     "tfifo",
	regReserved4: "reserved4",
	RegMMRDH:     "mmrdh",
	RegMMTOP:     "mmtop",
}

// RegisterBlock mirrors the controller layout in memory. Field order must
// match the hardware manual; reordering shifts every register after it.
type RegisterBlock struct {
	RevID     uint32
	Control   uint32
	RxControl uint32
	TxControl uint32
	Clock     uint32
	Delay     uint32
	SSEL      uint32
	RWC       uint32
	RWCR      uint32
	TWC       uint32
	TWCR      uint32
	_         uint32
	EMask     uint32
	EMaskCl   uint32
	EMaskSt   uint32
	_         uint32
	Status    uint32
	ELat      uint32
	ELatCl    uint32
	_         uint32
	RFIFO     uint32
	_         uint32
	TFIFO     uint32
	_         uint32
	MMRDH     uint32
	MMTOP     uint32
}

func (r Reg) Offset() uint32 { return uint32(r) * 4 }

func (r Reg) Valid() bool { return r < numRegs }

func (r Reg) Reserved() bool {
	switch r {
	case regReserved0, regReserved1, regReserved2, regReserved3, regReserved4:
		return true
	}
	return false
}

func (r Reg) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Reg(%d)", uint8(r))
	}
	return regNames[r]
}

// Regs returns every non-reserved register in hardware order.
func Regs() []Reg {
	regs := make([]Reg, 0, numRegs)
	for r := Reg(0); r < numRegs; r++ {
		if !r.Reserved() {
			regs = append(regs, r)
		}
	}
	return regs
}

// ParseReg looks up a register by its manual name, e.g. "mmrdh".
// Reserved slots cannot be named.
func ParseReg(name string) (Reg, error) {
	for r, n := range regNames {
		if n == name && !Reg(r).Reserved() {
			return Reg(r), nil
		}
	}
	return 0, fmt.Errorf("unknown SPI register %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler so a Reg can be named in
// configuration files.
func (r *Reg) UnmarshalText(text []byte) error {
	reg, err := ParseReg(string(text))
	if err != nil {
		return err
	}
	*r = reg
	return nil
}

func (r Reg) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid SPI register %d", uint8(r))
	}
	return []byte(regNames[r]), nil
}

// Slave Select register bits for hardware chip select line x.
func sselEnable(x int) uint32 { return 1 << x }        // Slave Select enable
func sselValue(x int) uint32  { return (1 << 8) << x } // Slave Select output value

// Controller is a typed handle over the register block of one SPI
// controller. All access goes through Read and Write so the register order is
// fixed by Reg rather than by pointer arithmetic at call sites.
type Controller struct {
	base uint64
	w    Window
	log  *slog.Logger
}

// NewController returns a handle for the controller at physical address base
// whose registers are reachable through w. log may be nil.
func NewController(base uint64, w Window, log *slog.Logger) *Controller {
	return &Controller{base: base, w: w, log: log}
}

// Addr returns the physical address of r.
func (c *Controller) Addr(r Reg) uint64 { return c.base + uint64(r.Offset()) }

func (c *Controller) Read(r Reg) uint32 { return c.w.Read32(r.Offset()) }

func (c *Controller) Write(r Reg, v uint32) { c.w.Write32(r.Offset(), v) }

// Snapshot reads every non-reserved register except RFIFO, where a read
// pops a received word.
func (c *Controller) Snapshot() map[Reg]uint32 {
	regs := Regs()
	out := make(map[Reg]uint32, len(regs))
	for _, r := range regs {
		if r == RegRFIFO {
			continue
		}
		out[r] = c.Read(r)
	}
	return out
}
