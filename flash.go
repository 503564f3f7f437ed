package spimem

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/spi"
)

// Flash probes the serial flash behind the controller before it is switched
// to memory-mapped mode.
type Flash struct {
	conn spi.Conn
	buf  [4]byte // command byte followed by up to three response bytes
	id   [3]byte // JEDEC ID of the flash chip
	part *flashPart
}

func NewFlash(conn spi.Conn) *Flash {
	return &Flash{conn: conn}
}

// Flash commands:
//   - [IS25LP512|Table 8.1 Instruction Set]
//   - [W25Q128|8.1.2 Instruction Set Table 1]
const (
	flashCmdWriteStatusRegister = 0x01
	flashCmdReadStatusRegister  = 0x05
	flashCmdReadID              = 0x9F
)

// tx sends cmd in a single full-duplex transfer over the whole buffer and
// leaves the response in f.buf. The driver frames the transfer with chip
// select.
func (f *Flash) tx(cmd byte) error {
	f.buf = [4]byte{cmd}
	return f.conn.Tx(f.buf[:], f.buf[:])
}

// ReadID returns the JEDEC ID of the flash chip. It returns a non-empty name
// for known IDs. The extended device string is ignored.
func (f *Flash) ReadID() (id [3]byte, name string, err error) {
	if err = f.tx(flashCmdReadID); err != nil {
		return
	}

	f.id = [3]byte(f.buf[1:])
	f.part = nil
	if part, ok := knownFlash[f.id]; ok {
		f.part = &part
		name = part.name
	}
	return f.id, name, nil
}

// Capacity returns the size in bytes of the flash identified by the last
// ReadID, or 0 when it cannot be told.
func (f *Flash) Capacity() int64 {
	if f.part != nil {
		return f.part.size
	}
	return capacityFromID(f.id)
}

func (f *Flash) ReadStatusRegister() (StatusRegister, error) {
	if err := f.tx(flashCmdReadStatusRegister); err != nil {
		return 0, err
	}
	return StatusRegister(f.buf[1]), nil
}

// StatusRegister represents the status register of the flash chip.
//
//	Bits| [IS25LP512|Table 6.1]                | [W25Q128|7.1 Status Registers]
//	----+--------------------------------------+-------------------------------
//	7   | SRWD: Status Register Write Disable  | SRP: Status Register Protect
//	6   | QE: Quad Enable                      | SEC: Sector protect
//	5:2 | BP3-0: Block Protection              | TB, BP2-0
//	1   | WEL: Write Enable Latch              | WEL: Write Enable Latch
//	0   | WIP: Write In Progress               | BUSY: Erase/Write in progress
//
// Quad Enable lives in status register 2 on Winbond parts, so QuadEnable is
// only meaningful for ISSI parts.
type StatusRegister byte

func (sr StatusRegister) WriteDisable() bool { return sr&(1<<7) != 0 }
func (sr StatusRegister) QuadEnable() bool   { return sr&(1<<6) != 0 }
func (sr StatusRegister) BlockProtect() byte { return byte(sr>>2) & 0xF }
func (sr StatusRegister) WriteEnabled() bool { return sr&(1<<1) != 0 }
func (sr StatusRegister) Busy() bool         { return sr&(1<<0) != 0 }

func (sr StatusRegister) String() string {
	b := fmt.Sprintf("%08b", byte(sr))
	s := []string{}
	if sr.WriteDisable() {
		s = append(s, "SRWD")
	}
	if sr.QuadEnable() {
		s = append(s, "QE")
	}
	if bp := sr.BlockProtect(); bp != 0 {
		s = append(s, fmt.Sprintf("BP=%d", bp))
	}
	if sr.WriteEnabled() {
		s = append(s, "WEL")
	}
	if sr.Busy() {
		s = append(s, "BUSY")
	}
	if len(s) == 0 {
		return b
	}
	return b + " " + strings.Join(s, ",")
}
