package spimem

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestFlashProbePlayback(t *testing.T) {
	p := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{flashCmdReadID, 0, 0, 0}, R: []byte{0x00, 0xEF, 0x70, 0x18}},
				{W: []byte{flashCmdReadStatusRegister, 0, 0, 0}, R: []byte{0x00, 0x03, 0x00, 0x00}},
			},
			DontPanic: true,
		},
	}
	c, err := p.Connect(physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFlash(c)

	id, name, err := f.ReadID()
	if err != nil {
		t.Fatal(err)
	}
	if id != flashIDWinbondW25Q128 || name != "Winbond W25Q 128Mb" {
		t.Errorf("ReadID() = %X %q", id, name)
	}
	if c := f.Capacity(); c != 16<<20 {
		t.Errorf("capacity %d", c)
	}

	sr, err := f.ReadStatusRegister()
	if err != nil {
		t.Fatal(err)
	}
	if !sr.Busy() || !sr.WriteEnabled() || sr.QuadEnable() {
		t.Errorf("status %s", sr)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFlashUnknownID(t *testing.T) {
	c := &fakeConn{replies: map[byte][]byte{flashCmdReadID: {0, 0xC2, 0x20, 0x19}}}
	f := NewFlash(c)

	id, name, err := f.ReadID()
	if err != nil {
		t.Fatal(err)
	}
	if name != "" {
		t.Errorf("unknown ID %X named %q", id, name)
	}
	if c := f.Capacity(); c != 32<<20 {
		t.Errorf("capacity from ID %X: %d", id, c)
	}
}

func TestFlashTxError(t *testing.T) {
	c := &fakeConn{fail: map[byte]error{flashCmdReadStatusRegister: errors.New("bus error")}}
	f := NewFlash(c)
	if _, err := f.ReadStatusRegister(); err == nil {
		t.Error("expected error")
	}
}

func TestCapacityFromID(t *testing.T) {
	tests := []struct {
		id   [3]byte
		want int64
	}{
		{[3]byte{0x9D, 0x60, 0x1A}, 64 << 20},
		{[3]byte{0xEF, 0x40, 0x18}, 16 << 20},
		{[3]byte{0x00, 0x00, 0x00}, 0},
		{[3]byte{0xFF, 0xFF, 0xFF}, 0},
		{[3]byte{0x20, 0xBA, 0x20}, 0},
	}
	for _, tt := range tests {
		if got := capacityFromID(tt.id); got != tt.want {
			t.Errorf("capacityFromID(%X) = %d, expected %d", tt.id, got, tt.want)
		}
	}
}

func TestStatusRegisterString(t *testing.T) {
	tests := []struct {
		sr   StatusRegister
		want string
	}{
		{0x00, "00000000"},
		{0x40, "01000000 QE"},
		{0x03, "00000011 WEL,BUSY"},
		{0xBC, "10111100 SRWD,BP=15"},
	}
	for _, tt := range tests {
		if got := tt.sr.String(); got != tt.want {
			t.Errorf("StatusRegister(%#02x).String() = %q, expected %q", byte(tt.sr), got, tt.want)
		}
	}
}
