package spimem

import (
	"errors"
	"syscall"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestPortSlaveClaimRelease(t *testing.T) {
	p := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{flashCmdReadID, 0, 0, 0}, R: []byte{0x00, 0x9D, 0x60, 0x1A}},
			},
			DontPanic: true,
		},
	}
	s := &portSlave{port: p, speed: physic.KiloHertz, mode: spi.Mode0}

	c, err := s.Claim()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Claim(); !errors.Is(err, syscall.EBUSY) {
		t.Errorf("second claim: %v, expected EBUSY", err)
	}

	if _, name, err := NewFlash(c).ReadID(); err != nil || name != "ISSI IS25LP 512Mb" {
		t.Errorf("ReadID: %q %v", name, err)
	}

	if err := s.Release(); err != nil {
		t.Fatal(err)
	}
	if err := s.Release(); err == nil {
		t.Error("releasing an unclaimed bus succeeded")
	}
	if err := s.Free(); err != nil {
		t.Fatal(err)
	}
}

// pinCheckConn fails transfers made while chip select is not asserted.
type pinCheckConn struct {
	fakeConn
	cs *gpiotest.Pin
}

func (c *pinCheckConn) Tx(w, r []byte) error {
	if c.cs.Read() != gpio.Low {
		return errors.New("chip select not asserted")
	}
	return c.fakeConn.Tx(w, r)
}

func TestCSConn(t *testing.T) {
	pin := &gpiotest.Pin{N: "CS", L: gpio.High}
	inner := &pinCheckConn{
		fakeConn: fakeConn{replies: map[byte][]byte{flashCmdReadStatusRegister: {0, 0x40, 0, 0}}},
		cs:       pin,
	}
	c := &csConn{Conn: inner, cs: pin}

	sr, err := NewFlash(c).ReadStatusRegister()
	if err != nil {
		t.Fatal(err)
	}
	if !sr.QuadEnable() {
		t.Errorf("status %s", sr)
	}
	if pin.Read() != gpio.High {
		t.Error("chip select left asserted")
	}

	inner.fail = map[byte]error{flashCmdReadStatusRegister: errors.New("bus error")}
	if _, err := NewFlash(c).ReadStatusRegister(); err == nil {
		t.Error("expected error")
	}
	if pin.Read() != gpio.High {
		t.Error("chip select left asserted after a failed transfer")
	}
}
