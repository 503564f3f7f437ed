package spimem

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// Driver hands out slaves on an SPI bus.
type Driver interface {
	// SetupSlave requests chip select cs on bus, clocked at most at maxSpeed.
	SetupSlave(bus, cs int, maxSpeed physic.Frequency, mode spi.Mode) (Slave, error)
}

// Slave is one device on a bus. A successful Claim must be balanced by
// Release, and Free must be called once the slave is no longer needed.
type Slave interface {
	// Claim takes the bus for exclusive transfers and returns the connection
	// to use until Release.
	Claim() (spi.Conn, error)
	Release() error
	Free() error
}

var hostInitialized atomic.Bool

func initHost() error {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			hostInitialized.Store(false)
			return fmt.Errorf("host initialization failed: %w", err)
		}
	}
	return nil
}

// PeriphDriver opens spidev ports registered by periph.io, named "SPI<bus>.<cs>".
// CSPin optionally names a GPIO driven low around every transfer, for boards
// that route the flash select to a GPIO instead of the controller's SSEL line.
type PeriphDriver struct {
	CSPin string
}

func (d PeriphDriver) SetupSlave(bus, cs int, maxSpeed physic.Frequency, mode spi.Mode) (Slave, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("SPI%d.%d", bus, cs)
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	s := &portSlave{port: port, speed: maxSpeed, mode: mode}
	if d.CSPin != "" {
		p := gpioreg.ByName(d.CSPin)
		if p == nil {
			port.Close()
			return nil, fmt.Errorf("chip select pin %q not found", d.CSPin)
		}
		s.cs = p
	}
	return s, nil
}

// FTDIDriver reaches the flash from a workstation through the MPSSE port of
// an FT2232H, with the SoC held off the bus. Bus and chip select numbers are
// ignored: the adapter has one port and selects the flash on ADBUS4.
type FTDIDriver struct{}

func (FTDIDriver) SetupSlave(_, _ int, maxSpeed physic.Frequency, mode spi.Mode) (Slave, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	ft, err := findFT2232H()
	if err != nil {
		return nil, err
	}

	port, err := ft.SPI()
	if err != nil {
		return nil, fmt.Errorf("failed to get SPI port: %w", err)
	}

	// [FTDI AN_114|1.2]> FTDI device can only support mode 0 and mode 2 due to the limitation of MPSSE engine
	if mode != spi.Mode0 && mode != spi.Mode2 {
		port.Close()
		return nil, fmt.Errorf("FT2232H does not support SPI %s", mode)
	}

	// ADBUS0 | SCK
	// ADBUS1 | MOSI
	// ADBUS2 | MISO
	// ADBUS4 | flash CS#
	return &portSlave{port: port, speed: maxSpeed, mode: mode, cs: ft.D4}, nil
}

func findFT2232H() (*ftdi.FT232H, error) {
	const (
		vendorID  = 0x0403 // FTDI
		productID = 0x6010 // FT2232H
	)

	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != vendorID || info.DevID != productID {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			return ft, nil
		}
	}

	return nil, errors.New("FT2232H device not found")
}

// portSlave adapts a periph spi.PortCloser to Slave. periph has no separate
// bus lock, so Claim connects the port and Release drops the connection; the
// port itself is closed by Free.
type portSlave struct {
	port  spi.PortCloser
	speed physic.Frequency
	mode  spi.Mode
	cs    gpio.PinOut

	conn spi.Conn
}

func (s *portSlave) Claim() (spi.Conn, error) {
	if s.conn != nil {
		return nil, fmt.Errorf("bus already claimed: %w", syscall.EBUSY)
	}
	c, err := s.port.Connect(s.speed, s.mode, 8)
	if err != nil {
		return nil, err
	}
	if s.cs != nil {
		if err := s.cs.Out(gpio.High); err != nil {
			return nil, err
		}
		c = &csConn{Conn: c, cs: s.cs}
	}
	s.conn = c
	return c, nil
}

func (s *portSlave) Release() error {
	if s.conn == nil {
		return errors.New("bus not claimed")
	}
	s.conn = nil
	return nil
}

func (s *portSlave) Free() error {
	return s.port.Close()
}

// csConn wraps SPI transactions with CS assertion.
type csConn struct {
	spi.Conn
	cs gpio.PinOut
}

func (c *csConn) Tx(w, r []byte) (err error) {
	if err = c.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := c.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = c.Conn.Tx(w, r)
	return
}
