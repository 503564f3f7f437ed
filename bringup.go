package spimem

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"
)

// ABIVersion is the boot environment interface version this code is built
// against. The environment must report the same value.
const ABIVersion = 9

// ErrNoDevice is returned when the driver cannot set up the flash slave.
var ErrNoDevice = errors.New("unable to setup slave")

// ABIMismatchError reports a boot environment with another ABI version.
type ABIMismatchError struct {
	Want, Got uint32
}

func (e *ABIMismatchError) Error() string {
	return fmt.Sprintf("expects ABI version %d, boot environment reports %d", e.Want, e.Got)
}

// ExitCode maps an error returned by Bringup to the status handed back to the
// invoking shell: 0 on success, 1 on ABI mismatch, and a negative errno for
// device and bus failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var abi *ABIMismatchError
	if errors.As(err, &abi) {
		return 1
	}
	if errors.Is(err, ErrNoDevice) {
		return -int(syscall.ENODEV)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return -int(syscall.EIO)
}

// Bringup switches the board's SPI controller into memory-mapped quad mode
// and copies the boot image into RAM. Fields are set once before Run; a
// Bringup is not safe for concurrent use and Run must not be re-entered.
type Bringup struct {
	Board   *Board
	HostABI uint32 // ABI version reported by the boot environment
	Driver  Driver
	Regs    Window // register block at Board.Controller
	Copier  Copier
	Log     *slog.Logger

	// ChipSelect enables the hardware slave select line before the
	// memory-map program runs.
	ChipSelect bool
	// Verify reads back the programmed registers.
	Verify bool
	// SkipCopy stops after the controller is armed.
	SkipCopy bool
}

// ProbeResult is what the flash reported before the controller was
// reconfigured.
type ProbeResult struct {
	ID       [3]byte
	Part     string
	Capacity int64
	Status   StatusRegister
}

// Run performs the whole sequence: ABI check, bus claim, JEDEC ID and status
// probes, memory-map program, image copy. The bus is released and the slave
// freed on every path once the slave has been set up.
func (b *Bringup) Run() error {
	if err := b.CheckABI(); err != nil {
		return err
	}

	flash, release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	res, err := b.probe(flash)
	if err != nil {
		return err
	}
	if end := int64(b.Board.Image.Offset) + int64(b.Board.Image.Size); res.Capacity > 0 && end > res.Capacity {
		b.warn("image extends past end of flash", slog.Int64("end", end), slog.Int64("capacity", res.Capacity))
	}

	ctl := NewController(b.Board.Controller, b.Regs, b.Log)
	if b.ChipSelect {
		ctl.ChipSelectEnable(b.Board.SPI.CS)
	}

	b.info("memmap quad enable", addrAttr("controller", b.Board.Controller))
	ctl.EnableQuadMemoryMap(b.Board.Program)
	if b.Verify {
		if err := ctl.VerifyProgram(b.Board.Program); err != nil {
			b.logerr("readback failed", slog.String("err", err.Error()))
			return err
		}
	}

	if b.SkipCopy {
		b.info("copy skipped")
		return nil
	}

	src, dst, n := b.Board.Source(), b.Board.Image.Load, b.Board.Image.Size
	b.info("copying", addrAttr("src", src), addrAttr("dst", dst), slog.Int("bytes", n))
	if err := b.Copier.Copy(dst, src, n); err != nil {
		b.logerr("copy failed", slog.String("err", err.Error()))
		return fmt.Errorf("copy image: %w", err)
	}
	b.info("done")
	return nil
}

// Probe reads the JEDEC ID and status register without reconfiguring the
// controller.
func (b *Bringup) Probe() (ProbeResult, error) {
	if err := b.CheckABI(); err != nil {
		return ProbeResult{}, err
	}

	flash, release, err := b.acquire()
	if err != nil {
		return ProbeResult{}, err
	}
	defer release()

	return b.probe(flash)
}

// CheckABI compares the ABI version reported by the boot environment with
// ABIVersion.
func (b *Bringup) CheckABI() error {
	if b.HostABI != ABIVersion {
		b.logerr("can't run",
			slog.Uint64("expects", ABIVersion),
			slog.Uint64("actual", uint64(b.HostABI)),
		)
		return &ABIMismatchError{Want: ABIVersion, Got: b.HostABI}
	}
	return nil
}

// acquire sets up and claims the flash slave. On success the returned
// release func releases the bus and frees the slave, and must be called
// exactly once.
func (b *Bringup) acquire() (flash *Flash, release func(), err error) {
	cfg := b.Board.SPI
	slave, err := b.Driver.SetupSlave(cfg.Bus, cfg.CS, cfg.Speed(), cfg.SPIMode())
	if err != nil || slave == nil {
		b.logerr("unable to setup slave", slog.Int("bus", cfg.Bus), slog.Int("cs", cfg.CS))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
		}
		return nil, nil, ErrNoDevice
	}

	conn, err := slave.Claim()
	if err != nil {
		b.logerr("error claiming bus", slog.String("err", err.Error()))
		b.free(slave)
		return nil, nil, fmt.Errorf("claim bus: %w", err)
	}
	b.debug("bus claimed", slog.String("conn", conn.String()))

	release = func() {
		if err := slave.Release(); err != nil {
			b.warn("release bus", slog.String("err", err.Error()))
		}
		b.free(slave)
	}
	return NewFlash(conn), release, nil
}

func (b *Bringup) free(slave Slave) {
	if err := slave.Free(); err != nil {
		b.warn("free slave", slog.String("err", err.Error()))
	}
}

func (b *Bringup) probe(flash *Flash) (res ProbeResult, err error) {
	res.ID, res.Part, err = flash.ReadID()
	if err != nil {
		b.logerr("failed to read jedec id", slog.String("err", err.Error()))
		return res, fmt.Errorf("read jedec id: %w", err)
	}
	res.Capacity = flash.Capacity()
	b.info("jedec id",
		slog.String("id", fmt.Sprintf("%x %x %x", res.ID[0], res.ID[1], res.ID[2])),
		slog.String("part", res.Part),
		slog.Int64("capacity", res.Capacity),
	)
	if res.Part == "" {
		b.warn("unknown flash ID", slog.String("id", fmt.Sprintf("%X", res.ID)))
	}

	res.Status, err = flash.ReadStatusRegister()
	if err != nil {
		b.logerr("failed to read status", slog.String("err", err.Error()))
		return res, fmt.Errorf("read status: %w", err)
	}
	b.info("status", slog.String("value", fmt.Sprintf("%x", byte(res.Status))), slog.String("bits", res.Status.String()))
	return res, nil
}
