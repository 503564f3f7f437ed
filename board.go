package spimem

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

//go:embed boards.yaml
var rawBoards []byte

// DefaultBoard is the board used when none is named.
const DefaultBoard = "sc598-som"

// Board holds the platform constants of one board revision, kept apart from
// the bring-up sequence that uses them.
type Board struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	ABI         uint32      `yaml:"abi"` // ABI version reported by the boot environment
	SPI         SPIConfig   `yaml:"spi"`
	Controller  uint64      `yaml:"controller"` // register block base
	MMap        MMapConfig  `yaml:"mmap"`
	Image       ImageConfig `yaml:"image"`
	Program     Program     `yaml:"program"`
}

type SPIConfig struct {
	Bus     int    `yaml:"bus"`
	CS      int    `yaml:"cs"`
	SpeedHz int64  `yaml:"speed_hz"`
	Mode    int    `yaml:"mode"`
	CSPin   string `yaml:"cs_pin"`
}

func (c SPIConfig) Speed() physic.Frequency { return physic.Frequency(c.SpeedHz) * physic.Hertz }

func (c SPIConfig) SPIMode() spi.Mode { return spi.Mode(c.Mode) }

// MMapConfig is the CPU address window the controller maps the flash into.
type MMapConfig struct {
	Base uint64 `yaml:"base"`
}

// ImageConfig locates the image inside the memory-mapped flash window and
// where it is copied to.
type ImageConfig struct {
	Offset uint64 `yaml:"offset"`
	Size   int    `yaml:"size"`
	Load   uint64 `yaml:"load"`
}

// Source returns the physical address of the image in the flash window.
func (b *Board) Source() uint64 { return b.MMap.Base + b.Image.Offset }

func (b *Board) Validate() error {
	var errs []error
	if b.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}
	if b.SPI.SpeedHz <= 0 {
		errs = append(errs, fmt.Errorf("spi speed %d Hz", b.SPI.SpeedHz))
	}
	if b.SPI.Mode < 0 || b.SPI.Mode > 3 {
		errs = append(errs, fmt.Errorf("spi mode %d", b.SPI.Mode))
	}
	if b.Controller == 0 {
		errs = append(errs, errors.New("missing controller address"))
	}
	if b.Image.Size <= 0 {
		errs = append(errs, fmt.Errorf("image size %d", b.Image.Size))
	}
	if err := b.Program.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("board %q: %w", b.Name, errors.Join(errs...))
	}
	return nil
}

type Boards []Board

// DefaultBoards returns the built-in board table.
func DefaultBoards() Boards {
	boards, err := ParseBoards(rawBoards)
	if err != nil {
		panic(err)
	}
	return boards
}

// LoadBoards reads a board table from a YAML file.
func LoadBoards(path string) (Boards, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBoards(data)
}

// ParseBoards decodes and validates a YAML board table. A board without a
// program gets QuadMemoryMapProgram.
func ParseBoards(data []byte) (Boards, error) {
	var boards Boards
	if err := yaml.Unmarshal(data, &boards); err != nil {
		return nil, err
	}
	for i := range boards {
		b := &boards[i]
		if len(b.Program) == 0 {
			b.Program = slices.Clone(QuadMemoryMapProgram)
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if slices.IndexFunc(boards[:i], func(o Board) bool { return strings.EqualFold(o.Name, b.Name) }) >= 0 {
			return nil, fmt.Errorf("board %q defined twice", b.Name)
		}
	}
	return boards, nil
}

func (bs Boards) Find(name string) (*Board, error) {
	i := slices.IndexFunc(bs, func(b Board) bool { return strings.EqualFold(b.Name, name) })
	if i < 0 {
		return nil, fmt.Errorf("board %q not found", name)
	}
	return &bs[i], nil
}
