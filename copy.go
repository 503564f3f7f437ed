package spimem

import (
	"fmt"

	"periph.io/x/host/v3/pmem"
)

// Copier copies n bytes between physical addresses.
type Copier interface {
	Copy(dst, src uint64, n int) error
}

// CopierFunc adapts a function to the Copier interface.
type CopierFunc func(dst, src uint64, n int) error

func (f CopierFunc) Copy(dst, src uint64, n int) error { return f(dst, src, n) }

// MemCopier copies through /dev/mem mappings of both ranges.
type MemCopier struct{}

func (MemCopier) Copy(dst, src uint64, n int) error {
	sv, err := pmem.Map(src, n)
	if err != nil {
		return fmt.Errorf("map source %#x: %w", src, err)
	}
	defer sv.Close()

	dv, err := pmem.Map(dst, n)
	if err != nil {
		return fmt.Errorf("map destination %#x: %w", dst, err)
	}
	defer dv.Close()

	if len(sv.Slice) < n || len(dv.Slice) < n {
		return fmt.Errorf("short mapping: %d/%d of %d bytes", len(sv.Slice), len(dv.Slice), n)
	}
	copy(dv.Slice[:n], sv.Slice[:n])
	return nil
}
