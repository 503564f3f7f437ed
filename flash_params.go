package spimem

type flashPart struct {
	name string
	size int64 // bytes
}

var (
	flashIDISSIIS25LP512  = [3]byte{0x9D, 0x60, 0x1A}
	flashIDISSIIS25LP256  = [3]byte{0x9D, 0x60, 0x19}
	flashIDWinbondW25Q128 = [3]byte{0xEF, 0x70, 0x18}
	flashIDWinbondW25Q256 = [3]byte{0xEF, 0x40, 0x19}
	flashIDMicronN25Q32   = [3]byte{0x20, 0xBA, 0x16}
	flashIDMicronMT25Q512 = [3]byte{0x20, 0xBA, 0x20}
)

var knownFlash = map[[3]byte]flashPart{
	flashIDISSIIS25LP512:  {name: "ISSI IS25LP 512Mb", size: 64 << 20},
	flashIDISSIIS25LP256:  {name: "ISSI IS25LP 256Mb", size: 32 << 20},
	flashIDWinbondW25Q128: {name: "Winbond W25Q 128Mb", size: 16 << 20},
	flashIDWinbondW25Q256: {name: "Winbond W25Q 256Mb", size: 32 << 20},
	flashIDMicronN25Q32:   {name: "Micron N25Q 32Mb", size: 4 << 20},
	flashIDMicronMT25Q512: {name: "Micron MT25Q 512Mb", size: 64 << 20},
}

// capacityFromID decodes the capacity byte most vendors use as log2 of the
// size in bytes. IDs read from a missing chip (all 0x00 or 0xFF) give 0.
func capacityFromID(id [3]byte) int64 {
	c := id[2]
	if id == [3]byte{} || id == [3]byte{0xFF, 0xFF, 0xFF} {
		return 0
	}
	if c < 0x10 || c > 0x1F {
		return 0
	}
	return 1 << c
}
