// Package membus implements the 24-bit memory-mapping fabric that the
// SNES CPU, coprocessors and PPU see: a page table of handler objects
// addressed by 4KiB page, with the banded registration forms used to lay
// out LoROM/HiROM/ExHiROM mirror patterns.
//
// The table never runs handler code itself; it only routes. Side effects
// (VRAM increment, open-bus latching, OAM address wrap, ...) live on the
// Handler implementations, dispatched to rather than performed by the bus
// itself.
package membus

import "github.com/golang/glog"

const (
	// PageSize is the fixed 4KiB granularity of the page table.
	PageSize = 0x1000
	// PageCount is the number of 4KiB pages in the full 24-bit space.
	PageCount = 1 << 12 // 24 bits of address, 12 bits of page index
	// BanksInSpace is the number of 64KiB banks in the 24-bit space.
	BanksInSpace = 0x100
	// PagesPerBank is the number of 4KiB pages in one 64KiB bank.
	PagesPerBank = 0x10000 / PageSize
)

// MemoryType identifies the physical backing store an absolute address
// translates to. Used only by peek-style debugger paths.
type MemoryType int

const (
	MemoryTypeNone MemoryType = iota
	MemoryTypeROM
	MemoryTypeWRAM
	MemoryTypeSaveRAM
	MemoryTypeCGRAM
	MemoryTypeVRAM
	MemoryTypeOAM
	MemoryTypeRegister
	MemoryTypeSPC
	MemoryTypeCoprocessor
)

// AbsoluteAddress is the (memory type, offset) pair a Handler can resolve
// a bus address to, for the debugger's benefit. MemoryTypeNone means "not
// translatable" and Offset is meaningless in that case.
type AbsoluteAddress struct {
	Type   MemoryType
	Offset uint32
}

// Handler is the uniform capability record every page in the table
// dispatches to. A tagged region — ROM bank slice, RAM slice, a PPU/DMA/
// APU register window, a coprocessor memory controller — implements this
// small interface rather than participating in a class hierarchy.
type Handler interface {
	// Read performs a bus read with side effects (e.g. VRAM read-buffer
	// priming, OAM address increment).
	Read(addr uint32) uint8
	// Write performs a bus write with side effects.
	Write(addr uint32, value uint8)
	// Peek reads without side effects, for debugger use.
	Peek(addr uint32) uint8
	// PeekBlock fills dst with consecutive peeked bytes starting at addr.
	PeekBlock(addr uint32, dst []uint8)
	// GetAbsoluteAddress resolves addr to a physical (type, offset) pair,
	// or MemoryTypeNone if this handler has no such concept.
	GetAbsoluteAddress(addr uint32) AbsoluteAddress
}

// Bus is the 4096-entry page table. Each entry is either nil (unmapped)
// or a Handler responsible for every address in that 4KiB page.
type Bus struct {
	pages   [PageCount]Handler
	openBus uint8
}

// New returns an empty page table. Every page is unmapped until a
// RegisterHandler call installs a Handler over it.
func New() *Bus {
	return &Bus{}
}

func pageIndex(addr uint32) int {
	return int((addr >> 12) & (PageCount - 1))
}

// RegisterHandler installs a single handler over the rectangle
// [startBank,endBank] x [startAddr,endAddr]. Both startAddr and endAddr+1
// must be 4KiB-aligned; a misaligned call is a programming error and is
// fatal rather than silently truncated.
func (b *Bus) RegisterHandler(startBank, endBank uint8, startAddr, endAddr uint16, h Handler) {
	if startAddr%PageSize != 0 || (uint32(endAddr)+1)%PageSize != 0 {
		glog.Fatalf("membus: RegisterHandler: unaligned range %04x-%04x (must be 4KiB aligned)", startAddr, endAddr)
	}
	if startBank > endBank || startAddr > endAddr {
		glog.Fatalf("membus: RegisterHandler: reversed range banks %02x-%02x addrs %04x-%04x", startBank, endBank, startAddr, endAddr)
	}

	firstPage := startAddr / PageSize
	lastPage := endAddr / PageSize
	for bank := uint32(startBank); bank <= uint32(endBank); bank++ {
		base := bank*PagesPerBank + uint32(firstPage)
		for p := base; p <= bank*PagesPerBank+uint32(lastPage); p++ {
			b.pages[p] = h
		}
	}
}

// RegisterHandlerBanded installs a banded, rotating assignment of
// handlers — the compact form used for LoROM/HiROM/ExHiROM mirroring.
// For each bank in [startBank,endBank], pages [startPage,endPage] are
// assigned round-robin from handlers, starting at
// startPageNumber&(len(handlers)-1) and advancing by pageIncrement per
// bank. len(handlers) must be a power of two.
func (b *Bus) RegisterHandlerBanded(startBank, endBank uint8, startPage, endPage uint8, handlers []Handler, pageIncrement int, startPageNumber int) {
	n := len(handlers)
	if n == 0 || n&(n-1) != 0 {
		glog.Fatalf("membus: RegisterHandlerBanded: handler count %d is not a power of two", n)
	}
	mask := n - 1
	idx := startPageNumber & mask

	for bank := uint32(startBank); bank <= uint32(endBank); bank++ {
		cur := idx
		for page := uint32(startPage); page <= uint32(endPage); page++ {
			h := handlers[cur&mask]
			b.pages[bank*PagesPerBank+page] = h
			cur++
		}
		idx += pageIncrement
	}
}

// GetHandler returns the handler mapped at addr, or nil if unmapped.
func (b *Bus) GetHandler(addr uint32) Handler {
	return b.pages[pageIndex(addr)]
}

// SetOpenBus updates the byte returned for unmapped reads.
func (b *Bus) SetOpenBus(v uint8) {
	b.openBus = v
}

// OpenBus returns the last byte driven on the bus.
func (b *Bus) OpenBus() uint8 {
	return b.openBus
}

// Read dispatches a bus read, falling back to open bus when unmapped.
func (b *Bus) Read(addr uint32) uint8 {
	if h := b.GetHandler(addr); h != nil {
		v := h.Read(addr)
		b.openBus = v
		return v
	}
	return b.openBus
}

// Write dispatches a bus write, silently dropping it when unmapped.
func (b *Bus) Write(addr uint32, value uint8) {
	if h := b.GetHandler(addr); h != nil {
		h.Write(addr, value)
		b.openBus = value
	}
}

// Peek reads without side effects for debugger use, falling back to open
// bus (the last value observed, not a live side-effecting read) when
// unmapped.
func (b *Bus) Peek(addr uint32) uint8 {
	if h := b.GetHandler(addr); h != nil {
		return h.Peek(addr)
	}
	return b.openBus
}

// PeekWord peeks two consecutive bytes as a little-endian word.
func (b *Bus) PeekWord(addr uint32) uint16 {
	lo := b.Peek(addr)
	hi := b.Peek(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// PeekBlock fills dst with consecutive peeked bytes starting at addr,
// delegating per-page so a handler can batch its own peek (e.g. a direct
// slice copy) instead of byte-at-a-time dispatch.
func (b *Bus) PeekBlock(addr uint32, dst []uint8) {
	i := 0
	for i < len(dst) {
		h := b.GetHandler(addr + uint32(i))
		if h == nil {
			dst[i] = b.openBus
			i++
			continue
		}
		// Peek up to the end of the current page in one call.
		pageEnd := (addr+uint32(i))&^uint32(PageSize-1) + PageSize
		n := int(pageEnd - (addr + uint32(i)))
		if n > len(dst)-i {
			n = len(dst) - i
		}
		h.PeekBlock(addr+uint32(i), dst[i:i+n])
		i += n
	}
}

// GetAbsoluteAddress resolves addr via the owning handler, or returns the
// MemoryTypeNone sentinel when unmapped or the handler can't translate.
func (b *Bus) GetAbsoluteAddress(addr uint32) AbsoluteAddress {
	if h := b.GetHandler(addr); h != nil {
		return h.GetAbsoluteAddress(addr)
	}
	return AbsoluteAddress{Type: MemoryTypeNone}
}
