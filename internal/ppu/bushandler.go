package ppu

import "github.com/snes-emu/ppu-fabric/internal/membus"

// RegisterHandler adapts the PPU's register file to the membus.Handler
// capability interface, so the memory manager can install it over the
// 0x2100-0x213F window (mirrored across banks 0x00-0x3F/0x80-0xBF) the
// way it installs any other region.
type RegisterHandler struct {
	ppu *PPU
}

// NewRegisterHandler wraps a PPU for registration on a membus.Bus.
func NewRegisterHandler(p *PPU) *RegisterHandler {
	return &RegisterHandler{ppu: p}
}

func (h *RegisterHandler) Read(addr uint32) uint8 {
	return h.ppu.ReadRegister(uint16(addr & 0xFFFF))
}

func (h *RegisterHandler) Write(addr uint32, value uint8) {
	h.ppu.WriteRegister(uint16(addr&0xFFFF), value)
}

// Peek approximates read-without-side-effects by exposing open bus;
// most PPU registers are write-only or side-effecting by nature and
// have no side-effect-free read path to offer a debugger.
func (h *RegisterHandler) Peek(addr uint32) uint8 {
	return h.ppu.ppu1OpenBus
}

func (h *RegisterHandler) PeekBlock(addr uint32, dst []uint8) {
	for i := range dst {
		dst[i] = h.Peek(addr + uint32(i))
	}
}

func (h *RegisterHandler) GetAbsoluteAddress(addr uint32) membus.AbsoluteAddress {
	return membus.AbsoluteAddress{Type: membus.MemoryTypeRegister, Offset: addr & 0xFFFF}
}

// VRAMPortHandler backs a debugger-facing direct VRAM window some hosts
// map for tooling; CPU-visible access still goes through RegisterHandler
// and the VMDATA ports at 0x2118/0x2119.
type VRAMPortHandler struct {
	ppu *PPU
}

func NewVRAMPortHandler(p *PPU) *VRAMPortHandler {
	return &VRAMPortHandler{ppu: p}
}

func (h *VRAMPortHandler) Read(addr uint32) uint8 {
	word := h.ppu.readVramWord(uint16(addr >> 1))
	if addr&1 == 0 {
		return uint8(word)
	}
	return uint8(word >> 8)
}

func (h *VRAMPortHandler) Write(addr uint32, value uint8) {
	word := h.ppu.readVramWord(uint16(addr >> 1))
	if addr&1 == 0 {
		word = (word & 0xFF00) | uint16(value)
	} else {
		word = (word & 0x00FF) | uint16(value)<<8
	}
	h.ppu.vram[vramWordClamp(uint16(addr>>1))] = word
}

func (h *VRAMPortHandler) Peek(addr uint32) uint8 { return h.Read(addr) }

func (h *VRAMPortHandler) PeekBlock(addr uint32, dst []uint8) {
	for i := range dst {
		dst[i] = h.Peek(addr + uint32(i))
	}
}

func (h *VRAMPortHandler) GetAbsoluteAddress(addr uint32) membus.AbsoluteAddress {
	return membus.AbsoluteAddress{Type: membus.MemoryTypeVRAM, Offset: addr}
}

// OAMPortHandler exposes raw OAM (low + high tables concatenated) for
// debugger tooling.
type OAMPortHandler struct {
	ppu *PPU
}

func NewOAMPortHandler(p *PPU) *OAMPortHandler {
	return &OAMPortHandler{ppu: p}
}

func (h *OAMPortHandler) Read(addr uint32) uint8 {
	if addr < OAMLowSize {
		return h.ppu.oamLo[addr]
	}
	idx := addr - OAMLowSize
	if idx < OAMHiSize {
		return h.ppu.oamHi[idx]
	}
	return 0
}

func (h *OAMPortHandler) Write(addr uint32, value uint8) {
	if addr < OAMLowSize {
		h.ppu.oamLo[addr] = value
	} else if idx := addr - OAMLowSize; idx < OAMHiSize {
		h.ppu.oamHi[idx] = value
	}
}

func (h *OAMPortHandler) Peek(addr uint32) uint8 { return h.Read(addr) }

func (h *OAMPortHandler) PeekBlock(addr uint32, dst []uint8) {
	for i := range dst {
		dst[i] = h.Peek(addr + uint32(i))
	}
}

func (h *OAMPortHandler) GetAbsoluteAddress(addr uint32) membus.AbsoluteAddress {
	return membus.AbsoluteAddress{Type: membus.MemoryTypeOAM, Offset: addr}
}

// CGRAMPortHandler exposes raw CGRAM (as byte pairs) for debugger
// tooling.
type CGRAMPortHandler struct {
	ppu *PPU
}

func NewCGRAMPortHandler(p *PPU) *CGRAMPortHandler {
	return &CGRAMPortHandler{ppu: p}
}

func (h *CGRAMPortHandler) Read(addr uint32) uint8 {
	word := h.ppu.cgram[(addr>>1)&0xFF]
	if addr&1 == 0 {
		return uint8(word)
	}
	return uint8(word >> 8)
}

func (h *CGRAMPortHandler) Write(addr uint32, value uint8) {
	idx := (addr >> 1) & 0xFF
	word := h.ppu.cgram[idx]
	if addr&1 == 0 {
		word = (word & 0xFF00) | uint16(value)
	} else {
		word = (word & 0x00FF) | uint16(value&0x7F)<<8
	}
	h.ppu.cgram[idx] = word
}

func (h *CGRAMPortHandler) Peek(addr uint32) uint8 { return h.Read(addr) }

func (h *CGRAMPortHandler) PeekBlock(addr uint32, dst []uint8) {
	for i := range dst {
		dst[i] = h.Peek(addr + uint32(i))
	}
}

func (h *CGRAMPortHandler) GetAbsoluteAddress(addr uint32) membus.AbsoluteAddress {
	return membus.AbsoluteAddress{Type: membus.MemoryTypeCGRAM, Offset: addr}
}
