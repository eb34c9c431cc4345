package ppu

// Register addresses, CPU bus space 0x2100-0x213F.
const (
	RegINIDISP = 0x2100
	RegOBSEL   = 0x2101
	RegOAMADDL = 0x2102
	RegOAMADDH = 0x2103
	RegOAMDATA = 0x2104
	RegBGMODE  = 0x2105
	RegMOSAIC  = 0x2106
	RegBG1SC   = 0x2107
	RegBG2SC   = 0x2108
	RegBG3SC   = 0x2109
	RegBG4SC   = 0x210A
	RegBG12NBA = 0x210B
	RegBG34NBA = 0x210C
	RegBG1HOFS = 0x210D
	RegBG1VOFS = 0x210E
	RegBG2HOFS = 0x210F
	RegBG2VOFS = 0x2110
	RegBG3HOFS = 0x2111
	RegBG3VOFS = 0x2112
	RegBG4HOFS = 0x2113
	RegBG4VOFS = 0x2114
	RegVMAIN   = 0x2115
	RegVMADDL  = 0x2116
	RegVMADDH  = 0x2117
	RegVMDATAL = 0x2118
	RegVMDATAH = 0x2119
	RegM7SEL   = 0x211A
	RegM7A     = 0x211B
	RegM7B     = 0x211C
	RegM7C     = 0x211D
	RegM7D     = 0x211E
	RegM7X     = 0x211F
	RegM7Y     = 0x2120
	RegCGADD   = 0x2121
	RegCGDATA  = 0x2122
	RegW12SEL  = 0x2123
	RegW34SEL  = 0x2124
	RegWOBJSEL = 0x2125
	RegWH0     = 0x2126
	RegWH1     = 0x2127
	RegWH2     = 0x2128
	RegWH3     = 0x2129
	RegWBGLOG  = 0x212A
	RegWOBJLOG = 0x212B
	RegTM      = 0x212C
	RegTS      = 0x212D
	RegTMW     = 0x212E
	RegTSW     = 0x212F
	RegCGWSEL  = 0x2130
	RegCGADSUB = 0x2131
	RegCOLDATA = 0x2132
	RegSETINI  = 0x2133
	RegMPYL    = 0x2134
	RegMPYM    = 0x2135
	RegMPYH    = 0x2136
	RegSLHV    = 0x2137
	RegOAMDATAR = 0x2138
	RegVMDATALR = 0x2139
	RegVMDATAHR = 0x213A
	RegOPHCT   = 0x213C
	RegOPVCT   = 0x213D
	RegSTAT77  = 0x213E
	RegSTAT78  = 0x213F
)

const chipVersion = 1 // STAT78 bits 3-0, arbitrary but fixed revision id

// WriteRegister decodes a CPU write to the 0x2100-0x213F range and
// applies its side effects.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case RegINIDISP:
		wasForced := p.forcedBlank
		p.forcedBlank = value&0x80 != 0
		p.brightness = value & 0x0F
		if wasForced && !p.forcedBlank && p.timing.Scanline == p.timing.VblankStartScanline {
			p.internalOamAddr = p.sprite.OamAddress << 1
		}

	case RegOBSEL:
		p.sprite.ObjMode = value >> 5
		p.sprite.BaseAddress = uint16(value&0x07) << 13
		p.sprite.GapAddress = (uint16((value>>3)&0x03) + 1) << 12

	case RegOAMADDL:
		p.sprite.OamAddress = (p.sprite.OamAddress & 0x0100) | uint16(value)
		p.internalOamAddr = p.sprite.OamAddress << 1

	case RegOAMADDH:
		p.sprite.OamAddress = (p.sprite.OamAddress & 0x00FF) | (uint16(value&0x01) << 8)
		p.sprite.PriorityRotate = value&0x80 != 0
		p.internalOamAddr = p.sprite.OamAddress << 1

	case RegOAMDATA:
		p.writeOamData(value)

	case RegBGMODE:
		p.bgMode = value & 0x07
		p.bg3Priority = value&0x08 != 0
		for i := 0; i < 4; i++ {
			p.largeTile[i] = value&(0x10<<uint(i)) != 0
		}

	case RegMOSAIC:
		for i := 0; i < 4; i++ {
			p.mosaicEnable[i] = value&(1<<uint(i)) != 0
		}
		p.mosaicSize = value >> 4

	case RegBG1SC, RegBG2SC, RegBG3SC, RegBG4SC:
		i := int(addr - RegBG1SC)
		p.bg[i].TilemapAddress = uint16(value>>2) << 8
		p.bg[i].DoubleWidth = value&0x01 != 0
		p.bg[i].DoubleHeight = value&0x02 != 0

	case RegBG12NBA:
		p.bg[0].ChrAddress = uint16(value&0x0F) << 12
		p.bg[1].ChrAddress = uint16(value>>4) << 12

	case RegBG34NBA:
		p.bg[2].ChrAddress = uint16(value&0x0F) << 12
		p.bg[3].ChrAddress = uint16(value>>4) << 12

	case RegBG1HOFS:
		p.bg[0].HScroll = p.writeBgHScroll(value)
	case RegBG1VOFS:
		p.bg[0].VScroll = p.writeBgVScroll(value)
	case RegBG2HOFS:
		p.bg[1].HScroll = p.writeBgScrollPlain(value, false)
	case RegBG2VOFS:
		p.bg[1].VScroll = p.writeBgScrollPlain(value, true)
	case RegBG3HOFS:
		p.bg[2].HScroll = p.writeBgScrollPlain(value, false)
	case RegBG3VOFS:
		p.bg[2].VScroll = p.writeBgScrollPlain(value, true)
	case RegBG4HOFS:
		p.bg[3].HScroll = p.writeBgScrollPlain(value, false)
	case RegBG4VOFS:
		p.bg[3].VScroll = p.writeBgScrollPlain(value, true)

	case RegVMAIN:
		switch value & 0x03 {
		case 0:
			p.vmain.increment = 1
		case 1:
			p.vmain.increment = 32
		default:
			p.vmain.increment = 128
		}
		p.vmain.remapMode = (value >> 2) & 0x03
		p.vmain.incrementHigh = value&0x80 != 0

	case RegVMADDL:
		p.vramAddress = (p.vramAddress & 0xFF00) | uint16(value)
		p.primeVramReadBuffer()
	case RegVMADDH:
		p.vramAddress = (p.vramAddress & 0x00FF) | uint16(value)<<8
		p.primeVramReadBuffer()

	case RegVMDATAL:
		if !p.inForcedOrVblank() {
			// Dropped, but the address still increments regardless.
		} else {
			w := p.readVramWordRaw(p.vramAddress)
			w = (w & 0xFF00) | uint16(value)
			p.vram[vramWordClamp(p.vramAddress)] = w
		}
		if !p.vmain.incrementHigh {
			p.vramAddress += p.vmain.increment
		}

	case RegVMDATAH:
		if p.inForcedOrVblank() {
			w := p.readVramWordRaw(p.vramAddress)
			w = (w & 0x00FF) | uint16(value)<<8
			p.vram[vramWordClamp(p.vramAddress)] = w
		}
		if p.vmain.incrementHigh {
			p.vramAddress += p.vmain.increment
		}

	case RegM7SEL:
		p.mode7.HorizontalMirroring = value&0x01 != 0
		p.mode7.VerticalMirroring = value&0x02 != 0
		p.mode7.FillWithTile0 = value&0x40 == 0 // bit6=0 fill w/ tile0, 1 skip
		p.mode7.LargeMap = value&0x80 != 0

	case RegM7A:
		p.mode7.A = p.writeM7Word16(value, p.mode7.A)
	case RegM7B:
		p.mode7.B = p.writeM7Word16(value, p.mode7.B)
	case RegM7C:
		p.mode7.C = p.writeM7Word16(value, p.mode7.C)
	case RegM7D:
		p.mode7.D = p.writeM7Word16(value, p.mode7.D)
	case RegM7X:
		p.mode7.CenterX = p.writeM7Word13(value, p.mode7.CenterX)
	case RegM7Y:
		p.mode7.CenterY = p.writeM7Word13(value, p.mode7.CenterY)

	case RegCGADD:
		p.cgramAddr = value
		p.cgramWriteHigh = false

	case RegCGDATA:
		if !p.cgramWriteHigh {
			p.cgramLowByte = value
			p.cgramWriteHigh = true
		} else {
			// CGRAM high byte always has bit 15 forced to zero.
			hi := value & 0x7F
			p.cgram[cgramAddrClamp(p.cgramAddr)] = uint16(p.cgramLowByte) | uint16(hi)<<8
			p.cgramAddr++
			p.cgramWriteHigh = false
		}

	case RegW12SEL:
		p.writeWSEL(0, value)
	case RegW34SEL:
		p.writeWSEL(1, value)
	case RegWOBJSEL:
		p.writeWObjSel(value)

	case RegWH0:
		p.window.Windows[0].Left = value
	case RegWH1:
		p.window.Windows[0].Right = value
	case RegWH2:
		p.window.Windows[1].Left = value
	case RegWH3:
		p.window.Windows[1].Right = value

	case RegWBGLOG:
		for i := 0; i < 4; i++ {
			p.window.Logic[i] = WindowLogic((value >> uint(i*2)) & 0x03)
		}
	case RegWOBJLOG:
		p.window.Logic[LayerSprites] = WindowLogic(value & 0x03)
		p.window.Logic[LayerColorMath] = WindowLogic((value >> 2) & 0x03)

	case RegTM:
		p.mainScreenEnable = value & 0x1F
	case RegTS:
		p.subScreenEnable = value & 0x1F
	case RegTMW:
		p.mainWindowMask = value & 0x1F
	case RegTSW:
		p.subWindowMask = value & 0x1F

	case RegCGWSEL:
		p.colorMath.ClipMode = ColorMathClipMode((value >> 6) & 0x03)
		p.colorMath.PreventMode = ColorMathClipMode((value >> 4) & 0x03)
		p.colorMath.AddSubscreen = value&0x02 != 0
		p.colorMath.DirectColor = value&0x01 != 0

	case RegCGADSUB:
		p.colorMath.EnableLayers = value & 0x3F
		p.colorMath.HalveResult = value&0x40 != 0
		p.colorMath.Subtract = value&0x80 != 0

	case RegCOLDATA:
		p.writeFixedColor(value)

	case RegSETINI:
		p.timing.InterlaceScreen = value&0x01 != 0
		p.timing.InterlaceObject = value&0x02 != 0
		p.timing.Overscan = value&0x04 != 0
		p.mode7.ExtBgEnabled = value&0x40 != 0
		p.timing.HiRes = value&0x08 != 0
		p.recomputeTiming()

	default:
		p.logUnimplemented("ppu: write to unimplemented register %#04x = %#02x", addr, value)
	}
}

func (p *PPU) readVramWordRaw(addr uint16) uint16 {
	return p.vram[vramWordClamp(addr)]
}

func (p *PPU) primeVramReadBuffer() {
	p.vramReadBuffer = p.readVramWordRaw(p.vramAddress)
}

// writeHScrollCommon implements the horizontal-scroll dual-latch formula
// shared by all four BGnHOFS registers (0x210D/0x210F/0x2111/0x2113): the
// written byte's high bits combine with bits 3-7 of the last byte
// written to any BG-scroll register (bgScrollLatch) and the low 3 bits of
// the last byte written to any HOFS register specifically (hScrollLatch)
// — not the target layer's own previously decoded scroll value.
func (p *PPU) writeHScrollCommon(value uint8) uint16 {
	result := (uint16(value)<<8 | uint16(p.bgScrollLatch)&^0x07 | uint16(p.hScrollLatch)&0x07) & 0x3FF
	p.bgScrollLatch = value
	p.hScrollLatch = value
	return result
}

// writeVScrollCommon implements the vertical-scroll dual-latch formula
// shared by all four BGnVOFS registers.
func (p *PPU) writeVScrollCommon(value uint8) uint16 {
	result := (uint16(value)<<8 | uint16(p.bgScrollLatch)) & 0x3FF
	p.bgScrollLatch = value
	return result
}

// writeBgHScroll implements BG1HOFS (0x210D), which shares its hardware
// address with Mode-7's horizontal scroll register: in addition to the
// formula every BGnHOFS write runs, it also latches Mode-7's independent
// byte latch and derives Mode7State.HScroll from it.
func (p *PPU) writeBgHScroll(value uint8) uint16 {
	p.mode7.HScroll = p.writeM7Word13(value, p.mode7.HScroll)
	return p.writeHScrollCommon(value)
}

// writeBgVScroll implements BG1VOFS (0x210E), Mode-7's vertical-scroll
// counterpart to writeBgHScroll.
func (p *PPU) writeBgVScroll(value uint8) uint16 {
	p.mode7.VScroll = p.writeM7Word13(value, p.mode7.VScroll)
	return p.writeVScrollCommon(value)
}

// writeBgScrollPlain handles BG2-4 scroll writes, which run the same
// dual-latch formula as BG1 but never touch the Mode-7 latch pool.
func (p *PPU) writeBgScrollPlain(value uint8, vertical bool) uint16 {
	if vertical {
		return p.writeVScrollCommon(value)
	}
	return p.writeHScrollCommon(value)
}

func (p *PPU) writeM7Word16(value uint8, prev int16) int16 {
	v := (uint16(value)<<8 | uint16(p.mode7.latch))
	p.mode7.latch = value
	return int16(v)
}

func (p *PPU) writeM7Word13(value uint8, prev int16) int16 {
	v := (uint16(value)<<8 | uint16(p.mode7.latch)) & 0x1FFF
	p.mode7.latch = value
	// sign-extend 13-bit
	if v&0x1000 != 0 {
		return int16(v | 0xE000)
	}
	return int16(v)
}

func (p *PPU) writeWSEL(pair int, value uint8) {
	base := pair * 2
	p.writeWindowEnableInvert(base, value&0x0F)
	p.writeWindowEnableInvert(base+1, value>>4)
}

func (p *PPU) writeWindowEnableInvert(layer int, bits uint8) {
	if layer >= 4 {
		return
	}
	p.window.ActiveLayers[0][layer] = bits&0x01 != 0
	p.window.InvertedLayers[0][layer] = bits&0x02 != 0
	p.window.ActiveLayers[1][layer] = bits&0x04 != 0
	p.window.InvertedLayers[1][layer] = bits&0x08 != 0
}

func (p *PPU) writeWObjSel(value uint8) {
	bitsObj := value & 0x0F
	bitsCM := value >> 4
	p.window.ActiveLayers[0][LayerSprites] = bitsObj&0x01 != 0
	p.window.InvertedLayers[0][LayerSprites] = bitsObj&0x02 != 0
	p.window.ActiveLayers[1][LayerSprites] = bitsObj&0x04 != 0
	p.window.InvertedLayers[1][LayerSprites] = bitsObj&0x08 != 0
	p.window.ActiveLayers[0][LayerColorMath] = bitsCM&0x01 != 0
	p.window.InvertedLayers[0][LayerColorMath] = bitsCM&0x02 != 0
	p.window.ActiveLayers[1][LayerColorMath] = bitsCM&0x04 != 0
	p.window.InvertedLayers[1][LayerColorMath] = bitsCM&0x08 != 0
}

func (p *PPU) writeFixedColor(value uint8) {
	intensity := uint16(value & 0x1F)
	if value&0x20 != 0 {
		p.colorMath.FixedColor = (p.colorMath.FixedColor &^ 0x001F) | intensity
	}
	if value&0x40 != 0 {
		p.colorMath.FixedColor = (p.colorMath.FixedColor &^ 0x03E0) | intensity<<5
	}
	if value&0x80 != 0 {
		p.colorMath.FixedColor = (p.colorMath.FixedColor &^ 0x7C00) | intensity<<10
	}
}

// writeOamData implements the byte-paired low-table write and the
// high-table write.
func (p *PPU) writeOamData(value uint8) {
	addr := p.internalOamAddr
	if addr&0x400 != 0 {
		// High table: 32 bytes at internal offset 0x200-0x21F (2 bits
		// per sprite).
		idx := (addr & 0x1F)
		p.oamHi[idx] = value
	} else if addr < 0x200 {
		if addr&1 == 0 {
			p.oamLowByteBuf = value
		} else {
			p.oamLo[addr-1] = p.oamLowByteBuf
			p.oamLo[addr] = value
		}
	} else {
		idx := addr - 0x200
		if idx < OAMHiSize {
			p.oamHi[idx] = value
		}
	}
	p.internalOamAddr = (p.internalOamAddr + 1) & 0x3FF
}

// ReadRegister decodes a CPU read from the 0x2100-0x213F range. It
// applies the read-side latches (VRAM buffering, OAM increment, H/V
// counter latch) and the PPU1/PPU2 open-bus mirror semantics.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case RegMPYL, RegMPYM, RegMPYH:
		// Mode-7 multiplication result; not modeled at the register
		// level here since nothing in this scope issues it, but the
		// read must still behave as PPU1 open bus on the unused paths.
		return p.ppu1OpenBus

	case RegSLHV:
		// Writing with I/O port bit7 high is handled by callers; a read
		// of 0x2137 itself just latches the current H/V position.
		p.latchH = p.host.GetHClock()
		p.latchV = p.timing.Scanline
		p.latched = true
		return p.host.OpenBus()

	case RegOAMDATAR:
		v := p.readOamData()
		p.ppu1OpenBus = v
		return v

	case RegVMDATALR:
		v := uint8(p.vramReadBuffer)
		p.advanceVramReadBuffer(false)
		p.ppu1OpenBus = v
		return v

	case RegVMDATAHR:
		v := uint8(p.vramReadBuffer >> 8)
		p.advanceVramReadBuffer(true)
		p.ppu1OpenBus = v
		return v

	case RegOPHCT:
		return p.readLocationCounter(false)
	case RegOPVCT:
		return p.readLocationCounter(true)

	case RegSTAT77:
		v := uint8(0)
		if p.timeOver {
			v |= 0x80
		}
		if p.rangeOver {
			v |= 0x40
		}
		v |= uint8(chipVersion & 0x0F)
		p.ppu1OpenBus = v
		return v

	case RegSTAT78:
		v := uint8(chipVersion)
		if p.timing.OddFrame {
			v |= 0x80
		}
		if p.latched {
			v |= 0x40
		}
		if p.timing.palMode {
			v |= 0x10
		}
		p.ppu2OpenBus = v
		return v

	default:
		switch {
		case addr >= 0x2134 && addr <= 0x2136, addr >= 0x2138 && addr <= 0x213A, addr == 0x213E:
			return p.ppu1OpenBus
		case addr >= 0x213B && addr <= 0x213D, addr == 0x213F:
			return p.ppu2OpenBus
		case (addr-0x2134)%8 < 3 || (addr-0x2138)%8 < 3:
			return p.ppu1OpenBus
		}
		p.logUnimplemented("ppu: read from unimplemented register %#04x", addr)
		return p.host.OpenBus()
	}
}

func (p *PPU) advanceVramReadBuffer(onHigh bool) {
	if onHigh == p.vmain.incrementHigh {
		p.vramAddress += p.vmain.increment
		p.primeVramReadBuffer()
	}
}

func (p *PPU) readOamData() uint8 {
	addr := p.internalOamAddr
	var v uint8
	if addr < 0x200 {
		v = p.oamLo[addr]
	} else {
		idx := addr - 0x200
		if idx < OAMHiSize {
			v = p.oamHi[idx]
		}
	}
	p.internalOamAddr = (p.internalOamAddr + 1) & 0x3FF
	return v
}

// readLocationCounter reads OPHCT/OPVCT, a 9-bit value delivered via a
// two-byte read toggle.
func (p *PPU) readLocationCounter(vertical bool) uint8 {
	var v uint16
	if vertical {
		v = p.latchV
	} else {
		v = p.latchH
	}
	var b uint8
	if !p.latchToggleHigh {
		b = uint8(v)
	} else {
		b = uint8(v>>8) & 0x01
		b |= p.ppu2OpenBus &^ 0x01
	}
	p.latchToggleHigh = !p.latchToggleHigh
	p.ppu2OpenBus = b
	return b
}

// ClearLatch clears the location-counter latch and resets the two-byte
// read toggles, as happens when 0x213F is read with I/O port bit 7 high.
func (p *PPU) ClearLatch() {
	p.latched = false
	p.latchToggleHigh = false
}

// RequestLocationLatch stores an external (super-scope style) target; once
// the running scanline/dot passes it, the current position is captured.
func (p *PPU) RequestLocationLatch(targetScanline, targetDot uint16) {
	p.pendingLatchScanline = targetScanline
	p.pendingLatchDot = targetDot
	p.hasPendingLatch = true
}
