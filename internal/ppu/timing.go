package ppu

// Long-dot positions: on hardware H=322 and H=326 (dot indices 323 and
// 327) run 6 master cycles instead of 4. ProcessPpuCycle names them but
// still advances Dot by exactly one per call, so their extra length is
// not modeled.
const (
	longDotA = 323
	longDotB = 327
)

func (p *PPU) dotsInScanline() uint16 {
	if p.timing.OddFrame && !p.timing.InterlaceScreen && p.timing.Scanline == 240 {
		return 1360
	}
	return 1364
}

// ProcessPpuCycle advances the frame timing state machine by one tick of
// the Dot counter (one call per tick, including at the two long-dot
// positions). It drives the background fetcher, sprite engine
// and compositor at the appropriate dots and raises NMI/frame-done
// notifications at the scanlines the controller defines.
func (p *PPU) ProcessPpuCycle() {
	cyclesThisDot := uint16(4)
	if p.timing.Dot == longDotA || p.timing.Dot == longDotB {
		cyclesThisDot = 6
	}
	_ = cyclesThisDot // not used further: every call advances Dot by exactly one

	if p.timing.Dot == 0 {
		p.onScanlineStart()
	}

	if p.timing.Scanline < p.timing.VblankStartScanline && p.timing.Dot == 0 {
		p.fetchAllBackgrounds()
	}

	if p.timing.Scanline < p.timing.VblankStartScanline && p.timing.Dot == ScreenWidth {
		p.compositeBatch(0, ScreenWidth-1)
		// Sprites for the next scanline are evaluated and committed once
		// this scanline's visible dots have been composited.
		p.runSpriteEngine()
	}

	p.advanceDot()
}

// AdvanceDotRange lets the host drive the compositor for an arbitrary
// elapsed batch of dots, used when a register write mid-scanline splits
// the render into two or more batches instead of the single
// end-of-visible-area call ProcessPpuCycle issues on its own.
func (p *PPU) AdvanceDotRange(drawStartX, drawEndX int) {
	if p.timing.Scanline < p.timing.VblankStartScanline {
		p.compositeBatch(drawStartX, drawEndX)
	}
}

func (p *PPU) onScanlineStart() {
	if p.timing.Scanline == p.timing.NmiScanline {
		p.timing.nmiFlag = true
		p.host.NotifyNMI(true)
		p.publishFrame()
	}
}

func (p *PPU) advanceDot() {
	p.timing.Dot++
	if p.timing.Dot >= p.dotsInScanline() {
		p.timing.Dot = 0
		p.advanceScanline()
	}
}

func (p *PPU) advanceScanline() {
	p.timing.Scanline++
	if p.timing.Scanline > p.timing.VblankEndScanline {
		p.timing.Scanline = 0
		p.timing.OddFrame = !p.timing.OddFrame
		p.timing.nmiFlag = false
		p.host.NotifyNMI(false)
		p.rangeOver = false
		p.timeOver = false
		p.recomputeTiming()
	}
}

// inExtraScanlines reports whether the current scanline falls within an
// overclock-extended region, where the APU-enable signal must be
// suppressed so game code cannot observe the extra time.
func (p *PPU) inExtraScanlines() bool {
	if p.timing.ExtraScanlinesBeforeNmi > 0 {
		if p.timing.Scanline >= p.timing.VblankStartScanline &&
			p.timing.Scanline < p.timing.NmiScanline {
			return true
		}
	}
	if p.timing.ExtraScanlinesAfterNmi > 0 {
		if p.timing.Scanline > p.timing.BaseVblankEndScanline &&
			p.timing.Scanline <= p.timing.AdjustedVblankEndScanline {
			return true
		}
	}
	return false
}

// APUEnabled reports whether the host should drive its APU-enable
// signal this cycle; false during overclock's extra scanlines.
func (p *PPU) APUEnabled() bool {
	return !p.inExtraScanlines()
}

// SetOverclock configures the two overclock extension counts and
// recomputes derived timing constants.
func (p *PPU) SetOverclock(extraBeforeNmi, extraAfterNmi uint16) {
	p.timing.ExtraScanlinesBeforeNmi = extraBeforeNmi
	p.timing.ExtraScanlinesAfterNmi = extraAfterNmi
	p.recomputeTiming()
}

// ResolvePendingLatch checks whether a pending super-scope style
// location-latch request has just been passed by the running position,
// and if so captures it.
func (p *PPU) ResolvePendingLatch() {
	if !p.hasPendingLatch {
		return
	}
	if p.timing.Scanline > p.pendingLatchScanline ||
		(p.timing.Scanline == p.pendingLatchScanline && p.timing.Dot >= p.pendingLatchDot) {
		p.latchH = p.timing.Dot
		p.latchV = p.timing.Scanline
		p.latched = true
		p.hasPendingLatch = false
	}
}
