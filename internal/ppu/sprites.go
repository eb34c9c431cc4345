package ppu

// oamSizes maps OBSEL's object-size selector (0..7) to the (small, large)
// sprite dimensions in pixels, both square.
var oamSizes = [8][2]uint8{
	{8, 16},
	{8, 32},
	{8, 64},
	{16, 32},
	{16, 64},
	{32, 64},
	{16, 32}, // duplicate of entry 3 on real hardware
	{16, 32}, // duplicate of entry 3 on real hardware
}

type oamEntry struct {
	x        int16 // sign-extended, -256 sentinel for "hidden but counted"
	y        uint8
	tile     uint16
	palette  uint8
	priority uint8
	flipX    bool
	flipY    bool
	large    bool
}

func (p *PPU) readOamEntry(index int) oamEntry {
	base := index * 4
	b0 := p.oamLo[base]
	b1 := p.oamLo[base+1]
	b2 := p.oamLo[base+2]
	b3 := p.oamLo[base+3]

	hiByte := p.oamHi[index/4]
	shift := uint((index % 4) * 2)
	bits := (hiByte >> shift) & 0x03

	x := int16(b0)
	if bits&0x01 != 0 {
		x |= ^int16(0xFF) // sign-extend into the 9th bit
	}

	e := oamEntry{
		x:        x,
		y:        b1,
		tile:     uint16(b2) | uint16(b3&0x01)<<8,
		palette:  (b3 >> 1) & 0x07,
		priority: (b3 >> 4) & 0x03,
		flipX:    b3&0x40 != 0,
		flipY:    b3&0x80 != 0,
		large:    bits&0x02 != 0,
	}
	return e
}

// spriteDimension returns a sprite's pixel height for the next scanline's
// visibility test, halved under object-interlace.
func (p *PPU) spriteDimension(e oamEntry) uint8 {
	dims := oamSizes[p.sprite.ObjMode&0x07]
	d := dims[0]
	if e.large {
		d = dims[1]
	}
	if p.timing.InterlaceObject {
		d /= 2
	}
	return d
}

// evaluateOAM is phase 1 of the sprite engine: for the next scanline,
// scan all 128 sprites and collect up to 32 visible indexes, starting
// from the OAM priority-rotation offset when enabled.
func (p *PPU) evaluateOAM() {
	p.spriteCount = 0
	p.rangeOver = false

	targetLine := p.timing.Scanline + 1

	start := 0
	if p.sprite.PriorityRotate {
		start = int((p.sprite.OamAddress & 0x1FC) >> 2)
	}

	inRange := 0
	for i := 0; i < 128; i++ {
		idx := (start + i) % 128
		e := p.readOamEntry(idx)
		h := p.spriteDimension(e)
		top := uint16(e.y)
		bottom := top + uint16(h)
		var visible bool
		if bottom > 256 {
			visible = targetLine >= top || targetLine < bottom-256
		} else {
			visible = targetLine >= top && targetLine < bottom
		}
		if !visible {
			continue
		}
		inRange++
		if inRange > 32 {
			p.rangeOver = true
			continue
		}
		if e.x == -256 {
			// Counted toward the 32-sprite range limit above, but
			// invisible: it is not fetched, so it adds no tiles toward
			// the time-over limit.
			continue
		}
		p.spriteIndexes[p.spriteCount] = idx
		p.spriteCount++
	}
}

// fetchSpriteTiles is phase 2: for each candidate sprite found in phase
// 1, fetch CHR data and rasterize its row into the scanline's pending
// (Copy-suffixed) sprite buffers.
func (p *PPU) fetchSpriteTiles() {
	for i := range p.spriteColorsCopy {
		p.spriteColorsCopy[i] = 0
		p.spritePriorityCopy[i] = 0
		p.spritePaletteCopy[i] = 0
	}

	tileRows := 0
	p.timeOver = false

	for s := 0; s < p.spriteCount; s++ {
		e := p.readOamEntry(p.spriteIndexes[s])
		h := p.spriteDimension(e)
		w := h // square sprites

		lineInSprite := uint8(p.timing.Scanline+1-uint16(e.y)) % h
		if e.flipY {
			lineInSprite = h - 1 - lineInSprite
		}
		rowsThisTile := lineInSprite / 8

		tilesAcross := w / 8
		for tx := uint8(0); tx < tilesAcross; tx++ {
			tileRows++
			if tileRows > 34 {
				p.timeOver = true
				break
			}

			tileX := tx
			if e.flipX {
				tileX = tilesAcross - 1 - tx
			}
			tileIdx := (e.tile & 0xFFF0) | uint16(e.tile&0x0F)
			tileIdx += uint16(rowsThisTile) * 16
			tileIdx += uint16(tileX)

			chrBase := p.sprite.BaseAddress
			if e.tile >= 0x100 {
				chrBase = p.sprite.GapAddress
			}
			rowInTile := lineInSprite % 8
			tileWordBase := chrBase + (tileIdx&0x3FF)*16

			var planes [4]uint16
			planes[0] = p.readVramWord(tileWordBase + uint16(rowInTile))
			planes[1] = p.readVramWord(tileWordBase + uint16(rowInTile) + 8)

			screenX := int32(e.x) + int32(tx)*8
			for px := uint8(0); px < 8; px++ {
				col := px
				if e.flipX {
					col = 7 - px
				}
				bit := 7 - col
				c := uint8(0)
				if planes[0]&(1<<bit) != 0 {
					c |= 1
				}
				if planes[0]&(1<<(bit+8)) != 0 {
					c |= 2
				}
				if planes[1]&(1<<bit) != 0 {
					c |= 4
				}
				if planes[1]&(1<<(bit+8)) != 0 {
					c |= 8
				}
				x := screenX + int32(px)
				if x < 0 || x >= ScreenWidth {
					continue
				}
				if c == 0 {
					continue
				}
				p.spriteColorsCopy[x] = c
				p.spritePaletteCopy[x] = e.palette
				p.spritePriorityCopy[x] = e.priority
			}
		}
		if tileRows > 34 {
			break
		}
	}
}

// commitSpriteScanline swaps the freshly rasterized copy buffers into
// the live arrays the compositor reads, matching the engine's
// end-of-scanline handoff.
func (p *PPU) commitSpriteScanline() {
	p.spriteColors = p.spriteColorsCopy
	p.spritePriority = p.spritePriorityCopy
	p.spritePalette = p.spritePaletteCopy
}

// runSpriteEngine drives both evaluation phases for the current
// scanline and commits the result for the compositor.
func (p *PPU) runSpriteEngine() {
	p.evaluateOAM()
	p.fetchSpriteTiles()
	p.commitSpriteScanline()
}
