package ppu

// bitsPerPixelForLayer returns the color depth of a background layer
// under the current BG mode. Mode 7's single plane is handled by the
// affine renderer, not this table.
func (p *PPU) bitsPerPixelForLayer(layer int) int {
	switch p.bgMode {
	case 0:
		return 2
	case 1:
		if layer == 2 {
			return 2
		}
		return 4
	case 2:
		return 4
	case 3:
		if layer == 0 {
			return 8
		}
		return 4
	case 4:
		if layer == 0 {
			return 8
		}
		return 2
	case 5:
		if layer == 0 {
			return 4
		}
		return 2
	case 6:
		return 4
	default:
		return 0
	}
}

// activeLayerCount reports how many BG layers carry pixel data under the
// current mode (Mode 7 is handled separately and reports 0 here).
func (p *PPU) activeLayerCount() int {
	switch p.bgMode {
	case 0:
		return 4
	case 1:
		return 3
	case 2, 3, 4, 5, 6:
		return 2
	default:
		return 0
	}
}

// isHiResMode reports whether BG modes 5/6 hi-res tile addressing applies.
func (p *PPU) isHiResMode() bool {
	return p.bgMode == 5 || p.bgMode == 6
}

// usesOffsetPerTile reports whether BG3 supplies per-column H/V offset
// bytes for the given mode (modes 2, 4, 6).
func (p *PPU) usesOffsetPerTile() bool {
	return p.bgMode == 2 || p.bgMode == 4 || p.bgMode == 6
}

// effectiveY computes the fetch row for a layer: the scanline, doubled
// with the odd-field toggle under interlace for hi-res modes, then held
// across a mosaic block.
func (p *PPU) effectiveY(layer int) uint16 {
	y := p.timing.Scanline
	if p.isHiResMode() && p.timing.InterlaceScreen {
		y *= 2
		if p.timing.OddFrame {
			y++
		}
	}
	if p.mosaicEnable[layer] {
		size := uint16(p.mosaicSize) + 1
		y -= y % size
	}
	return y
}

// tileRowColumn derives the tilemap row/column for a non-Mode-7 layer,
// folding in the DoubleWidth/DoubleHeight submap selection.
func (p *PPU) tileRowColumn(layer int, col int) (row, column uint16, submap uint16) {
	bg := &p.bg[layer]
	large := p.largeTile[layer]

	y := p.effectiveY(layer) + bg.VScroll
	x := uint16(col)*8 + bg.HScroll

	var rowShift, colShift uint = 3, 3
	if large {
		rowShift = 4
	}
	row = (y >> rowShift) & 0x1F
	column = (x >> colShift) & 0x1F

	var sub uint16
	if bg.DoubleWidth && (x>>(colShift+5))&1 != 0 {
		sub |= 1
	}
	if bg.DoubleHeight && (y>>(rowShift+5))&1 != 0 {
		sub |= 2
	}
	return row, column, sub
}

// tilemapWordAddress resolves the VRAM word address of one tilemap
// entry, selecting among the up to 4 submaps a layer's DoubleWidth/
// DoubleHeight flags expose.
func (p *PPU) tilemapWordAddress(layer int, row, column, submap uint16) uint16 {
	bg := &p.bg[layer]
	base := bg.TilemapAddress
	switch submap {
	case 1:
		base += 0x400
	case 2:
		base += 0x800
	case 3:
		base += 0xC00
	}
	return base + row*32 + column
}

// chrWordAddress resolves the VRAM word address of a CHR plane pair for
// a tile, applying large-tile half selection and mirror inversion.
func (p *PPU) chrWordAddress(layer int, tileIndex uint16, flipX, flipY bool, xHalf, yHalf bool, bpp int) uint16 {
	idx := tileIndex
	if p.largeTile[layer] {
		if xHalf != flipX {
			idx++
		}
		if yHalf != flipY {
			idx += 16
		}
	}
	wordsPerTile := uint16(bpp) * 4 // 8 rows x bpp bits = 8*bpp bytes = 4*bpp words per 8x8 tile
	return p.bg[layer].ChrAddress + idx*wordsPerTile
}

// fetchBackgroundRow populates LayerData[layer].Tiles for the whole
// 33-column fetch window ahead of compositing the scanline. It is the
// per-scanline equivalent of the per-dot schedules described for each
// BG mode: rather than modeling the exact cycle the real hardware
// issues each half of the fetch on, the columns are resolved in mode
// order and cached, since nothing downstream observes the fetch at
// finer grain than "ready before its compositing batch".
func (p *PPU) fetchBackgroundRow(layer int) {
	if layer >= p.activeLayerCount() {
		return
	}
	bg := &p.bg[layer]
	bpp := p.bitsPerPixelForLayer(layer)
	bg.HasPriorityTiles = false

	for col := 0; col < 33; col++ {
		row, column, submap := p.tileRowColumn(layer, col)
		tmAddr := p.tilemapWordAddress(layer, row, column, submap)
		word := p.readVramWord(tmAddr)

		tileIndex := word & 0x03FF
		flipX := word&0x4000 != 0
		flipY := word&0x8000 != 0
		if word&0x2000 != 0 {
			bg.HasPriorityTiles = true
		}

		chrBase := p.chrWordAddress(layer, tileIndex, flipX, flipY, false, false, bpp)

		var planes [4]uint16
		rowInTile := p.effectiveY(layer) & 7
		if flipY {
			rowInTile = 7 - rowInTile
		}
		planesCount := bpp / 2
		if planesCount < 1 {
			planesCount = 1
		}
		for pi := 0; pi < planesCount && pi < 4; pi++ {
			planes[pi] = p.readVramWord(chrBase + uint16(pi)*8 + rowInTile)
		}

		bg.Tiles[col] = TileFetch{
			TilemapData: word,
			ChrData:     planes,
			VScroll:     bg.VScroll,
		}
	}

	if p.usesOffsetPerTile() && layer < 2 {
		p.applyOffsetPerTile(layer)
	}
}

// applyOffsetPerTile overlays BG3's per-column offset words onto BG1/BG2's
// already-fetched per-tile VScroll, for modes 2/4/6. Only vertical
// offsets are written; horizontal offsets are not applied. It reads BG3's
// Tiles as last fetched (fetchAllBackgrounds does not fetch BG3 in these
// modes), and the compositor does not read TileFetch.VScroll.
func (p *PPU) applyOffsetPerTile(layer int) {
	bg3 := &p.bg[2]
	enableBit := uint16(0x2000)
	if layer == 1 {
		enableBit = 0x4000
	}
	for col := 0; col < 33; col++ {
		optH := bg3.Tiles[col].TilemapData
		if optH&0x8000 == 0 {
			continue
		}
		if optH&enableBit == 0 {
			continue
		}
		if p.bgMode == 4 {
			if optH&0x8000 != 0 && optH&0x4000 == 0 {
				p.bg[layer].Tiles[col].VScroll = optH & 0x3FF
			} else {
				// H-offset entries are not applied.
			}
		} else {
			p.bg[layer].Tiles[col].VScroll = optH & 0x3FF
		}
	}
}

// fetchAllBackgrounds runs fetchBackgroundRow for every layer active in
// the current BG mode, called once per scanline before compositing.
func (p *PPU) fetchAllBackgrounds() {
	if p.bgMode == 7 {
		return
	}
	n := p.activeLayerCount()
	for layer := 0; layer < n; layer++ {
		p.fetchBackgroundRow(layer)
	}
}
