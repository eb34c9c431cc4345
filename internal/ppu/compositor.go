package ppu

// layerEntry is one step in a mode's back-to-front priority ordering:
// either a background layer at a given tile-priority level, or the
// sprite layer restricted to one OAM priority (0..3).
type layerEntry struct {
	isSprite    bool
	bg          int
	highTiles   bool
	spritePrio  uint8
	isBackdrop  bool
}

// priorityOrder returns a mode's back-to-front layer ordering. Sprite
// priorities S0..S3 are interleaved with the BG layers per the SNES
// PPU's documented per-mode composite order. compositeBatch walks the
// list from its end (front-most first), and the first enabled, opaque
// layer to reach a pixel fills it.
func (p *PPU) priorityOrder() []layerEntry {
	bg := func(i int, hi bool) layerEntry { return layerEntry{bg: i, highTiles: hi} }
	sp := func(n uint8) layerEntry { return layerEntry{isSprite: true, spritePrio: n} }
	backdrop := layerEntry{isBackdrop: true}

	switch p.bgMode {
	case 0:
		return []layerEntry{
			backdrop,
			bg(2, false), bg(3, false), sp(0),
			bg(2, true), bg(3, true), sp(1),
			bg(0, false), bg(1, false), sp(2),
			bg(0, true), bg(1, true), sp(3),
		}
	case 1:
		if p.bg3Priority {
			return []layerEntry{
				backdrop,
				bg(2, false), sp(0),
				bg(1, false), bg(0, false), sp(1),
				sp(2),
				bg(1, true), bg(0, true), sp(3),
				bg(2, true),
			}
		}
		return []layerEntry{
			backdrop,
			sp(0),
			bg(2, false), bg(1, false), bg(0, false), sp(1),
			sp(2),
			bg(1, true), bg(0, true), sp(3),
			bg(2, true),
		}
	case 2, 3, 4:
		return []layerEntry{
			backdrop,
			bg(1, false), sp(0),
			bg(0, false), sp(1),
			bg(1, true), sp(2),
			bg(0, true), sp(3),
		}
	case 5, 6:
		return []layerEntry{
			backdrop,
			bg(1, false), sp(0),
			bg(0, false), sp(1),
			bg(1, true), sp(2),
			bg(0, true), sp(3),
		}
	case 7:
		return []layerEntry{
			backdrop,
			sp(0), bg(0, false), sp(1), sp(2), bg(0, true), sp(3),
		}
	default:
		return []layerEntry{backdrop}
	}
}

// tileColorAt extracts one pixel's color index from a layer's
// precomputed CHR planes.
func tileColorAt(t *TileFetch, bpp int, x uint8, flipX bool) uint8 {
	col := x
	if flipX {
		col = 7 - col
	}
	bit := 7 - col
	var c uint8
	planes := bpp / 2
	if planes < 1 {
		planes = 1
	}
	for pl := 0; pl < planes && pl < 4; pl++ {
		if t.ChrData[pl]&(1<<bit) != 0 {
			c |= 1 << uint(pl*2)
		}
		if t.ChrData[pl]&(1<<(bit+8)) != 0 {
			c |= 1 << uint(pl*2+1)
		}
	}
	return c
}

// renderBackgroundPixel samples layer `layer` at screen column x,
// applying mosaic hold, and returns (colorIndex, paletteNumber,
// highPriority, opaque).
func (p *PPU) renderBackgroundPixel(layer int, x int) (color, palette uint8, highPriority, opaque bool) {
	bg := &p.bg[layer]
	bpp := p.bitsPerPixelForLayer(layer)

	effX := x
	if p.mosaicEnable[layer] {
		size := int(p.mosaicSize) + 1
		effX = x - x%size
	}

	// Tiles[0] holds tilemap column HScroll>>3, so only the fine scroll
	// offsets the fetch column.
	colTile := (effX + int(bg.HScroll&7)) >> 3
	if colTile < 0 || colTile >= 33 {
		colTile = ((colTile % 33) + 33) % 33
	}
	t := &bg.Tiles[colTile]
	flipX := t.TilemapData&0x4000 != 0
	xInTile := uint8((effX + int(bg.HScroll)) & 7)

	c := tileColorAt(t, bpp, xInTile, flipX)
	if c == 0 {
		return 0, 0, false, false
	}
	pal := uint8((t.TilemapData >> 10) & 0x07)
	highPriority = t.TilemapData&0x2000 != 0
	return c, pal, highPriority, true
}

// paletteRGB resolves a layer pixel's color index + palette number to a
// BGR555 color via CGRAM, or direct-color synthesis for 8bpp layers in
// direct-color mode.
func (p *PPU) paletteRGB(layer int, color, palette uint8, bpp int) uint16 {
	if bpp == 8 && p.colorMath.DirectColor {
		r := (color & 0x07) << 2
		g := ((color >> 3) & 0x07) << 2
		b := ((color >> 6) & 0x03) << 3
		return joinBGR555(r, g, b)
	}
	base := uint16(palette) * (1 << uint(bpp))
	if bpp == 8 {
		base = 0
	}
	idx := base + uint16(color)
	return p.cgram[idx&0xFF]
}

// compositeBatch renders and composites dots [drawStartX, drawEndX] of
// the current scanline into the main/sub screen buffers, then applies
// color math.
func (p *PPU) compositeBatch(drawStartX, drawEndX int) {
	if drawStartX > drawEndX {
		return
	}
	if p.forcedBlank {
		for x := drawStartX; x <= drawEndX && x < ScreenWidth; x++ {
			p.emitPixel(x, 0)
		}
		return
	}
	for x := drawStartX; x <= drawEndX && x < ScreenWidth; x++ {
		p.rowPixelFlags[x] = 0
		p.subScreenFilled[x] = false
	}

	var m7Samples []mode7Sample
	if p.bgMode == 7 {
		m7Samples = p.mode7Row(p.timing.Scanline, drawStartX, drawEndX)
	}

	order := p.priorityOrder()
	for i := len(order) - 1; i >= 0; i-- {
		entry := order[i]
		for x := drawStartX; x <= drawEndX && x < ScreenWidth; x++ {
			var colorIdx, palette uint8
			var opaque bool
			var rgb uint16
			var mainMaskLayer, subMaskLayer int

			switch {
			case entry.isBackdrop:
				rgb = p.cgram[0]
				opaque = true
				mainMaskLayer, subMaskLayer = -1, -1

			case entry.isSprite:
				c := p.spriteColors[x]
				if c == 0 || p.spritePriority[x] != entry.spritePrio {
					continue
				}
				colorIdx = c
				palette = p.spritePalette[x]
				rgb = p.spriteRGB(colorIdx, palette)
				opaque = true
				mainMaskLayer, subMaskLayer = LayerSprites, LayerSprites

			default:
				if p.bgMode == 7 {
					if entry.bg != 0 {
						continue
					}
					s := m7Samples[x-drawStartX]
					if s.color == 0 {
						continue
					}
					colorIdx = s.color
					rgb = p.paletteRGB(0, colorIdx, 0, 8)
					opaque = true
				} else {
					c, pal, hi, ok := p.renderBackgroundPixel(entry.bg, x)
					if !ok || hi != entry.highTiles {
						continue
					}
					colorIdx = c
					palette = pal
					rgb = p.paletteRGB(entry.bg, colorIdx, palette, p.bitsPerPixelForLayer(entry.bg))
					opaque = true
				}
				mainMaskLayer, subMaskLayer = entry.bg, entry.bg
			}

			if !opaque {
				continue
			}

			mainEnabled := entry.isBackdrop || p.mainScreenEnable&layerBit(mainMaskLayer, entry.isSprite) != 0
			subEnabled := entry.isBackdrop || p.subScreenEnable&layerBit(subMaskLayer, entry.isSprite) != 0

			if mainEnabled && p.rowPixelFlags[x]&flagFilled == 0 {
				if mainMaskLayer < 0 || !p.layerMasked(0, mainMaskLayer, x) {
					p.mainScreenBuffer[x] = rgb
					p.mainLayerBit[x] = colorMathLayerBit(entry)
					p.rowPixelFlags[x] |= flagFilled | flagAllowColorMath
				}
			}
			if subEnabled && !p.subScreenFilled[x] {
				if subMaskLayer < 0 || !p.layerMasked(1, subMaskLayer, x) {
					p.subScreenBuffer[x] = rgb
					p.subScreenFilled[x] = true
				}
			}
		}
	}

	p.applyColorMath(drawStartX, drawEndX)

	for x := drawStartX; x <= drawEndX && x < ScreenWidth; x++ {
		c := applyBrightness(p.mainScreenBuffer[x], p.brightness)
		p.emitPixel(x, c)
	}
}

func layerBit(layer int, isSprite bool) uint8 {
	if isSprite {
		return 1 << uint(LayerSprites)
	}
	if layer < 0 {
		return 0
	}
	return 1 << uint(layer)
}

// colorMathLayerBit returns an entry's bit position in CGADSUB's
// EnableLayers mask: BG1-4 in bits 0-3, sprites in bit 4, backdrop in
// bit 5.
func colorMathLayerBit(entry layerEntry) uint8 {
	switch {
	case entry.isBackdrop:
		return 1 << 5
	case entry.isSprite:
		return 1 << uint(LayerSprites)
	default:
		return 1 << uint(entry.bg)
	}
}

// spriteRGB resolves a sprite pixel's color index + palette to BGR555.
// Sprite palettes occupy CGRAM entries 128..255, 16 colors each.
func (p *PPU) spriteRGB(color, palette uint8) uint16 {
	idx := 128 + uint16(palette)*16 + uint16(color)
	return p.cgram[idx&0xFF]
}

// emitPixel writes one composited, brightness-applied pixel into the
// back buffer, duplicating columns/lines per the hi-res/interlace
// emission rule: scanline y goes to output row 2y (2y+1 on odd interlaced
// fields), and without interlace it is also copied into row 2y+1.
func (p *PPU) emitPixel(x int, color uint16) {
	y := int(p.timing.Scanline)
	outY := y * 2
	if p.timing.InterlaceScreen && p.timing.OddFrame {
		outY++
	}
	if y < 0 || outY >= OutputMaxHeight {
		return
	}
	row := outY * OutputWidth

	if p.timing.HiRes {
		sub := applyBrightness(p.subScreenBuffer[x], p.brightness)
		p.backBuffer[row+x*2] = sub
		p.backBuffer[row+x*2+1] = color
	} else {
		p.backBuffer[row+x*2] = color
		p.backBuffer[row+x*2+1] = color
	}

	if !p.timing.InterlaceScreen {
		nextRow := row + OutputWidth
		if outY+1 < OutputMaxHeight {
			p.backBuffer[nextRow+x*2] = p.backBuffer[row+x*2]
			p.backBuffer[nextRow+x*2+1] = p.backBuffer[row+x*2+1]
		}
	}
}
