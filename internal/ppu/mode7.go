package ppu

// clip13 sign-extends a 13-bit quantity stored in a wider int, following
// the affine renderer's truncation rule: values with bit 13 set extend
// the sign through the top bits instead of simply masking.
func clip13(v int32) int32 {
	if v&0x2000 != 0 {
		return v | ^int32(0x3FF)
	}
	return v & 0x3FF
}

// mode7Sample holds one affine-sampled pixel: its color index (0 means
// transparent/out-of-map) and, when ExtBg is enabled, the synthesized
// BG2 bit.
type mode7Sample struct {
	color uint8
	extBg bool
}

// mode7Row precomputes the per-x affine sample for an entire scanline
// batch. It walks from drawStartX forwards, or from drawEndX backwards
// when horizontal mirroring is set; either way samples[i] is the pixel at
// drawStartX+i.
func (p *PPU) mode7Row(y uint16, drawStartX, drawEndX int) []mode7Sample {
	m := &p.mode7
	row := p.effectiveMode7Y(y)

	hScroll := clip13(int32(m.HScroll) - int32(m.CenterX))
	vScroll := clip13(int32(m.VScroll) - int32(m.CenterY))

	// Each product is masked with ~63 individually before summing: the
	// low 6 bits of A*hScroll, B*row and B*vScroll do not carry into
	// each other the way they would if the sum were masked once.
	baseX := (int32(m.A)*hScroll)&^63 + (int32(m.B)*int32(row))&^63 + (int32(m.B)*vScroll)&^63
	baseX += int32(m.CenterX) << 8
	baseY := (int32(m.C)*hScroll)&^63 + (int32(m.D)*int32(row))&^63 + (int32(m.D)*vScroll)&^63
	baseY += int32(m.CenterY) << 8

	stepX := int32(m.A)
	stepY := int32(m.C)
	if m.HorizontalMirroring {
		stepX = -stepX
		stepY = -stepY
	}

	n := drawEndX - drawStartX + 1
	samples := make([]mode7Sample, n)

	curX := baseX
	curY := baseY
	if m.HorizontalMirroring {
		// Start iteration at drawEndX and walk backwards.
		curX = baseX + stepX*int32(drawEndX)
		curY = baseY + stepY*int32(drawEndX)
	} else {
		curX = baseX + stepX*int32(drawStartX)
		curY = baseY + stepY*int32(drawStartX)
	}

	for i := 0; i < n; i++ {
		xOff := curX >> 8
		yOff := curY >> 8

		var inMap bool
		if m.LargeMap {
			inMap = xOff >= 0 && xOff < 1024 && yOff >= 0 && yOff < 1024
		} else {
			inMap = xOff >= 0 && xOff < 128 && yOff >= 0 && yOff < 128
		}

		var sample mode7Sample
		if inMap || m.FillWithTile0 {
			mapX := xOff & 1023
			mapY := yOff & 1023
			if !inMap {
				mapX, mapY = 0, 0
			}
			tmWord := p.readVramWord(uint16(((mapY &^ 7) << 4) | (mapX >> 3)))
			tileIndex := tmWord & 0xFF
			chrWord := p.readVramWord(tileIndex*64 + uint16((mapY&7)*8+(mapX&7)))
			color := uint8(chrWord >> 8)
			sample.color = color
			sample.extBg = color&0x80 != 0
		}

		var idx int
		if m.HorizontalMirroring {
			idx = drawEndX - (drawStartX + i)
		} else {
			idx = i
		}
		samples[idx] = sample

		curX += stepX
		curY += stepY
	}

	return samples
}

func (p *PPU) effectiveMode7Y(y uint16) uint16 {
	if p.mode7.VerticalMirroring {
		return VisibleHeight - 1 - y
	}
	if p.mosaicEnable[0] {
		size := uint16(p.mosaicSize) + 1
		return y - y%size
	}
	return y
}
