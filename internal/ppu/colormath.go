package ppu

// splitBGR555 decomposes a 15-bit BGR555 color into its three 5-bit
// channels (red, green, blue order, matching the register layout).
func splitBGR555(c uint16) (r, g, b uint8) {
	r = uint8(c & 0x1F)
	g = uint8((c >> 5) & 0x1F)
	b = uint8((c >> 10) & 0x1F)
	return
}

func joinBGR555(r, g, b uint8) uint16 {
	return uint16(r&0x1F) | uint16(g&0x1F)<<5 | uint16(b&0x1F)<<10
}

func saturate5(v int16) uint8 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint8(v)
}

// applyColorMath runs the per-pixel color-math steps (clip, prevent,
// operand select, add/subtract with saturation, halve) over one scanline
// batch, after every layer has written its main/sub pixel. The last step,
// screen brightness, is applied afterwards by compositeBatch through
// applyBrightness.
func (p *PPU) applyColorMath(drawStartX, drawEndX int) {
	cm := &p.colorMath
	fr, fg, fb := splitBGR555(cm.FixedColor)

	for x := drawStartX; x <= drawEndX && x < ScreenWidth; x++ {
		if p.rowPixelFlags[x]&flagFilled == 0 {
			continue
		}

		insideWindow := p.colorMathWindowInside(x)

		clipped := matchesClipMode(cm.ClipMode, insideWindow)
		if clipped {
			p.mainScreenBuffer[x] = 0
			continue
		}

		if p.rowPixelFlags[x]&flagAllowColorMath == 0 {
			continue
		}
		if cm.EnableLayers&p.mainLayerBit[x] == 0 {
			continue
		}
		if matchesClipMode(cm.PreventMode, insideWindow) {
			continue
		}

		mr, mg, mb := splitBGR555(p.mainScreenBuffer[x])

		var br, bg, bb uint8
		halveDisabled := false
		if cm.AddSubscreen && p.subScreenFilled[x] {
			br, bg, bb = splitBGR555(p.subScreenBuffer[x])
		} else {
			br, bg, bb = fr, fg, fb
			halveDisabled = true
		}

		var rr, rg, rb int16
		if cm.Subtract {
			rr = int16(mr) - int16(br)
			rg = int16(mg) - int16(bg)
			rb = int16(mb) - int16(bb)
		} else {
			rr = int16(mr) + int16(br)
			rg = int16(mg) + int16(bg)
			rb = int16(mb) + int16(bb)
		}

		cr, cg, cb := saturate5(rr), saturate5(rg), saturate5(rb)
		if cm.HalveResult && !halveDisabled {
			cr, cg, cb = cr/2, cg/2, cb/2
		}

		p.mainScreenBuffer[x] = joinBGR555(cr, cg, cb)
	}
}

// matchesClipMode reports whether the clip/prevent mode applies given
// whether the pixel is inside the color window.
func matchesClipMode(mode ColorMathClipMode, insideWindow bool) bool {
	switch mode {
	case ClipNever:
		return false
	case ClipOutsideWindow:
		return !insideWindow
	case ClipInsideWindow:
		return insideWindow
	default: // ClipAlways
		return true
	}
}

// applyBrightness scales one BGR555 color's channels by the current
// screen brightness (0..15 over 15).
func applyBrightness(c uint16, brightness uint8) uint16 {
	r, g, b := splitBGR555(c)
	r = uint8(uint16(r) * uint16(brightness) / 15)
	g = uint8(uint16(g) * uint16(brightness) / 15)
	b = uint8(uint16(b) * uint16(brightness) / 15)
	return joinBGR555(r, g, b)
}
