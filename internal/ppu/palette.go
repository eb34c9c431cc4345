package ppu

// BGR555ToRGB888 expands a 15-bit BGR555 color (5 bits per channel,
// blue-green-red bit order) to 8-bit-per-channel RGB, for presentation
// layers that don't accept BGR555 directly.
func BGR555ToRGB888(c uint16) (r, g, b uint8) {
	r5, g5, b5 := splitBGR555(c)
	r = expand5to8(r5)
	g = expand5to8(g5)
	b = expand5to8(b5)
	return
}

func expand5to8(v uint8) uint8 {
	return (v << 3) | (v >> 2)
}

// FrameBufferRGBA8 converts the PPU's most recent BGR555 frame buffer
// into a packed RGBA8888 slice, suitable for handing to an SDL texture
// or similar presentation surface.
func (p *PPU) FrameBufferRGBA8(dst []uint8) {
	fb := p.FrameBuffer()
	for i, c := range fb {
		r, g, b := BGR555ToRGB888(c)
		o := i * 4
		if o+3 >= len(dst) {
			break
		}
		dst[o] = r
		dst[o+1] = g
		dst[o+2] = b
		dst[o+3] = 0xFF
	}
}
