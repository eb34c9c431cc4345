package ppu

import "testing"

func TestColorMathAdditiveHalve(t *testing.T) {
	p, _ := newTestPPU()
	p.colorMath.AddSubscreen = true
	p.colorMath.HalveResult = true
	p.colorMath.EnableLayers = 0x3F

	x := 0
	p.mainScreenBuffer[x] = joinBGR555(16, 0, 0)
	p.subScreenBuffer[x] = joinBGR555(0, 16, 0)
	p.subScreenFilled[x] = true
	p.rowPixelFlags[x] = flagFilled | flagAllowColorMath
	p.mainLayerBit[x] = 1 << BG1

	p.applyColorMath(0, 0)

	r, g, b := splitBGR555(p.mainScreenBuffer[x])
	if r != 8 || g != 8 || b != 0 {
		t.Errorf("color math result = (%d,%d,%d), want (8,8,0)", r, g, b)
	}
}

func TestColorMathSubtractSaturatesAtZero(t *testing.T) {
	p, _ := newTestPPU()
	p.colorMath.Subtract = true
	p.colorMath.AddSubscreen = true
	p.colorMath.EnableLayers = 0x3F

	x := 0
	p.mainScreenBuffer[x] = joinBGR555(2, 2, 2)
	p.subScreenBuffer[x] = joinBGR555(10, 10, 10)
	p.subScreenFilled[x] = true
	p.rowPixelFlags[x] = flagFilled | flagAllowColorMath
	p.mainLayerBit[x] = 1 << BG1

	p.applyColorMath(0, 0)

	r, g, b := splitBGR555(p.mainScreenBuffer[x])
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("subtract result = (%d,%d,%d), want (0,0,0) saturated", r, g, b)
	}
}

func TestColorMathPreventModeLeavesPixelUnchanged(t *testing.T) {
	p, _ := newTestPPU()
	p.colorMath.PreventMode = ClipAlways
	p.colorMath.AddSubscreen = true
	p.colorMath.EnableLayers = 0x3F

	x := 0
	orig := joinBGR555(9, 9, 9)
	p.mainScreenBuffer[x] = orig
	p.subScreenBuffer[x] = joinBGR555(1, 1, 1)
	p.subScreenFilled[x] = true
	p.rowPixelFlags[x] = flagFilled | flagAllowColorMath
	p.mainLayerBit[x] = 1 << BG1

	p.applyColorMath(0, 0)

	if p.mainScreenBuffer[x] != orig {
		t.Errorf("prevented pixel changed: got %#04x, want %#04x", p.mainScreenBuffer[x], orig)
	}
}

func TestColorMathEnableLayersGatesPerLayer(t *testing.T) {
	p, _ := newTestPPU()
	p.colorMath.AddSubscreen = true
	p.colorMath.EnableLayers = 1 << BG2 // only BG2 does color math

	x := 0
	orig := joinBGR555(9, 9, 9)
	p.mainScreenBuffer[x] = orig
	p.subScreenBuffer[x] = joinBGR555(5, 5, 5)
	p.subScreenFilled[x] = true
	p.rowPixelFlags[x] = flagFilled | flagAllowColorMath
	p.mainLayerBit[x] = 1 << BG1 // pixel came from BG1, not BG2

	p.applyColorMath(0, 0)

	if p.mainScreenBuffer[x] != orig {
		t.Errorf("BG1 pixel changed despite EnableLayers excluding it: got %#04x, want %#04x", p.mainScreenBuffer[x], orig)
	}

	x = 1
	p.mainScreenBuffer[x] = orig
	p.subScreenBuffer[x] = joinBGR555(5, 5, 5)
	p.subScreenFilled[x] = true
	p.rowPixelFlags[x] = flagFilled | flagAllowColorMath
	p.mainLayerBit[x] = 1 << BG2

	p.applyColorMath(1, 1)

	want := joinBGR555(14, 14, 14)
	if p.mainScreenBuffer[x] != want {
		t.Errorf("BG2 pixel with color math enabled = %#04x, want %#04x", p.mainScreenBuffer[x], want)
	}
}

func TestColorMathClipAlwaysForcesBlack(t *testing.T) {
	p, _ := newTestPPU()
	p.colorMath.ClipMode = ClipAlways

	x := 0
	p.mainScreenBuffer[x] = joinBGR555(31, 31, 31)
	p.rowPixelFlags[x] = flagFilled | flagAllowColorMath

	p.applyColorMath(0, 0)

	if p.mainScreenBuffer[x] != 0 {
		t.Errorf("clipped pixel = %#04x, want 0", p.mainScreenBuffer[x])
	}
}

func TestApplyBrightnessScalesChannels(t *testing.T) {
	c := joinBGR555(30, 30, 30)
	out := applyBrightness(c, 15)
	r, g, b := splitBGR555(out)
	if r != 30 || g != 30 || b != 30 {
		t.Errorf("full brightness changed channels: (%d,%d,%d)", r, g, b)
	}

	out = applyBrightness(c, 0)
	if out != 0 {
		t.Errorf("zero brightness = %#04x, want 0", out)
	}
}
