package ppu

import "testing"

func TestWindowInsideRange(t *testing.T) {
	w := Window{Left: 10, Right: 20}
	if !windowInside(w, 10) || !windowInside(w, 20) {
		t.Errorf("boundary columns should be inside [10,20]")
	}
	if windowInside(w, 9) || windowInside(w, 21) {
		t.Errorf("columns outside [10,20] reported inside")
	}
}

func TestCombineLogicModes(t *testing.T) {
	cases := []struct {
		logic    WindowLogic
		a, b     bool
		expected bool
	}{
		{LogicOR, false, false, false},
		{LogicOR, true, false, true},
		{LogicAND, true, false, false},
		{LogicAND, true, true, true},
		{LogicXOR, true, true, false},
		{LogicXOR, true, false, true},
		{LogicXNOR, true, true, true},
		{LogicXNOR, true, false, false},
	}
	for _, c := range cases {
		if got := combineLogic(c.logic, c.a, c.b); got != c.expected {
			t.Errorf("combineLogic(%v,%v,%v) = %v, want %v", c.logic, c.a, c.b, got, c.expected)
		}
	}
}

func TestLayerMaskedSingleWindowIgnoresSelector(t *testing.T) {
	p, _ := newTestPPU()
	p.mainWindowMask = 1 << BG1
	p.window.Windows[0] = Window{Left: 0, Right: 10}
	p.window.ActiveLayers[0][BG1] = true
	// AND with window 2 (at [0,0]) would leave column 5 unmasked if the
	// selector were applied with only one window active.
	p.window.Logic[BG1] = LogicAND

	if !p.layerMasked(0, BG1, 5) {
		t.Errorf("column inside the single active window should be masked")
	}
	if p.layerMasked(0, BG1, 50) {
		t.Errorf("column outside the single active window should not be masked")
	}
}

func TestLayerMaskedNoWindowsActive(t *testing.T) {
	p, _ := newTestPPU()
	p.mainWindowMask = 1 << BG1
	if p.layerMasked(0, BG1, 5) {
		t.Errorf("no window active should never mask")
	}
}

func TestLayerMaskedWindowMaskGatesPerScreen(t *testing.T) {
	p, _ := newTestPPU()
	p.window.Windows[0] = Window{Left: 0, Right: 10}
	p.window.ActiveLayers[0][BG1] = true

	// TMW/TSW both leave BG1 ungated: windowing never applies, even
	// though the window geometry and per-layer enable are both active.
	p.mainWindowMask = 0
	p.subWindowMask = 0
	if p.layerMasked(0, BG1, 5) {
		t.Errorf("main screen should ignore windowing when mainWindowMask excludes the layer")
	}
	if p.layerMasked(1, BG1, 5) {
		t.Errorf("sub screen should ignore windowing when subWindowMask excludes the layer")
	}

	// Enabling only the main screen's TMW bit lets windowing apply
	// there while the sub screen stays unaffected.
	p.mainWindowMask = 1 << BG1
	if !p.layerMasked(0, BG1, 5) {
		t.Errorf("main screen should be masked once mainWindowMask includes the layer")
	}
	if p.layerMasked(1, BG1, 5) {
		t.Errorf("sub screen should remain unmasked while subWindowMask excludes the layer")
	}
}

func TestLayerMaskedColorMathIgnoresWindowMask(t *testing.T) {
	p, _ := newTestPPU()
	p.mainWindowMask = 0
	p.subWindowMask = 0
	p.window.Windows[0] = Window{Left: 0, Right: 10}
	p.window.ActiveLayers[0][LayerColorMath] = true

	// CGWSEL's color-math window has no TMW/TSW bit (both registers are
	// 5-bit, covering BG1-4 and sprites only); layer LayerColorMath must
	// not be gated by either window-mask register.
	if !p.layerMasked(0, LayerColorMath, 5) {
		t.Errorf("color math window should be evaluated regardless of TMW/TSW")
	}
}
