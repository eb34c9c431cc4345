package ppu

// windowInside reports whether x falls within a window's [Left, Right]
// range (both inclusive).
func windowInside(w Window, x int) bool {
	return x >= int(w.Left) && x <= int(w.Right)
}

// combineLogic merges two windows' "inside" bits with a layer's logic
// selector.
func combineLogic(logic WindowLogic, a, b bool) bool {
	switch logic {
	case LogicAND:
		return a && b
	case LogicXOR:
		return a != b
	case LogicXNOR:
		return a == b
	default: // LogicOR
		return a || b
	}
}

// layerMasked evaluates whether a layer's contribution is masked out by
// the window evaluator at column x, for either the main (set=0) or sub
// (set=1) screen.
func (p *PPU) layerMasked(set int, layer, x int) bool {
	if layer != LayerColorMath {
		screenMask := p.mainWindowMask
		if set == 1 {
			screenMask = p.subWindowMask
		}
		if screenMask&(1<<uint(layer)) == 0 {
			return false
		}
	}

	active0 := p.window.ActiveLayers[0][layer]
	active1 := p.window.ActiveLayers[1][layer]
	if !active0 && !active1 {
		return false
	}

	inside0 := windowInside(p.window.Windows[0], x)
	if p.window.InvertedLayers[0][layer] {
		inside0 = !inside0
	}
	inside1 := windowInside(p.window.Windows[1], x)
	if p.window.InvertedLayers[1][layer] {
		inside1 = !inside1
	}

	var masked bool
	switch {
	case active0 && active1:
		masked = combineLogic(p.window.Logic[layer], inside0, inside1)
	case active0:
		masked = inside0
	default:
		masked = inside1
	}

	return masked
}

// colorMathWindowInside evaluates the dedicated color-math window
// (layer index LayerColorMath) at column x.
func (p *PPU) colorMathWindowInside(x int) bool {
	return p.layerMasked(0, LayerColorMath, x)
}
