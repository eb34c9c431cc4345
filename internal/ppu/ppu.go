// Package ppu implements the SNES Picture Processing Unit: register file,
// per-dot background fetcher, two-phase sprite engine, window evaluator,
// Mode-7 affine renderer, color math and the frame timing controller that
// drives all of it.
//
// The PPU reaches its host only through a BusHost capability, so the
// memory manager that actually owns the master clock, NMI line and video
// presentation can be swapped (or stubbed in tests) without the PPU
// depending on a concrete memory-manager type.
package ppu

import "github.com/golang/glog"

// Screen dimensions for the non-hi-res case; the compositor emits a
// 512-wide buffer and duplicates columns/lines for low-res and
// non-interlaced frames respectively.
const (
	ScreenWidth     = 256
	OutputWidth     = 512
	VisibleHeight   = 224
	OutputMaxHeight = 478
)

// Fixed-size memories, hardware-mandated and exclusively owned by the PPU.
const (
	VRAMWords  = 16 * 1024 // 32 KiB addressed as 16K words of 16 bits
	CGRAMSize  = 256       // 256 entries of BGR555
	OAMLowSize = 512       // 128 sprites x 4 bytes
	OAMHiSize  = 32        // 2 bits per sprite: X sign + size toggle
)

// BusHost is the set of capabilities the PPU needs from its memory-manager
// host: master/H clock access, open-bus observation, and the two
// notifications the frame timing controller raises. No back-reference to
// a concrete memory manager type is retained.
type BusHost interface {
	GetHClock() uint16
	GetMasterClock() uint64
	OpenBus() uint8
	NotifyFrame()
	NotifyNMI(active bool)
}

// Layer indices for the 4 background layers plus the window/color-math
// "layer 5" used by window logic.
const (
	BG1 = iota
	BG2
	BG3
	BG4
	LayerSprites
	LayerColorMath
	numWindowLayers
)

// BGLayer holds the programmer-visible configuration and per-scanline
// derived state for one of the 4 background layers.
type BGLayer struct {
	TilemapAddress uint16 // VRAM word offset, 10-bit
	ChrAddress     uint16 // VRAM word offset, 12-bit
	HScroll        uint16 // 10-bit
	VScroll        uint16 // 10-bit
	LargeTiles     bool
	DoubleWidth    bool
	DoubleHeight   bool

	// Tiles is the 33-column ring of per-scanline fetch results, indexed
	// by fetch column.
	Tiles            [33]TileFetch
	HasPriorityTiles bool
}

// TileFetch is the fetched state for one tilemap column of one layer.
type TileFetch struct {
	TilemapData uint16
	ChrData     [4]uint16
	VScroll     uint16
}

// Mode7State holds the affine background's matrix, center and flags.
type Mode7State struct {
	A, B, C, D int16 // signed 16-bit matrix
	CenterX    int16 // signed 13-bit
	CenterY    int16
	HScroll    int16
	VScroll    int16

	HorizontalMirroring bool
	VerticalMirroring   bool
	LargeMap            bool
	FillWithTile0       bool
	ExtBgEnabled        bool

	latch uint8 // shared byte latch for two-byte writes
}

// ColorMathClipMode selects when the compositor clips or prevents color
// math.
type ColorMathClipMode int

const (
	ClipNever ColorMathClipMode = iota
	ClipOutsideWindow
	ClipInsideWindow
	ClipAlways
)

// WindowLogic combines two windows' "inside" bits for one layer.
type WindowLogic int

const (
	LogicOR WindowLogic = iota
	LogicAND
	LogicXOR
	LogicXNOR
)

// Window is one of the two rectangular masks.
type Window struct {
	Left, Right uint8 // 8-bit
}

// WindowConfig holds the shared per-layer enable/invert/logic state that
// gates both windows against the 6 maskable layers (BG1..4, sprites,
// color-math).
type WindowConfig struct {
	Windows        [2]Window
	ActiveLayers   [2][numWindowLayers]bool
	InvertedLayers [2][numWindowLayers]bool
	Logic          [numWindowLayers]WindowLogic
}

// ColorMathState holds the programmer-visible color-math configuration.
type ColorMathState struct {
	EnableLayers      uint8 // 6-bit mask over BG1..4, sprites, backdrop
	Subtract          bool
	HalveResult       bool
	AddSubscreen      bool
	ClipMode          ColorMathClipMode
	PreventMode       ColorMathClipMode
	FixedColor        uint16 // 15-bit
	DirectColor       bool
	ScreenBrightness  uint8 // 0..15
}

// FrameTiming holds the per-scanline/per-dot state machine driving NMI,
// vblank boundaries and frame publication.
type FrameTiming struct {
	Scanline    uint16
	Dot         uint16
	OddFrame    bool
	ForcedBlank bool
	Overscan    bool

	InterlaceScreen bool
	InterlaceObject bool
	HiRes           bool

	NmiScanline             uint16
	VblankStartScanline     uint16
	VblankEndScanline       uint16
	BaseVblankEndScanline   uint16
	AdjustedVblankEndScanline uint16

	FrameCounter uint64

	// Overclock: non-negative counts extending vblank before/after NMI.
	ExtraScanlinesBeforeNmi uint16
	ExtraScanlinesAfterNmi  uint16

	nmiFlag     bool
	palMode     bool
}

// SpriteConfig mirrors OBSEL and OAMADDR-related programmer state.
type SpriteConfig struct {
	ObjMode        uint8 // bits 7-5 of OBSEL
	BaseAddress    uint16
	GapAddress     uint16
	OamAddress     uint16 // 9-bit programmer-visible address
	PriorityRotate bool
}

// PPU is the complete SNES picture processing unit.
type PPU struct {
	host BusHost

	// ------------------------------------------------------------------
	// Fixed memories
	// ------------------------------------------------------------------
	vram  [VRAMWords]uint16
	cgram [CGRAMSize]uint16
	oamLo [OAMLowSize]uint8
	oamHi [OAMHiSize]uint8

	// ------------------------------------------------------------------
	// Register-visible state
	// ------------------------------------------------------------------
	brightness   uint8
	forcedBlank  bool
	bgMode       uint8
	bg3Priority  bool
	largeTile    [4]bool
	mosaicEnable [4]bool
	mosaicSize   uint8 // size-1, 0..15

	bg      [4]BGLayer
	mode7   Mode7State
	window  WindowConfig
	colorMath ColorMathState
	timing  FrameTiming
	sprite  SpriteConfig

	vmain struct {
		increment     uint16
		remapMode     uint8
		incrementHigh bool
	}
	vramAddress uint16

	mainScreenEnable uint8 // TM, 5 bits
	subScreenEnable  uint8 // TS, 5 bits
	mainWindowMask   uint8 // TMW
	subWindowMask    uint8 // TSW

	// ------------------------------------------------------------------
	// Latches and buffers
	// ------------------------------------------------------------------
	vramReadBuffer uint16
	bgScrollLatch  uint8 // shared BG HOFS/VOFS byte latch
	hScrollLatch   uint8 // shared BG1-4 HOFS-only byte latch

	cgramLowByte   uint8
	cgramAddr      uint8
	cgramWriteHigh bool

	oamLowByteBuf     uint8
	internalOamAddr   uint16 // 10-bit internal address
	oamWriteHigh      bool

	latchH, latchV  uint16
	latched         bool
	latchToggleHigh bool

	pendingLatchScanline uint16
	pendingLatchDot      uint16
	hasPendingLatch      bool

	ppu1OpenBus uint8
	ppu2OpenBus uint8

	// Per-scanline working buffers
	mainScreenBuffer [ScreenWidth]uint16
	subScreenBuffer  [ScreenWidth]uint16
	rowPixelFlags    [ScreenWidth]uint8 // bit0 Filled, bit1 AllowColorMath
	mainLayerBit     [ScreenWidth]uint8 // CGADSUB EnableLayers bit of the layer that won the main-screen write
	subScreenFilled  [ScreenWidth]bool
	pixelsDrawn      int
	subPixelsDrawn   int

	spriteColors    [ScreenWidth]uint8
	spritePriority  [ScreenWidth]uint8
	spritePalette   [ScreenWidth]uint8
	spriteColorsCopy   [ScreenWidth]uint8
	spritePriorityCopy [ScreenWidth]uint8
	spritePaletteCopy  [ScreenWidth]uint8

	spriteIndexes  [32]int
	spriteCount    int
	rangeOver      bool
	timeOver       bool

	// Output: double-buffered so the caller can present one buffer while
	// the PPU writes the other under an advance-then-publish discipline.
	frontBuffer [OutputWidth * OutputMaxHeight]uint16
	backBuffer  [OutputWidth * OutputMaxHeight]uint16
	frameReady  bool
}

// Pixel flag bits for rowPixelFlags.
const (
	flagFilled         = 1 << 0
	flagAllowColorMath = 1 << 1
)

// New creates a PPU wired to the given host capabilities.
func New(host BusHost) *PPU {
	p := &PPU{host: host}
	p.timing.VblankStartScanline = 225
	p.recomputeTiming()
	return p
}

// Reset re-initializes scanline/frame timing and register-visible flags,
// but leaves VRAM/CGRAM/OAM contents untouched.
func (p *PPU) Reset() {
	p.timing.Scanline = 0
	p.timing.Dot = 0
	p.timing.OddFrame = false
	p.timing.FrameCounter = 0
	p.timing.nmiFlag = false
	p.forcedBlank = true
	p.brightness = 0
	p.rangeOver = false
	p.timeOver = false
	p.recomputeTiming()
}

// PowerCycle re-initializes VRAM/CGRAM/OAM via a deterministic fill.
// Real hardware's power-on RAM contents are not all zero, but a fixed,
// reproducible pattern is what's reachable without a documented
// randomization seed to match against.
func (p *PPU) PowerCycle() {
	for i := range p.vram {
		if i&1 == 0 {
			p.vram[i] = 0x0000
		} else {
			p.vram[i] = 0xFFFF
		}
	}
	for i := range p.cgram {
		p.cgram[i] = 0
	}
	for i := range p.oamLo {
		p.oamLo[i] = 0
	}
	for i := range p.oamHi {
		p.oamHi[i] = 0
	}
	p.Reset()
}

func (p *PPU) recomputeTiming() {
	if p.timing.Overscan {
		p.timing.VblankStartScanline = 240
	} else {
		p.timing.VblankStartScanline = 225
	}
	if p.timing.palMode {
		p.timing.BaseVblankEndScanline = 311
		if !p.timing.OddFrame {
			p.timing.BaseVblankEndScanline = 312
		}
	} else {
		p.timing.BaseVblankEndScanline = 261
		if !p.timing.OddFrame {
			p.timing.BaseVblankEndScanline = 262
		}
	}
	p.timing.AdjustedVblankEndScanline = p.timing.BaseVblankEndScanline + p.timing.ExtraScanlinesAfterNmi
	p.timing.VblankEndScanline = p.timing.AdjustedVblankEndScanline
	p.timing.NmiScanline = p.timing.VblankStartScanline + p.timing.ExtraScanlinesBeforeNmi
}

// vramWordClamp masks a VRAM word address modulo the VRAM word count.
func vramWordClamp(addr uint16) uint16 {
	return addr & (VRAMWords - 1)
}

func cgramAddrClamp(addr uint8) uint8 {
	return addr // already 8-bit, full range is valid
}

// readVramWord reads a VRAM word without side effects (used by the
// background fetcher and Mode-7 renderer, which must not perturb the
// CPU-visible read buffer).
func (p *PPU) readVramWord(addr uint16) uint16 {
	return p.vram[vramWordClamp(addr)]
}

// writeVramWord writes a VRAM word, subject to active-display write
// suppression: during active display and not forced-blank, the write is
// dropped but any caller-side address increment still happens (that
// increment lives in the register-write path, not here).
func (p *PPU) writeVramWord(addr uint16, value uint16) {
	if p.duringActiveDisplay() {
		return
	}
	p.vram[vramWordClamp(addr)] = value
}

func (p *PPU) duringActiveDisplay() bool {
	return p.timing.Scanline < p.timing.VblankStartScanline && !p.forcedBlank
}

// inForcedOrVblank reports whether VRAM writes via VMDATA are currently
// permitted (forced blank, or within vblank).
func (p *PPU) inForcedOrVblank() bool {
	return p.forcedBlank || p.timing.Scanline >= p.timing.VblankStartScanline
}

func (p *PPU) logUnimplemented(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

// FrameBuffer returns the most recently completed frame (front buffer).
// Publishing a frame copies the back buffer into this same array, once
// per frame at the NMI scanline, so it is not safe to read concurrently
// with ProcessPpuCycle.
func (p *PPU) FrameBuffer() *[OutputWidth * OutputMaxHeight]uint16 {
	return &p.frontBuffer
}

// FrameReady reports whether a new frame has been published since the
// last call to ClearFrameReady.
func (p *PPU) FrameReady() bool { return p.frameReady }

// ClearFrameReady resets the frame-ready flag.
func (p *PPU) ClearFrameReady() { p.frameReady = false }

func (p *PPU) publishFrame() {
	p.frontBuffer, p.backBuffer = p.backBuffer, p.frontBuffer
	p.frameReady = true
	p.timing.FrameCounter++
	p.host.NotifyFrame()
}
