// Command ppuview drives the PPU core with a synthetic register program
// and presents its output through SDL2. It has no CPU or cartridge
// attached — the 65816 core and ROM loading are external collaborators
// this module doesn't implement — so the "program" is a small fixed
// sequence of register pokes and a procedural VRAM fill, enough to put
// one background layer of the chosen BG mode on screen.
package main

import (
	"flag"
	"os"

	"github.com/snes-emu/ppu-fabric/internal/ppu"
	"github.com/golang/glog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	windowScale = flag.Int("scale", 2, "integer window scale factor")
	bgMode      = flag.Int("mode", 1, "BG mode to demonstrate (0-7)")
)

// syntheticHost is the minimal BusHost a standalone demo needs: no real
// master clock or CPU NMI line, just counters the demo loop can read
// back to know a frame has completed.
type syntheticHost struct {
	hclock      uint16
	masterClock uint64
	frames      int
	nmiActive   bool
}

func (h *syntheticHost) GetHClock() uint16      { return h.hclock }
func (h *syntheticHost) GetMasterClock() uint64 { return h.masterClock }
func (h *syntheticHost) OpenBus() uint8         { return 0 }
func (h *syntheticHost) NotifyFrame()           { h.frames++ }
func (h *syntheticHost) NotifyNMI(active bool)  { h.nmiActive = active }

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		glog.Fatalf("ppuview: sdl init: %v", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(
		"snes-ppu viewer",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(ppu.OutputWidth/2)*int32(*windowScale),
		int32(ppu.VisibleHeight)*int32(*windowScale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		glog.Fatalf("ppuview: create window: %v", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		glog.Fatalf("ppuview: create renderer: %v", err)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA32,
		sdl.TEXTUREACCESS_STREAMING,
		int32(ppu.OutputWidth),
		int32(ppu.OutputMaxHeight),
	)
	if err != nil {
		glog.Fatalf("ppuview: create texture: %v", err)
	}
	defer texture.Destroy()

	host := &syntheticHost{}
	core := ppu.New(host)
	core.PowerCycle()
	programDemoPattern(core, uint8(*bgMode))

	pixels := make([]uint8, ppu.OutputWidth*ppu.OutputMaxHeight*4)

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				running = false
			}
		}

		for i := 0; i < 1364*262 && !core.FrameReady(); i++ {
			core.ProcessPpuCycle()
		}
		core.ClearFrameReady()

		core.FrameBufferRGBA8(pixels)
		if err := texture.Update(nil, pixels, ppu.OutputWidth*4); err != nil {
			glog.Errorf("ppuview: texture update: %v", err)
		}

		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()
	}

	os.Exit(0)
}

// programDemoPattern pokes the PPU registers directly (bypassing any
// CPU bus) to stand up a minimal, visible scene: a green CGRAM entry 1,
// one BG layer with a repeating tile, and the requested BG mode.
func programDemoPattern(p *ppu.PPU, mode uint8) {
	p.WriteRegister(ppu.RegBGMODE, mode)
	p.WriteRegister(ppu.RegTM, 0x01) // enable BG1 on main screen

	p.WriteRegister(ppu.RegCGADD, 1)
	p.WriteRegister(ppu.RegCGDATA, 0xE0) // low byte of entry 1: green
	p.WriteRegister(ppu.RegCGDATA, 0x03) // high byte

	p.WriteRegister(ppu.RegBG1SC, 0x00)
	p.WriteRegister(ppu.RegBG12NBA, 0x01)

	// VRAM writes while still in forced blank (power-on default), so
	// they aren't dropped by the active-display write suppression rule.
	p.WriteRegister(ppu.RegVMADDL, 0x00)
	p.WriteRegister(ppu.RegVMADDH, 0x00)
	for i := 0; i < 32; i++ {
		p.WriteRegister(ppu.RegVMDATAL, 0x01)
		p.WriteRegister(ppu.RegVMDATAH, 0x00)
	}

	p.WriteRegister(ppu.RegINIDISP, 0x0F) // full brightness, clear forced blank last
}
