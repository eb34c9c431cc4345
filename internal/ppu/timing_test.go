package ppu

import "testing"

func TestNmiFlagTransitions(t *testing.T) {
	p, host := newTestPPU()
	p.WriteRegister(RegINIDISP, 0x0F)

	if host.nmiActive {
		t.Fatalf("NMI asserted before reaching NmiScanline")
	}

	for i := 0; i < 1364*263 && !host.nmiActive; i++ {
		p.ProcessPpuCycle()
	}
	if !host.nmiActive {
		t.Fatalf("NMI never asserted within a full frame")
	}
	if p.timing.Scanline != p.timing.NmiScanline {
		t.Errorf("NMI asserted at scanline %d, want %d", p.timing.Scanline, p.timing.NmiScanline)
	}

	for i := 0; i < 1364*50 && host.nmiActive; i++ {
		p.ProcessPpuCycle()
	}
	if host.nmiActive {
		t.Errorf("NMI flag never cleared after vblank end")
	}
}

func TestOverclockSuppressesApuEnableInExtraScanlines(t *testing.T) {
	p, _ := newTestPPU()
	p.SetOverclock(2, 0)

	p.timing.Scanline = p.timing.VblankStartScanline
	if p.APUEnabled() {
		t.Errorf("APU should be disabled in the extra scanlines before NMI")
	}

	p.timing.Scanline = 10
	if !p.APUEnabled() {
		t.Errorf("APU should be enabled outside the extra scanlines")
	}
}

func TestDotsInScanlineShortensOnOddFrameScanline240(t *testing.T) {
	p, _ := newTestPPU()
	p.timing.OddFrame = true
	p.timing.InterlaceScreen = false
	p.timing.Scanline = 240

	if got := p.dotsInScanline(); got != 1360 {
		t.Errorf("dotsInScanline at scanline 240 (odd, non-interlace) = %d, want 1360", got)
	}

	p.timing.OddFrame = false
	if got := p.dotsInScanline(); got != 1364 {
		t.Errorf("dotsInScanline at scanline 240 (even frame) = %d, want 1364", got)
	}
}

func TestResolvePendingLatchCapturesPosition(t *testing.T) {
	p, _ := newTestPPU()
	p.RequestLocationLatch(50, 100)

	p.timing.Scanline = 49
	p.timing.Dot = 200
	p.ResolvePendingLatch()
	if p.latched {
		t.Fatalf("latch captured before reaching target scanline")
	}

	p.timing.Scanline = 50
	p.timing.Dot = 100
	p.ResolvePendingLatch()
	if !p.latched {
		t.Fatalf("latch not captured at target position")
	}
	if p.latchV != 50 || p.latchH != 100 {
		t.Errorf("captured position = (%d,%d), want (50,100)", p.latchV, p.latchH)
	}
}
