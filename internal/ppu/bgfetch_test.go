package ppu

import "testing"

func TestFetchBackgroundRowReadsTilemapWord(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(RegBGMODE, 0x00) // mode 0, BG1 2bpp
	p.bg[0].TilemapAddress = 0
	p.bg[0].ChrAddress = 0
	p.bg[0].HScroll = 0
	p.bg[0].VScroll = 0
	p.timing.Scanline = 0

	p.vram[0] = 0x0042 // tile index 0x42, no flip, low priority

	p.fetchBackgroundRow(0)

	if p.bg[0].Tiles[0].TilemapData != 0x0042 {
		t.Errorf("Tiles[0].TilemapData = %#04x, want 0x0042", p.bg[0].Tiles[0].TilemapData)
	}
}

func TestFetchBackgroundRowSetsHasPriorityTiles(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(RegBGMODE, 0x00)
	p.vram[0] = 0x2000 // bit 13 set: high priority

	p.fetchBackgroundRow(0)

	if !p.bg[0].HasPriorityTiles {
		t.Errorf("HasPriorityTiles not set despite a bit-13 tilemap entry")
	}
}

func TestBitsPerPixelTable(t *testing.T) {
	p, _ := newTestPPU()
	cases := []struct {
		mode  uint8
		layer int
		want  int
	}{
		{0, 0, 2}, {0, 3, 2},
		{1, 0, 4}, {1, 2, 2},
		{3, 0, 8}, {3, 1, 4},
	}
	for _, c := range cases {
		p.bgMode = c.mode
		if got := p.bitsPerPixelForLayer(c.layer); got != c.want {
			t.Errorf("mode %d layer %d bpp = %d, want %d", c.mode, c.layer, got, c.want)
		}
	}
}

func TestActiveLayerCountPerMode(t *testing.T) {
	p, _ := newTestPPU()
	p.bgMode = 0
	if got := p.activeLayerCount(); got != 4 {
		t.Errorf("mode 0 active layers = %d, want 4", got)
	}
	p.bgMode = 1
	if got := p.activeLayerCount(); got != 3 {
		t.Errorf("mode 1 active layers = %d, want 3", got)
	}
	p.bgMode = 7
	if got := p.activeLayerCount(); got != 0 {
		t.Errorf("mode 7 active layers = %d, want 0", got)
	}
}
