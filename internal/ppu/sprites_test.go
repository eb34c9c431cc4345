package ppu

import "testing"

func TestReadOamEntryDecodesFields(t *testing.T) {
	p, _ := newTestPPU()
	// Sprite 0: X=100 (no sign bit), Y=50, tile=0x123, palette=3,
	// priority=2, flipX, not flipY.
	p.oamLo[0] = 100
	p.oamLo[1] = 50
	p.oamLo[2] = 0x23
	p.oamLo[3] = 0x01 | (3 << 1) | (2 << 4) | 0x40
	p.oamHi[0] = 0x00

	e := p.readOamEntry(0)
	if e.x != 100 {
		t.Errorf("x = %d, want 100", e.x)
	}
	if e.y != 50 {
		t.Errorf("y = %d, want 50", e.y)
	}
	if e.tile != 0x123 {
		t.Errorf("tile = %#03x, want 0x123", e.tile)
	}
	if e.palette != 3 {
		t.Errorf("palette = %d, want 3", e.palette)
	}
	if e.priority != 2 {
		t.Errorf("priority = %d, want 2", e.priority)
	}
	if !e.flipX || e.flipY {
		t.Errorf("flip flags = (%v,%v), want (true,false)", e.flipX, e.flipY)
	}
}

func TestReadOamEntrySignExtendsNegativeX(t *testing.T) {
	p, _ := newTestPPU()
	p.oamLo[0] = 0x00 // low byte 0
	p.oamHi[0] = 0x01 // X sign bit set -> X = -256

	e := p.readOamEntry(0)
	if e.x != -256 {
		t.Errorf("x = %d, want -256 (sign-extended hidden sentinel)", e.x)
	}
}

func TestEvaluateOAMFindsVisibleSprite(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(RegOBSEL, 0x00) // 8x8/16x16, base 0

	p.oamLo[0] = 10 // X
	p.oamLo[1] = 20 // Y
	p.oamLo[2] = 0
	p.oamLo[3] = 0

	p.timing.Scanline = 19 // next scanline (20) falls within the sprite
	p.evaluateOAM()

	if p.spriteCount != 1 {
		t.Fatalf("spriteCount = %d, want 1", p.spriteCount)
	}
	if p.spriteIndexes[0] != 0 {
		t.Errorf("spriteIndexes[0] = %d, want 0", p.spriteIndexes[0])
	}
}

func TestEvaluateOAMSkipsHiddenSentinel(t *testing.T) {
	p, _ := newTestPPU()
	p.oamLo[0] = 0x00
	p.oamHi[0] = 0x01 // X = -256 sentinel
	p.oamLo[1] = 100  // Y clear of the other (zeroed, Y=0) sprites

	p.timing.Scanline = 100
	p.evaluateOAM()

	if p.spriteCount != 0 {
		t.Errorf("spriteCount = %d, want 0 (hidden sentinel sprite)", p.spriteCount)
	}
}

func TestSpriteDimensionHalvedUnderInterlace(t *testing.T) {
	p, _ := newTestPPU()
	p.sprite.ObjMode = 0 // sizes (8,16)
	p.timing.InterlaceObject = true

	e := oamEntry{large: true}
	if got := p.spriteDimension(e); got != 8 {
		t.Errorf("interlaced large-sprite dimension = %d, want 8", got)
	}
}
