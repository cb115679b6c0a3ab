package main

import "testing"

func TestGP1ResetClearsStatus(t *testing.T) {
	g := NewGPU(nil)
	g.WriteGP0(0xE1000001) // perturb draw mode
	g.WriteGP1(0x00000000) // GP1 reset
	if g.ReadStatus()&0xF != 0 {
		t.Fatalf("expected texture page reset, got status %#x", g.ReadStatus())
	}
}

func TestGP0QuadAccumulatesAndFiresOnce(t *testing.T) {
	nr := NewNullRenderer()
	g := NewGPU(nr)
	g.WriteGP1(0x00000000)
	g.WriteGP0(0xE5000000) // drawing offset 0,0

	g.WriteGP0(0x28FFFFFF) // color word, quad mono opaque
	g.WriteGP0(0x00000000) // (0,0)
	g.WriteGP0(0x0000000A) // (10,0)
	g.WriteGP0(0x000A0000) // (0,10)
	g.WriteGP0(0x000A000A) // (10,10)

	if nr.Quads != 1 {
		t.Fatalf("expected exactly one quad draw, got %d", nr.Quads)
	}
	want := [4]Vertex{
		{X: 0, Y: 0, R: 0xFF, G: 0xFF, B: 0xFF},
		{X: 10, Y: 0, R: 0xFF, G: 0xFF, B: 0xFF},
		{X: 0, Y: 10, R: 0xFF, G: 0xFF, B: 0xFF},
		{X: 10, Y: 10, R: 0xFF, G: 0xFF, B: 0xFF},
	}
	if nr.LastQuad != want {
		t.Fatalf("quad verts = %+v, want %+v", nr.LastQuad, want)
	}
}

func TestGP0LoadImageThenStoreImageRoundTrips(t *testing.T) {
	g := NewGPU(nil)
	g.WriteGP1(0x00000000)

	// LoadImage into a 2x2 rectangle at (0,0).
	g.WriteGP0(0xA0000000)
	g.WriteGP0(0x00000000) // dest (0,0)
	g.WriteGP0(0x00020002) // width=2 height=2

	pixels := []uint32{0x22221111, 0x44443333}
	for _, w := range pixels {
		g.WriteGP0(w)
	}

	// StoreImage of the same rectangle.
	g.WriteGP0(0xC0000000)
	g.WriteGP0(0x00000000)
	g.WriteGP0(0x00020002)

	var got []uint32
	for i := 0; i < 2; i++ {
		got = append(got, g.ReadGPUREAD())
	}
	for i, w := range pixels {
		if got[i] != w {
			t.Fatalf("row %d = %#x, want %#x", i, got[i], w)
		}
	}
}

func TestGP0DrawingOffsetSignExtends(t *testing.T) {
	g := NewGPU(nil)
	g.WriteGP1(0x00000000)
	// -1 in 11-bit two's complement is 0x7FF.
	g.WriteGP0(0xE5000000 | 0x7FF | (0x7FF << 11))
	if g.drawOffsetX != -1 || g.drawOffsetY != -1 {
		t.Fatalf("offset = (%d,%d), want (-1,-1)", g.drawOffsetX, g.drawOffsetY)
	}
}

func TestUnknownGP0OpcodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown GP0 opcode")
		}
	}()
	g := NewGPU(nil)
	g.WriteGP0(0xFF000000)
}
