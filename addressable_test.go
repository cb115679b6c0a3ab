package main

import "testing"

func TestMemorySegmentWordFromBytes(t *testing.T) {
	seg := NewMemorySegment(16, false)
	seg.Write8(0, 0xEF)
	seg.Write8(1, 0xBE)
	seg.Write8(2, 0xAD)
	seg.Write8(3, 0xDE)

	got := seg.Read32(0)
	want := uint32(seg.Read8(0)) | uint32(seg.Read8(1))<<8 | uint32(seg.Read8(2))<<16 | uint32(seg.Read8(3))<<24
	if got != want || got != 0xDEADBEEF {
		t.Fatalf("Read32 = %#x, want %#x", got, want)
	}
}

func TestMemorySegmentHalfRoundTrip(t *testing.T) {
	seg := NewMemorySegment(4, false)
	seg.Write16(0, 0x1234)
	if got := seg.Read16(0); got != 0x1234 {
		t.Fatalf("Read16 = %#x, want 0x1234", got)
	}
}

func TestMemorySegmentReadOnlyIgnoresWrites(t *testing.T) {
	seg := NewMemorySegmentFromBytes([]byte{1, 2, 3, 4}, true)
	seg.Write32(0, 0xFFFFFFFF)
	if got := seg.Read32(0); got != 0x04030201 {
		t.Fatalf("read-only segment was mutated: %#x", got)
	}
}
