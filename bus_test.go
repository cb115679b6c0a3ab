package main

import "testing"

func newTestBus() *Bus {
	bios := NewMemorySegment(biosSize, true)
	irq := NewInterruptController()
	gpu := NewGPU(NewNullRenderer())
	return NewBus(bios, gpu, irq)
}

func TestBusRAMRoundTrip(t *testing.T) {
	b := newTestBus()
	b.Write32(0x100, 0xCAFEBABE)
	if got := b.Read32(0x100); got != 0xCAFEBABE {
		t.Fatalf("Read32 = %#x, want 0xCAFEBABE", got)
	}
}

func TestBusKSEG0AndKSEG1MirrorRAM(t *testing.T) {
	b := newTestBus()
	b.Write32(0x200, 0x11223344)
	if got := b.Read32(0x80000200); got != 0x11223344 {
		t.Fatalf("KSEG0 mirror = %#x, want 0x11223344", got)
	}
	if got := b.Read32(0xA0000200); got != 0x11223344 {
		t.Fatalf("KSEG1 mirror = %#x, want 0x11223344", got)
	}
}

func TestBusExpansion1ReadsFF(t *testing.T) {
	b := newTestBus()
	if got := b.Read8(0x1F000000); got != 0xFF {
		t.Fatalf("expansion 1 read = %#x, want 0xFF", got)
	}
}

func TestBusWriteToUnmappedAddressPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing to an unmapped address")
		}
	}()
	b := newTestBus()
	b.Write32(0x1F900000, 0)
}

func TestBusIRQRegistersRouteThroughController(t *testing.T) {
	b := newTestBus()
	b.irq.Request(IRQGPU)
	if got := b.Read32(0x1F801070); got&(1<<uint(IRQGPU)) == 0 {
		t.Fatalf("IRQ status register did not reflect pending GPU interrupt: %#x", got)
	}
	b.Write32(0x1F801074, 1<<uint(IRQGPU))
	if !b.irq.Pending() {
		t.Fatal("expected pending after unmasking GPU interrupt via bus write")
	}
}

func TestBusGPUPortsRouteToGPU(t *testing.T) {
	b := newTestBus()
	b.Write32(0x1F801814, 0x00000000) // GP1 reset
	status := b.Read32(0x1F801814)
	if status&0xF != 0 {
		t.Fatalf("GPUSTAT texture page bits not reset: %#x", status)
	}
}
