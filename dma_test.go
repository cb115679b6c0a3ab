package main

import "testing"

func newTestDMA() (*DMA, *MemorySegment, *GPU) {
	ram := NewMemorySegment(2*1024*1024, false)
	gpu := NewGPU(NewNullRenderer())
	return NewDMA(ram, gpu), ram, gpu
}

func TestOTCTransferWritesBackwardChain(t *testing.T) {
	d, ram, _ := newTestDMA()
	d.WriteChannelReg(DMAChanOTC, 0x0, 0x1000)
	d.WriteChannelReg(DMAChanOTC, 0x4, 4) // manual, 4 words
	// control: sync=manual(0), direction=0(ToRAM irrelevant for OTC),
	// increment=false (bit1=1), enable (bit24), trigger (bit28)
	d.WriteChannelReg(DMAChanOTC, 0x8, (1<<1)|(1<<24)|(1<<28))

	cases := map[uint32]uint32{
		0x1000: 0x00FFFFFF,
		0x0FFC: 0x00001000,
		0x0FF8: 0x00000FFC,
		0x0FF4: 0x00000FF8,
	}
	for addr, want := range cases {
		if got := ram.Read32(addr); got != want {
			t.Fatalf("RAM[%#x] = %#x, want %#x", addr, got, want)
		}
	}

	c := &d.channels[DMAChanOTC]
	if c.enable || c.trigger {
		t.Fatal("channel should be disabled and untriggered after completion")
	}
}

func TestBlockDMAIncrementTouchesExactlyNWords(t *testing.T) {
	d, ram, _ := newTestDMA()
	for i := 0; i < 16; i++ {
		ram.Write32(uint32(0x2000+i*4), uint32(0xA000+i))
	}
	d.WriteChannelReg(DMAChanPIO, 0x0, 0x2000)
	d.WriteChannelReg(DMAChanPIO, 0x4, 4) // manual, 4 words
	// direction=ToRAM(0), increment=true(bit1=0), sync=manual, enable+trigger
	d.WriteChannelReg(DMAChanPIO, 0x8, (1<<24)|(1<<28))

	// receiveFromDevice for PIO returns 0, so RAM[0x2000..0x200C] become 0.
	for i := 0; i < 4; i++ {
		if got := ram.Read32(uint32(0x2000 + i*4)); got != 0 {
			t.Fatalf("word %d = %#x, want 0", i, got)
		}
	}
	// word beyond the transferred range must be untouched.
	if got := ram.Read32(0x2010); got != 0xA004 {
		t.Fatalf("word past transfer range was touched: %#x", got)
	}
}

func TestLinkedListDMAFeedsGPUUntilTerminator(t *testing.T) {
	d, ram, gpu := newTestDMA()
	gpu.WriteGP1(0x00000000)

	// Node at 0x3000: 2 payload words, next = 0xFFFFFF (terminator).
	ram.Write32(0x3000, (2<<24)|0x00FFFFFF)
	ram.Write32(0x3004, 0xE1000000) // draw mode nop-ish, 1-word command
	ram.Write32(0x3008, 0x01000000) // clear cache, 1-word command

	d.WriteChannelReg(DMAChanGPU, 0x0, 0x3000)
	// direction=FromRAM(1), sync=linked-list(2<<9), enable+trigger
	d.WriteChannelReg(DMAChanGPU, 0x8, 1|(2<<9)|(1<<24)|(1<<28))

	if gpu.mode != gp0ModeCommand || gpu.cmdCount != 0 {
		t.Fatalf("GPU should have consumed both single-word commands cleanly")
	}
}

func TestDMAInterruptMasterFlagComposite(t *testing.T) {
	d, _, _ := newTestDMA()
	// Flag bits are write-1-to-clear from the bus side and nothing in the
	// core raises them, so chan0's flag is set directly.
	d.irqChannelFlag[0] = true
	d.WriteInterrupt((1 << 23) | (1 << 16)) // master enable, chan0 enable
	if !d.masterFlag() {
		t.Fatal("expected master flag set when enabled channel has its flag set")
	}
}
