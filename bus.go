// bus.go - address-decoded memory bus (§4.3)

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

This bus is a flat set of device handles (§9): a channel-control write
routed to DMA.WriteChannelReg drives further RAM/GPU traffic synchronously,
through the DMA engine's own RAM and GPU pointers, while the bus write is
still on the stack, and the bus holds no lock of its own - exactly the shape the
teacher's SystemBus gives a single MemoryBus, generalised here to the PSX
address map of §4.3.

Known ranges (KUSEG, inclusive):

	0x0000_0000-0x001F_FFFF  RAM              2 MiB
	0x1F00_0000-0x1F7F_FFFF  Expansion 1      reads 0xFF
	0x1F80_0000-0x1F80_03FF  Scratchpad       1 KiB
	0x1F80_1000-0x1F80_1024  Memory control 1 writes ignored
	0x1F80_1040-0x1F80_105F  Controller I/O   stub
	0x1F80_1060             Memory control 2  write ignored
	0x1F80_1070             IRQ status (16-bit)
	0x1F80_1074             IRQ mask (16-bit)
	0x1F80_1080-0x1F80_10FF  DMA              7 channels + 2 globals
	0x1F80_1100-0x1F80_112F  Timers           stub
	0x1F80_1800-0x1F80_1803  CD-ROM
	0x1F80_1810             GPU data (GP0/GPUREAD)
	0x1F80_1814             GPU status (GP1/GPUSTAT)
	0x1F80_1C00-0x1F80_1E80  SPU              16-bit window
	0x1F80_2000-0x1F80_2042  Expansion 2      writes ignored
	0x1FC0_0000-0x1FC7_FFFF  BIOS             read-only (0xBFC0_0000 via KSEG1)
	0xFFFE_0130             Cache control     write ignored
*/

package main

const (
	ramSize        = 2 * 1024 * 1024
	biosSize       = 512 * 1024
	scratchpadSize = 1024
)

// Bus routes typed accesses to the correct device window, per §4.3. It
// observes the CPU's cache-isolation bit only indirectly: the CPU checks it
// before plain loads, plain stores and SWL/SWR (§4.6), so the bus itself is
// unconditional. LWL, LWR and instruction fetch read the bus whether or not
// the cache is isolated.
type Bus struct {
	ram        *MemorySegment
	bios       *MemorySegment
	scratchpad *MemorySegment

	dma   *DMA
	gpu   *GPU
	spu   *SPU
	cdrom *CDROM
	irq   *InterruptController
}

func NewBus(bios *MemorySegment, gpu *GPU, irq *InterruptController) *Bus {
	ram := NewMemorySegment(ramSize, false)
	b := &Bus{
		ram:        ram,
		bios:       bios,
		scratchpad: NewMemorySegment(scratchpadSize, false),
		gpu:        gpu,
		spu:        NewSPU(),
		cdrom:      NewCDROM(),
		irq:        irq,
	}
	b.dma = NewDMA(ram, gpu)
	return b
}

func (b *Bus) RAM() *MemorySegment { return b.ram }

// maskRegion strips KSEG0/KSEG1's top nibble so both mirror onto the same
// physical decode as KUSEG (§4.3).
func maskRegion(addr uint32) uint32 {
	switch addr >> 29 {
	case 4: // 0x80000000-0x9FFFFFFF (KSEG0)
		return addr & 0x7FFFFFFF
	case 5: // 0xA0000000-0xBFFFFFFF (KSEG1)
		return addr & 0x1FFFFFFF
	default:
		return addr
	}
}

func (b *Bus) Read32(addr uint32) uint32 { return b.read(addr, Width32) }
func (b *Bus) Read16(addr uint32) uint16 { return uint16(b.read(addr, Width16)) }
func (b *Bus) Read8(addr uint32) uint8    { return uint8(b.read(addr, Width8)) }

func (b *Bus) Write32(addr uint32, v uint32) { b.write(addr, Width32, v) }
func (b *Bus) Write16(addr uint32, v uint16) { b.write(addr, Width16, uint32(v)) }
func (b *Bus) Write8(addr uint32, v uint8)    { b.write(addr, Width8, uint32(v)) }

func (b *Bus) read(addrRaw uint32, width Width) uint32 {
	addr := maskRegion(addrRaw)

	switch {
	case addr <= 0x001FFFFF:
		return readSegment(b.ram, addr, width)
	case addr >= 0x1F000000 && addr <= 0x1F7FFFFF:
		return 0xFFFFFFFF // Expansion 1 license stub
	case addr >= 0x1F800000 && addr <= 0x1F8003FF:
		return readSegment(b.scratchpad, addr-0x1F800000, width)
	case addr >= 0x1F801000 && addr <= 0x1F801024:
		return 0
	case addr >= 0x1F801040 && addr <= 0x1F80105F:
		return 0
	case addr == 0x1F801060:
		return 0
	case addr == 0x1F801070:
		return uint32(b.irq.ReadStatus())
	case addr == 0x1F801074:
		return uint32(b.irq.ReadMask())
	case addr >= 0x1F801080 && addr <= 0x1F8010FF:
		return b.readDMA(addr)
	case addr >= 0x1F801100 && addr <= 0x1F80112F:
		return 0
	case addr >= 0x1F801800 && addr <= 0x1F801803:
		return uint32(b.cdrom.Read8(addr - 0x1F801800))
	case addr == 0x1F801810:
		return b.gpu.ReadGPUREAD()
	case addr == 0x1F801814:
		return b.gpu.ReadStatus()
	case addr >= 0x1F801C00 && addr <= 0x1F801E80:
		return uint32(b.spu.Read16(addr - 0x1F801C00))
	case addr >= 0x1F802000 && addr <= 0x1F802042:
		return 0
	case addr >= 0x1FC00000 && addr <= 0x1FC7FFFF:
		return readSegment(b.bios, addr-0x1FC00000, width)
	case addr == 0xFFFE0130:
		return 0
	default:
		logf("bus", "read from unmapped address %#08x, returning 0", addrRaw)
		return 0
	}
}

func (b *Bus) write(addrRaw uint32, width Width, v uint32) {
	addr := maskRegion(addrRaw)

	switch {
	case addr <= 0x001FFFFF:
		writeSegment(b.ram, addr, width, v)
	case addr >= 0x1F000000 && addr <= 0x1F7FFFFF:
		// Expansion 1: writes ignored.
	case addr >= 0x1F800000 && addr <= 0x1F8003FF:
		writeSegment(b.scratchpad, addr-0x1F800000, width, v)
	case addr >= 0x1F801000 && addr <= 0x1F801024:
		// Memory control 1: writes ignored.
	case addr >= 0x1F801040 && addr <= 0x1F80105F:
		// Controller I/O stub: writes ignored.
	case addr == 0x1F801060:
		// Memory control 2: write ignored.
	case addr == 0x1F801070:
		b.irq.WriteStatus(uint16(v))
	case addr == 0x1F801074:
		b.irq.WriteMask(uint16(v))
	case addr >= 0x1F801080 && addr <= 0x1F8010FF:
		b.writeDMA(addr, v)
	case addr >= 0x1F801100 && addr <= 0x1F80112F:
		// Timers: stub, writes ignored.
	case addr >= 0x1F801800 && addr <= 0x1F801803:
		b.cdrom.Write8(addr-0x1F801800, uint8(v))
	case addr == 0x1F801810:
		b.gpu.WriteGP0(v)
	case addr == 0x1F801814:
		b.gpu.WriteGP1(v)
	case addr >= 0x1F801C00 && addr <= 0x1F801E80:
		b.spu.Write16(addr-0x1F801C00, uint16(v))
	case addr >= 0x1F802000 && addr <= 0x1F802042:
		// Expansion 2: writes ignored.
	case addr >= 0x1FC00000 && addr <= 0x1FC7FFFF:
		// BIOS: the segment itself drops writes when it is read-only.
		writeSegment(b.bios, addr-0x1FC00000, width, v)
	case addr == 0xFFFE0130:
		// Cache control: write ignored.
	default:
		logf("bus", "write to unmapped address %#08x, halting", addrRaw)
		panic("bus: write to unmapped address")
	}
}

func readSegment(seg *MemorySegment, addr uint32, width Width) uint32 {
	switch width {
	case Width8:
		return uint32(seg.Read8(addr))
	case Width16:
		return uint32(seg.Read16(addr))
	default:
		return seg.Read32(addr)
	}
}

func writeSegment(seg *MemorySegment, addr uint32, width Width, v uint32) {
	switch width {
	case Width8:
		seg.Write8(addr, uint8(v))
	case Width16:
		seg.Write16(addr, uint16(v))
	default:
		seg.Write32(addr, v)
	}
}

// --------------------------------------------------------------- DMA window

// The seven channels occupy 0x1F801080-0x1F8010EF (16 bytes each); the two
// global registers (DPCR, DICR) follow at 0x1F8010F0/0x1F8010F4.
func (b *Bus) readDMA(addr uint32) uint32 {
	off := addr - 0x1F801080
	if off >= 0x70 {
		switch off {
		case 0x70:
			return b.dma.ReadControl()
		case 0x74:
			return b.dma.ReadInterrupt()
		}
		return 0
	}
	ch := DMAChannelID(off / 0x10)
	return b.dma.ReadChannelReg(ch, off%0x10)
}

func (b *Bus) writeDMA(addr uint32, v uint32) {
	off := addr - 0x1F801080
	if off >= 0x70 {
		switch off {
		case 0x70:
			b.dma.WriteControl(v)
		case 0x74:
			b.dma.WriteInterrupt(v)
		}
		return
	}
	ch := DMAChannelID(off / 0x10)
	b.dma.WriteChannelReg(ch, off%0x10, v)
}

// Reset restores RAM, scratchpad, and every device to power-on state.
// BIOS is never reset - it is immutable for the system's lifetime (§3).
func (b *Bus) Reset() {
	for i := range b.ram.Bytes() {
		b.ram.Bytes()[i] = 0
	}
	for i := range b.scratchpad.Bytes() {
		b.scratchpad.Bytes()[i] = 0
	}
	b.dma.Reset()
	b.spu.Reset()
	b.cdrom.Reset()
	b.irq.Reset()
	b.gpu.WriteGP1(0x00000000)
}
