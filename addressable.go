// addressable.go - typed byte/half/word access contract over byte-addressable storage

package main

// Width identifies the byte width of a typed bus access. The core only ever
// moves 1, 2 or 4 bytes at a time; alignment is the CPU's responsibility
// (§4.3), not the storage layer's.
type Width int

const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
)

// Addressable is the typed-access capability every memory-backed device
// implements: BIOS, RAM, scratchpad, and the bus itself. Reads/writes past
// the backing length are a fatal programming error, per §4.1 - the point at
// which that happens is the decode layer (bus.go), not here.
type Addressable interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// MemorySegment is a contiguous byte buffer with typed little-endian
// read/write, the concrete Addressable used for BIOS, RAM and scratchpad.
type MemorySegment struct {
	data     []byte
	readOnly bool
}

// NewMemorySegment allocates a zeroed segment of the given size.
func NewMemorySegment(size int, readOnly bool) *MemorySegment {
	return &MemorySegment{data: make([]byte, size), readOnly: readOnly}
}

// NewMemorySegmentFromBytes wraps an existing buffer (e.g. a loaded BIOS
// image) as a segment. The segment takes ownership of buf.
func NewMemorySegmentFromBytes(buf []byte, readOnly bool) *MemorySegment {
	return &MemorySegment{data: buf, readOnly: readOnly}
}

func (m *MemorySegment) Len() int { return len(m.data) }

func (m *MemorySegment) Read8(addr uint32) uint8 {
	return m.data[addr]
}

func (m *MemorySegment) Read16(addr uint32) uint16 {
	return uint16(m.data[addr]) | uint16(m.data[addr+1])<<8
}

func (m *MemorySegment) Read32(addr uint32) uint32 {
	return uint32(m.data[addr]) | uint32(m.data[addr+1])<<8 |
		uint32(m.data[addr+2])<<16 | uint32(m.data[addr+3])<<24
}

func (m *MemorySegment) Write8(addr uint32, v uint8) {
	if m.readOnly {
		return
	}
	m.data[addr] = v
}

func (m *MemorySegment) Write16(addr uint32, v uint16) {
	if m.readOnly {
		return
	}
	m.data[addr] = byte(v)
	m.data[addr+1] = byte(v >> 8)
}

func (m *MemorySegment) Write32(addr uint32, v uint32) {
	if m.readOnly {
		return
	}
	m.data[addr] = byte(v)
	m.data[addr+1] = byte(v >> 8)
	m.data[addr+2] = byte(v >> 16)
	m.data[addr+3] = byte(v >> 24)
}

// Bytes exposes the backing slice directly, used by DMA to walk RAM without
// paying the typed-access overhead word by word, and by the EXE loader to
// bulk-copy a payload.
func (m *MemorySegment) Bytes() []byte { return m.data }
