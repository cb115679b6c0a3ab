// exe.go - PS-X EXE sideload image (§6)

package main

import (
	"encoding/binary"
	"fmt"
)

const (
	exeMagic      = "PS-X EXE"
	exeHeaderSize = 2048
	exePayloadOff = 0x800
)

// ExeImage is a parsed PS-X EXE ready for the CPU's sideload hook.
type ExeImage struct {
	EntryPC         uint32
	InitialGP       uint32
	Destination     uint32
	MemfillAddress  uint32
	MemfillSize     uint32
	StackBase       uint32
	Payload         []byte
}

// ParseEXE validates the 2048-byte header and slices out the payload that
// follows it, per §6's field layout.
func ParseEXE(data []byte) (*ExeImage, error) {
	if len(data) < exeHeaderSize {
		return nil, fmt.Errorf("exe: file too short for header (%d bytes)", len(data))
	}
	if string(data[:len(exeMagic)]) != exeMagic {
		return nil, fmt.Errorf("exe: bad magic %q", data[:len(exeMagic)])
	}

	le := binary.LittleEndian
	img := &ExeImage{
		EntryPC:        le.Uint32(data[0x10:]),
		InitialGP:      le.Uint32(data[0x14:]),
		Destination:    le.Uint32(data[0x18:]),
		MemfillAddress: le.Uint32(data[0x28:]),
		MemfillSize:    le.Uint32(data[0x2C:]),
		StackBase:      le.Uint32(data[0x30:]),
	}
	destSize := le.Uint32(data[0x1C:])

	if exePayloadOff+int(destSize) > len(data) {
		return nil, fmt.Errorf("exe: declared size %d exceeds file length", destSize)
	}
	img.Payload = data[exePayloadOff : exePayloadOff+int(destSize)]
	return img, nil
}
