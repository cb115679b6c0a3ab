package main

import (
	"encoding/binary"
	"testing"
)

func buildTestEXE(entry, gp, dest, size, memfillAddr, memfillSize, stack uint32, payload []byte) []byte {
	buf := make([]byte, exeHeaderSize+len(payload))
	copy(buf, exeMagic)
	le := binary.LittleEndian
	le.PutUint32(buf[0x10:], entry)
	le.PutUint32(buf[0x14:], gp)
	le.PutUint32(buf[0x18:], dest)
	le.PutUint32(buf[0x1C:], size)
	le.PutUint32(buf[0x28:], memfillAddr)
	le.PutUint32(buf[0x2C:], memfillSize)
	le.PutUint32(buf[0x30:], stack)
	copy(buf[exePayloadOff:], payload)
	return buf
}

func TestParseEXEFieldsAndPayload(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	buf := buildTestEXE(0x80010000, 0x80011000, 0x80010000, uint32(len(payload)), 0, 0, 0x801FFF00, payload)

	img, err := ParseEXE(buf)
	if err != nil {
		t.Fatalf("ParseEXE: %v", err)
	}
	if img.EntryPC != 0x80010000 || img.InitialGP != 0x80011000 {
		t.Fatalf("unexpected header fields: %+v", img)
	}
	if len(img.Payload) != 4 || img.Payload[0] != 0xAA {
		t.Fatalf("payload not sliced correctly: %v", img.Payload)
	}
}

func TestParseEXERejectsBadMagic(t *testing.T) {
	buf := make([]byte, exeHeaderSize)
	copy(buf, "NOT-AN-EXE")
	if _, err := ParseEXE(buf); err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestParseEXERejectsTruncatedPayload(t *testing.T) {
	buf := buildTestEXE(0x80010000, 0, 0x80010000, 0x10000, 0, 0, 0, nil)
	if _, err := ParseEXE(buf); err == nil {
		t.Fatal("expected an error for a declared size exceeding the file")
	}
}
