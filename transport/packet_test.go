// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"testing"

	"github.com/tclim/go-t1c/cmdbus"
)

func TestPacketRoundTrip(t *testing.T) {
	in := &Packet{Kind: cmdbus.Set, ID: cmdbus.Brightness, PayloadType: cmdbus.PayloadI32, Payload: cmdbus.EncodeI32(42)}
	out, err := DecodePacket(in.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != in.Kind || out.ID != in.ID || out.PayloadType != in.PayloadType {
		t.Fatalf("header mismatch: got %+v want %+v", out, in)
	}
	v, err := cmdbus.DecodeI32(out.Payload)
	if err != nil || v != 42 {
		t.Fatalf("payload = %v (err %v), want 42", out.Payload, err)
	}
}

func TestDecodePacketRejectsBelowFloor(t *testing.T) {
	if _, err := DecodePacket(make([]byte, 8)); err == nil {
		t.Fatal("expected an error for a packet below the 16-byte floor")
	}
}

func TestDecodePacketRejectsLengthMismatch(t *testing.T) {
	pkt := &Packet{Kind: cmdbus.Get, ID: cmdbus.Gain, PayloadType: cmdbus.PayloadNone}
	buf := pkt.Encode()
	buf[3] = buf[3] + 1 // corrupt the declared total_length
	if _, err := DecodePacket(buf); err == nil {
		t.Fatal("expected an error for a declared/actual length mismatch")
	}
}

func TestPacketNoPayload(t *testing.T) {
	pkt := &Packet{Kind: cmdbus.Get, ID: cmdbus.SysInfo, PayloadType: cmdbus.PayloadNone}
	if len(pkt.Encode()) != headerSize {
		t.Fatalf("encoded size = %d, want %d for an empty payload", len(pkt.Encode()), headerSize)
	}
	out, err := DecodePacket(pkt.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Payload) != 0 {
		t.Fatalf("expected no payload, got %d bytes", len(out.Payload))
	}
}
