// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package t1c

import (
	"bytes"
	"testing"
)

// buildFrameBytes assembles one preamble-plus-rows frame with every pixel
// set to pixVal, as frameSerial.readFrame expects to find on the wire.
func buildFrameBytes(pixVal uint16, highGain, frozen bool) []byte {
	preamble := make([]byte, preambleBytes)
	preamble[preambleValidOff] = 1
	if highGain {
		preamble[preambleGainOff] = 1
	}
	if frozen {
		preamble[preambleFrozenOff] = 1
	}
	row := make([]byte, rowBytes)
	for col := 0; col < Width; col++ {
		row[col*2] = byte(pixVal >> 8)
		row[col*2+1] = byte(pixVal)
	}
	buf := append([]byte{}, preamble...)
	for r := 0; r < Height; r++ {
		buf = append(buf, row...)
	}
	return buf
}

func TestReadFrameDecodesPixelsAndPreamble(t *testing.T) {
	wire := buildFrameBytes(0x1234, true, true)
	s := newFrameSerial(bytes.NewReader(wire))
	var f Frame
	if err := s.readFrame(&f); err != nil {
		t.Fatal(err)
	}
	if !f.HighGain || !f.Frozen {
		t.Fatalf("got HighGain=%v Frozen=%v, want both true", f.HighGain, f.Frozen)
	}
	for i, v := range f.Pix {
		if v != 0x1234 {
			t.Fatalf("pixel %d: got %#04x, want 0x1234", i, v)
		}
	}
}

func TestFrameSerialSetInvertFlipsDeliveredPixels(t *testing.T) {
	wire := buildFrameBytes(0x1234, false, false)
	s := newFrameSerial(bytes.NewReader(wire))
	s.setInvert(true)
	var f Frame
	if err := s.readFrame(&f); err != nil {
		t.Fatal(err)
	}
	want := ^uint16(0x1234)
	for i, v := range f.Pix {
		if v != want {
			t.Fatalf("pixel %d: got %#04x, want %#04x", i, v, want)
		}
	}
}
