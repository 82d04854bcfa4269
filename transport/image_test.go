// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"
	"testing"

	"github.com/tclim/go-t1c/t1c"
)

func TestPackThermalFrameSizeAndFlags(t *testing.T) {
	var pix [t1c.Width * t1c.Height]uint16
	pix[0], pix[1] = 8000, 8100

	got := PackThermalFrame(&pix, 8000, 8100, true, false)
	wantLen := 1 + 4 + t1c.Width*t1c.Height
	if len(got) != wantLen {
		t.Fatalf("len = %d, want %d", len(got), wantLen)
	}
	if got[0]&thermalFlagHighGain == 0 {
		t.Fatal("high-gain flag not set")
	}
	if got[0]&thermalFlagFrozen != 0 {
		t.Fatal("frozen flag unexpectedly set")
	}
	if binary.BigEndian.Uint16(got[1:3]) != 8000 || binary.BigEndian.Uint16(got[3:5]) != 8100 {
		t.Fatalf("min/max scalars not encoded big-endian: %v", got[1:5])
	}
	// Pixel 0 sits at y16Min -> rescales to 0; pixel 1 is at the high end
	// of a 100-wide span -> rescales to 255.
	if got[5] != 0 {
		t.Fatalf("pixel 0 rescaled = %d, want 0", got[5])
	}
	if got[6] != 255 {
		t.Fatalf("pixel 1 rescaled = %d, want 255", got[6])
	}
}

func TestPackThermalFrameDegenerateRange(t *testing.T) {
	var pix [t1c.Width * t1c.Height]uint16
	got := PackThermalFrame(&pix, 8000, 8000, false, false)
	for i := 5; i < len(got); i++ {
		if got[i] != 128 {
			t.Fatalf("pixel %d = %d, want 128 for a degenerate min==max frame", i-5, got[i])
		}
	}
}

func TestPackFileImageRGB(t *testing.T) {
	var pix [t1c.Width * t1c.Height]uint16
	pix[0] = 1234
	pix[1] = 5678

	got := PackFileImageRGB(&pix, func(v uint16) (byte, byte, byte) {
		return byte(v), byte(v >> 8), 0
	})
	if len(got) != 3*t1c.Width*t1c.Height {
		t.Fatalf("len = %d, want %d", len(got), 3*t1c.Width*t1c.Height)
	}
	if got[0] != byte(1234) || got[1] != byte(1234>>8) || got[2] != 0 {
		t.Fatalf("pixel 0 triple = %v", got[0:3])
	}
	if got[3] != byte(5678) || got[4] != byte(5678>>8) || got[5] != 0 {
		t.Fatalf("pixel 1 triple = %v", got[3:6])
	}
}
