// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"

	"github.com/tclim/go-t1c/t1c"
)

// thermalFlagHighGain and thermalFlagFrozen are the byte-packed boolean
// flags at the head of a packed thermal frame (spec 4.8).
const (
	thermalFlagHighGain = 1 << 0
	thermalFlagFrozen   = 1 << 1
)

// PackThermalFrame builds the non-catalog "set-image" payload: byte-packed
// flags, big-endian 16-bit scalars, then the raw plane linearly rescaled
// to U8 using the frame's own min/max (spec 4.8). This is the mini
// variant's websocket live-preview wire format; it carries no palette,
// leaving pixel-to-color mapping to the excluded rendering collaborator.
func PackThermalFrame(pix *[t1c.Width * t1c.Height]uint16, y16Min, y16Max uint16, highGain, frozen bool) []byte {
	var flags byte
	if highGain {
		flags |= thermalFlagHighGain
	}
	if frozen {
		flags |= thermalFlagFrozen
	}
	out := make([]byte, 1+4+t1c.Width*t1c.Height)
	out[0] = flags
	binary.BigEndian.PutUint16(out[1:3], y16Min)
	binary.BigEndian.PutUint16(out[3:5], y16Max)
	rescale8(pix, y16Min, y16Max, out[5:])
	return out
}

// rescale8 linearly maps each pixel in [lo, hi] to [0, 255], clamping a
// degenerate (lo == hi) frame to mid-gray.
func rescale8(pix *[t1c.Width * t1c.Height]uint16, lo, hi uint16, out []byte) {
	span := int(hi) - int(lo)
	if span <= 0 {
		for i := range out {
			out[i] = 128
		}
		return
	}
	for i, v := range pix {
		out[i] = byte((int(v) - int(lo)) * 255 / span)
	}
}

// RGBRenderer maps one raw pixel to a 24-bit color; the palette mapping
// itself belongs to the excluded rendering collaborator (spec 1's
// non-goals). Transport only knows how to pack the result.
type RGBRenderer func(v uint16) (r, g, b byte)

// PackFileImageRGB builds the "get-file-image" payload: 3*256*192 bytes
// of 24-bit RGB, one triple per raw pixel via render.
func PackFileImageRGB(pix *[t1c.Width * t1c.Height]uint16, render RGBRenderer) []byte {
	out := make([]byte, 3*t1c.Width*t1c.Height)
	for i, v := range pix {
		r, g, b := render(v)
		out[3*i], out[3*i+1], out[3*i+2] = r, g, b
	}
	return out
}
