// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import "github.com/tclim/go-t1c/transport"

// grayscaleRenderer returns a transport.RGBRenderer that linearly rescales
// [lo, hi] to 8-bit gray, one channel repeated three times. Palette
// rendering is an excluded collaborator (spec 1's non-goals); this is the
// minimal stand-in so file-image commands still return a real image.
func grayscaleRenderer(lo, hi uint16) transport.RGBRenderer {
	span := int(hi) - int(lo)
	return func(v uint16) (r, g, b byte) {
		if span <= 0 {
			return 128, 128, 128
		}
		g8 := byte((int(v) - int(lo)) * 255 / span)
		return g8, g8, g8
	}
}
