// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tau implements the atmospheric-transmission (τ) estimator (C3):
// bilinear interpolation over a gain-specific correction table.
package tau

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Table extents (spec 3): humidity, ambient-temperature, distance.
const (
	HumidityExtent = 4
	TempExtent     = 14
	DistExtent     = 64

	// tempSearchable excludes the final temperature row, which spec 3
	// documents as "reserved/unused".
	tempSearchable = TempExtent - 1
)

// Table is a loaded gain-specific correction table: U16 values indexed
// [humidity][temp][distance]. Each value encodes τ in [0, 1] linearly
// scaled to the full uint16 range (the source format doesn't document an
// alternative scale, and this is the natural one for a monotonic
// correction surface).
type Table struct {
	Data [HumidityExtent][TempExtent][DistExtent]uint16
}

// Axis values (°C for temperature, meters for distance) corresponding to
// each searchable table row/column. The T1C datasheet doesn't expose
// these directly; they are fixed per spec 9's guidance to keep the
// indexing scheme stable across table revisions.
var (
	tempAxisC  [tempSearchable]float64
	distAxisM  [DistExtent]float64
)

func init() {
	// -20C .. 50C over the searchable rows.
	const tempMin, tempMax = -20.0, 50.0
	for i := 0; i < tempSearchable; i++ {
		tempAxisC[i] = tempMin + (tempMax-tempMin)*float64(i)/float64(tempSearchable-1)
	}
	// 0 .. 25m over all distance columns.
	const distMin, distMax = 0.0, 25.0
	for i := 0; i < DistExtent; i++ {
		distAxisM[i] = distMin + (distMax-distMin)*float64(i)/float64(DistExtent-1)
	}
}

// Load reads a correction table from r: HumidityExtent*TempExtent*DistExtent
// little-endian U16 values, per spec 6's asset layout.
func Load(r io.Reader) (*Table, error) {
	t := &Table{}
	for h := 0; h < HumidityExtent; h++ {
		for ti := 0; ti < TempExtent; ti++ {
			if err := binary.Read(r, binary.LittleEndian, &t.Data[h][ti]); err != nil {
				return nil, fmt.Errorf("tau: reading table: %w", err)
			}
		}
	}
	return t, nil
}
