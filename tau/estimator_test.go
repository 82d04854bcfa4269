// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tau

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

type memLoader struct {
	tables map[string]*Table
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func (m memLoader) OpenTable(name string) (io.ReadCloser, error) {
	t := m.tables[name]
	buf := &bytes.Buffer{}
	for h := 0; h < HumidityExtent; h++ {
		for ti := 0; ti < TempExtent; ti++ {
			binary.Write(buf, binary.LittleEndian, t.Data[h][ti])
		}
	}
	return nopCloser{buf}, nil
}

// linearTable builds a table where tau (as a fraction of 65535) increases
// linearly with the temperature index, constant across distance and
// humidity, so grid-point exactness is easy to check.
func linearTable() *Table {
	t := &Table{}
	for h := 0; h < HumidityExtent; h++ {
		for ti := 0; ti < tempSearchable; ti++ {
			v := uint16(float64(ti) / float64(tempSearchable-1) * 65535)
			for di := 0; di < DistExtent; di++ {
				t.Data[h][ti][di] = v
			}
		}
	}
	return t
}

func TestEstimateAtGridPoints(t *testing.T) {
	tbl := linearTable()
	e := NewEstimator(memLoader{tables: map[string]*Table{"tau_L": tbl}})
	if err := e.ReadTable(GainLow); err != nil {
		t.Fatal(err)
	}
	for ti := 0; ti < tempSearchable; ti++ {
		taC := tempAxisC[ti]
		got := e.Estimate(taC, distAxisM[0], 0)
		wantFrac := float64(ti) / float64(tempSearchable-1)
		want := uint8(int(wantFrac*127) + 1)
		if diff := int(got) - int(want); diff < -1 || diff > 1 {
			t.Errorf("ti=%d taC=%v: got %d want ~%d", ti, taC, got, want)
		}
	}
}

func TestEstimateMonotonic(t *testing.T) {
	tbl := linearTable()
	e := NewEstimator(memLoader{tables: map[string]*Table{"tau_L": tbl}})
	if err := e.ReadTable(GainLow); err != nil {
		t.Fatal(err)
	}
	prev := e.Estimate(tempAxisC[0], distAxisM[0], 0)
	for ti := 1; ti < tempSearchable; ti++ {
		cur := e.Estimate(tempAxisC[ti], distAxisM[0], 0)
		if cur < prev {
			t.Fatalf("tau decreased from %d to %d between grid points %d and %d", prev, cur, ti-1, ti)
		}
		prev = cur
	}
}

func TestEstimateBoundaryClamp(t *testing.T) {
	tbl := linearTable()
	e := NewEstimator(memLoader{tables: map[string]*Table{"tau_L": tbl}})
	if err := e.ReadTable(GainLow); err != nil {
		t.Fatal(err)
	}
	below := e.Estimate(tempAxisC[0]-100, distAxisM[0], 0)
	at := e.Estimate(tempAxisC[0], distAxisM[0], 0)
	if below != at {
		t.Fatalf("below-range estimate %d != edge estimate %d", below, at)
	}
	above := e.Estimate(tempAxisC[tempSearchable-1]+100, distAxisM[0], 0)
	atTop := e.Estimate(tempAxisC[tempSearchable-1], distAxisM[0], 0)
	if above != atTop {
		t.Fatalf("above-range estimate %d != edge estimate %d", above, atTop)
	}
}
