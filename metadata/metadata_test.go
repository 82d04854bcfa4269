// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package metadata

import (
	"testing"
	"time"

	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
)

func TestBuildStampsFixedFieldsAndClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &Builder{Platform: "mini", FirmwareVersion: "1.2.3", SensorSerial: "SN001", Now: func() time.Time { return fixed }}
	fn := b.Build()

	frame := pipeline.Snapshot{Y16Min: 100, Y16Max: 200, HighGain: true, Spot: pipeline.SpotSnapshot{Valid: true, X: 5, Y: 6, TempC10: 215}}
	out := output.Snapshot{PaletteSave: 2, AtmosphericTempC: 21, Emissivity: 95}

	got, ok := fn(frame, out).(*Snapshot)
	if !ok {
		t.Fatal("Build's function did not return a *Snapshot")
	}
	if got.Platform != "mini" || got.FirmwareVersion != "1.2.3" || got.SensorSerial != "SN001" {
		t.Fatalf("fixed fields not carried through: %+v", got)
	}
	if !got.Time.Equal(fixed) {
		t.Fatalf("Time = %v, want %v", got.Time, fixed)
	}
	if got.Y16Min != 100 || got.Y16Max != 200 || !got.HighGain {
		t.Fatalf("frame scalars not carried through: %+v", got)
	}
	if got.PaletteSave != 2 || got.AtmosphericTempC != 21 || got.Emissivity != 95 {
		t.Fatalf("output fields not carried through: %+v", got)
	}
}

func TestAnnotationLinesOmitInvalidFeatures(t *testing.T) {
	s := &Snapshot{Platform: "mini", Time: time.Now()}
	lines := AnnotationLines(s)
	for _, l := range lines {
		if len(l) >= 4 && l[:4] == "spot" {
			t.Fatalf("an invalid spot snapshot should not produce a spot annotation line: %q", l)
		}
	}
}

func TestAnnotationLinesIncludeValidFeatures(t *testing.T) {
	s := &Snapshot{
		Platform: "mini", Time: time.Now(),
		Spot: pipeline.SpotSnapshot{Valid: true, X: 1, Y: 2, TempC10: 305},
		Env:  pipeline.EnvSnapshot{AmbientValid: true, AmbientTempC: 24.5},
	}
	lines := AnnotationLines(s)
	foundSpot, foundAmbient := false, false
	for _, l := range lines {
		if len(l) >= 4 && l[:4] == "spot" {
			foundSpot = true
		}
		if len(l) >= 7 && l[:7] == "ambient" {
			foundAmbient = true
		}
	}
	if !foundSpot || !foundAmbient {
		t.Fatalf("expected spot and ambient lines, got %v", lines)
	}
}
